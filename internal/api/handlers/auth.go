package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/planetprotrader/backend/internal/auth"
	"github.com/planetprotrader/backend/pkg/logger"
)

// Session is the part of the auth gateway the API drives
type Session interface {
	SignIn(ctx context.Context, id, password string) error
	SignUp(ctx context.Context, username, email, password string) error
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	Current() auth.SessionState
}

// AuthHandler serves the session endpoints
type AuthHandler struct {
	gateway Session
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gateway Session, log *logger.Logger) *AuthHandler {
	return &AuthHandler{gateway: gateway, logger: log}
}

// SignInRequest accepts an email or a bare username in ID
type SignInRequest struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignUpRequest creates an account
type SignUpRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ResetRequest asks for a password reset
type ResetRequest struct {
	Email string `json:"email" validate:"required"`
}

// GetSession returns the published session state
// GET /api/auth/session
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.gateway.Current())
}

// SignIn authenticates the session
// POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if errs := readAndValidate(r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	h.reply(w, h.gateway.SignIn(r.Context(), req.ID, req.Password))
}

// SignUp creates the account and its profile
// POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if errs := readAndValidate(r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	h.reply(w, h.gateway.SignUp(r.Context(), req.Username, req.Email, req.Password))
}

// SignOut ends the session
// POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.reply(w, h.gateway.SignOut(r.Context()))
}

// ResetPassword sends a reset link
// POST /api/auth/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if errs := readAndValidate(r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	h.reply(w, h.gateway.ResetPassword(r.Context(), req.Email))
}

// reply sends the session on success, or its error message with a matching status
func (h *AuthHandler) reply(w http.ResponseWriter, err error) {
	session := h.gateway.Current()
	if err == nil {
		respondJSON(w, http.StatusOK, session)
		return
	}

	message := session.ErrorMessage
	if message == "" {
		message = err.Error()
	}
	respondError(w, authStatus(err), message)
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
