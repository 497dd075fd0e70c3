// Package auth signs users in and out and keeps the published session state.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/profile"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/metrics"
	"github.com/planetprotrader/backend/pkg/redis"
)

var (
	// ErrProfileWrite marks a failed profile update after a successful identity call.
	// The session stays authenticated.
	ErrProfileWrite = errors.New("profile update failed")
	// ErrTooManyAttempts is returned when sign-in attempts exceed the per-email limit
	ErrTooManyAttempts = errors.New("too many sign-in attempts, try again later")
	// ErrInvalidInput matches every request validation failure
	ErrInvalidInput = errors.New("invalid input")
)

// inputError carries a readable validation sentence and matches ErrInvalidInput
type inputError struct{ reason string }

func (e inputError) Error() string { return e.reason }

func (e inputError) Is(target error) bool { return target == ErrInvalidInput }

// Operation names used in error messages and metrics
const (
	opSignIn  = "Sign in"
	opSignUp  = "Sign up"
	opSignOut = "Sign out"
	opReset   = "Password reset"
)

// SessionState is the published authentication state
type SessionState struct {
	User            *contracts.User `json:"user,omitempty"`
	IsAuthenticated bool            `json:"isAuthenticated"`
	IsLoading       bool            `json:"isLoading"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
}

// Config holds gateway settings
type Config struct {
	EmailDomain  string
	SignInPerMin int
	Bus          state.Bus
	Metrics      *metrics.Recorder
	// SharedLimiter, when Redis is enabled, enforces the sign-in limit across instances
	SharedLimiter *redis.RateLimiter
}

type signInRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type signUpRequest struct {
	Username string `validate:"required,min=3,max=32"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type resetRequest struct {
	Email string `validate:"required,email"`
}

// Gateway runs the sign-in, sign-up, sign-out and reset flows
// ⭐ SSOT: session state is only mutated here
type Gateway struct {
	provider IdentityProvider
	profiles profile.Repository
	validate *validator.Validate
	domain   string
	perMin   int
	shared   *redis.RateLimiter
	now      func() time.Time

	limitersMu sync.Mutex
	limiters   map[string]*signInLimiter
	lastSweep  time.Time

	session *state.Value[SessionState]
	logger  *logger.Logger
	metrics *metrics.Recorder
}

// NewGateway creates a gateway
func NewGateway(provider IdentityProvider, profiles profile.Repository, cfg Config, log *logger.Logger) *Gateway {
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = "goldex.ai"
	}
	if cfg.SignInPerMin <= 0 {
		cfg.SignInPerMin = 10
	}
	return &Gateway{
		provider: provider,
		profiles: profiles,
		validate: validator.New(),
		domain:   cfg.EmailDomain,
		perMin:   cfg.SignInPerMin,
		shared:   cfg.SharedLimiter,
		now:      time.Now,
		limiters: make(map[string]*signInLimiter),
		session:  state.NewValue(state.TopicAuth, SessionState{}, cfg.Bus, log),
		logger:   log.WithComponent("auth"),
		metrics:  cfg.Metrics,
	}
}

// Session exposes the published session state
func (g *Gateway) Session() *state.Value[SessionState] {
	return g.session
}

// Current returns the session state
func (g *Gateway) Current() SessionState {
	return g.session.Get()
}

// NormalizeEmail turns a bare username into an address on the default domain
func (g *Gateway) NormalizeEmail(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "@") {
		return id
	}
	return id + "@" + g.domain
}

// SignIn authenticates id (an email or a bare username) and marks the profile online
func (g *Gateway) SignIn(ctx context.Context, id, password string) error {
	g.begin()
	email := g.NormalizeEmail(id)

	if err := g.validate.Struct(signInRequest{Email: email, Password: password}); err != nil {
		return g.fail(opSignIn, validationReason(err))
	}
	if err := g.allow(ctx, email); err != nil {
		return g.fail(opSignIn, err)
	}

	user, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return g.fail(opSignIn, err)
	}
	g.authenticated(user)

	if err := g.profiles.TouchLogin(ctx, user.UID, g.now()); err != nil {
		return g.profileFailed(opSignIn, user, err)
	}
	if err := g.profiles.SetOnline(ctx, user.UID, true); err != nil {
		return g.profileFailed(opSignIn, user, err)
	}

	g.done()
	g.metrics.RecordAuth("signin", nil)
	g.logger.WithField("uid", user.UID).Info("User signed in")
	return nil
}

// SignUp creates the account and writes the default profile
func (g *Gateway) SignUp(ctx context.Context, username, email, password string) error {
	g.begin()
	email = strings.TrimSpace(email)

	if err := g.validate.Struct(signUpRequest{Username: username, Email: email, Password: password}); err != nil {
		return g.fail(opSignUp, validationReason(err))
	}

	user, err := g.provider.CreateUser(ctx, username, email, password)
	if err != nil {
		return g.fail(opSignUp, err)
	}
	g.authenticated(user)

	if err := g.profiles.Create(ctx, profile.NewProfile(user.UID, username, user.Email, g.now())); err != nil {
		return g.profileFailed(opSignUp, user, err)
	}

	g.done()
	g.metrics.RecordAuth("signup", nil)
	g.logger.WithField("uid", user.UID).Info("User signed up")
	return nil
}

// SignOut ends the session. On failure the session stays authenticated.
func (g *Gateway) SignOut(ctx context.Context) error {
	g.begin()
	current := g.session.Get()

	uid := ""
	if current.User != nil {
		uid = current.User.UID
	}
	if err := g.provider.SignOut(ctx, uid); err != nil {
		return g.fail(opSignOut, err)
	}

	if uid != "" {
		if err := g.profiles.SetOnline(ctx, uid, false); err != nil {
			g.logger.WithError(err).WithField("uid", uid).Warn("Failed to mark profile offline")
		}
	}

	g.session.Set(SessionState{})
	g.metrics.RecordAuth("signout", nil)
	g.logger.WithField("uid", uid).Info("User signed out")
	return nil
}

// ResetPassword asks the provider to issue a reset for email
func (g *Gateway) ResetPassword(ctx context.Context, email string) error {
	g.begin()
	email = g.NormalizeEmail(email)

	if err := g.validate.Struct(resetRequest{Email: email}); err != nil {
		return g.fail(opReset, validationReason(err))
	}
	if err := g.provider.SendPasswordReset(ctx, email); err != nil {
		return g.fail(opReset, err)
	}

	g.done()
	g.metrics.RecordAuth("reset", nil)
	return nil
}

func (g *Gateway) begin() {
	g.session.Update(func(s *SessionState) {
		s.IsLoading = true
		s.ErrorMessage = ""
	})
}

func (g *Gateway) done() {
	g.session.Update(func(s *SessionState) {
		s.IsLoading = false
	})
}

func (g *Gateway) authenticated(user contracts.User) {
	g.session.Update(func(s *SessionState) {
		u := user
		s.User = &u
		s.IsAuthenticated = true
	})
}

// fail records "<op> failed: <reason>" and returns err unchanged
func (g *Gateway) fail(op string, err error) error {
	g.session.Update(func(s *SessionState) {
		s.IsLoading = false
		s.ErrorMessage = fmt.Sprintf("%s failed: %s", op, err.Error())
	})
	g.metrics.RecordAuth(metricName(op), err)
	g.logger.WithError(err).WithField("operation", op).Warn("Auth operation failed")
	return err
}

func (g *Gateway) profileFailed(op string, user contracts.User, err error) error {
	g.logger.WithError(err).WithField("uid", user.UID).Error("Profile write failed after identity call")
	g.session.Update(func(s *SessionState) {
		s.IsLoading = false
		s.ErrorMessage = fmt.Sprintf("%s failed: %s", op, err.Error())
	})
	g.metrics.RecordAuth(metricName(op), err)
	return fmt.Errorf("%w: %v", ErrProfileWrite, err)
}

// allow applies the per-email sign-in limit, locally and, when configured, through Redis
// signInLimiter is one email's local bucket
type signInLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiterIdle is how long a bucket takes to refill completely; idle buckets
// are indistinguishable from new ones and get dropped.
const limiterIdle = time.Minute

func (g *Gateway) allow(ctx context.Context, email string) error {
	key := strings.ToLower(email)
	now := g.now()

	g.limitersMu.Lock()
	g.sweepLimiters(now)
	entry, ok := g.limiters[key]
	if !ok {
		entry = &signInLimiter{lim: rate.NewLimiter(rate.Every(limiterIdle/time.Duration(g.perMin)), g.perMin)}
		g.limiters[key] = entry
	}
	entry.lastSeen = now
	allowed := entry.lim.AllowN(now, 1)
	g.limitersMu.Unlock()

	if !allowed {
		return ErrTooManyAttempts
	}

	if g.shared != nil {
		allowed, _, err := g.shared.Allow(ctx, redis.SignInRateLimit(key, g.perMin))
		if err != nil {
			g.logger.WithError(err).Warn("Shared sign-in limiter unavailable")
			return nil
		}
		if !allowed {
			return ErrTooManyAttempts
		}
	}
	return nil
}

// sweepLimiters drops idle buckets at most once per limiterIdle. Caller holds limitersMu.
func (g *Gateway) sweepLimiters(now time.Time) {
	if now.Sub(g.lastSweep) < limiterIdle {
		return
	}
	for key, entry := range g.limiters {
		if now.Sub(entry.lastSeen) >= limiterIdle {
			delete(g.limiters, key)
		}
	}
	g.lastSweep = now
}

func metricName(op string) string {
	switch op {
	case opSignIn:
		return "signin"
	case opSignUp:
		return "signup"
	case opSignOut:
		return "signout"
	default:
		return "reset"
	}
}

// validationReason turns the first field error into a sentence
func validationReason(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return inputError{err.Error()}
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return inputError{fmt.Sprintf("%s is required", field)}
	case "email":
		return inputError{fmt.Sprintf("%s must be a valid email address", field)}
	case "min":
		return inputError{fmt.Sprintf("%s must be at least %s characters", field, fe.Param())}
	case "max":
		return inputError{fmt.Sprintf("%s must be at most %s characters", field, fe.Param())}
	default:
		return inputError{fmt.Sprintf("%s is invalid", field)}
	}
}
