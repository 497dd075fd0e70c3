package handlers

import (
	"errors"
	"net/http"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/screenshot"
	"github.com/planetprotrader/backend/pkg/logger"
)

// ScreenshotHandler serves the uploader
type ScreenshotHandler struct {
	uploader *screenshot.Uploader
	logger   *logger.Logger
}

// NewScreenshotHandler creates a new screenshot handler
func NewScreenshotHandler(uploader *screenshot.Uploader, log *logger.Logger) *ScreenshotHandler {
	return &ScreenshotHandler{uploader: uploader, logger: log}
}

// CaptureRequest asks for one screenshot
type CaptureRequest struct {
	Type     contracts.ScreenshotType `json:"type" default:"manual"`
	Metadata map[string]interface{}   `json:"metadata"`
}

// GetStatus returns the uploader status line and counters
// GET /api/screenshots/status
func (h *ScreenshotHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.uploader.Status())
}

// List returns recent uploads, ?limit= defaults to 20
// GET /api/screenshots
func (h *ScreenshotHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.uploader.Records(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list screenshots")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve screenshots")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// Capture takes and uploads a screenshot now
// POST /api/screenshots
func (h *ScreenshotHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if errs := readAndValidate(r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	var metadata interface{}
	if req.Metadata != nil {
		metadata = req.Metadata
	}

	rec, err := h.uploader.Capture(r.Context(), req.Type, metadata)
	switch {
	case errors.Is(err, screenshot.ErrInvalidType):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, screenshot.ErrUploadInProgress):
		respondError(w, http.StatusConflict, err.Error())
	case err != nil:
		respondError(w, http.StatusBadGateway, h.uploader.Status().UploadStatus)
	default:
		respondJSON(w, http.StatusCreated, rec)
	}
}
