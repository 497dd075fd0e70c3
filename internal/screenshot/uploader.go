// Package screenshot captures the dashboard on an interval and uploads it to object storage.
package screenshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/jpeg"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planetprotrader/backend/internal/blob"
	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/metrics"
)

// ErrUploadInProgress is returned when a capture is requested while another is uploading
var ErrUploadInProgress = errors.New("screenshot upload already in progress")

// ErrInvalidType is returned for an unknown capture type
var ErrInvalidType = errors.New("invalid screenshot type")

// Upload status strings
const (
	StatusReady     = "Ready"
	StatusUploading = "Uploading screenshot..."
	StatusSuccess   = "Screenshot uploaded successfully"
	statusFailedFmt = "Upload failed: %s"
)

// DefaultQuality is the JPEG quality used when none is configured
const DefaultQuality = 80

// Status is the published uploader state
type Status struct {
	UploadStatus     string                      `json:"uploadStatus"`
	IsUploading      bool                        `json:"isUploading"`
	LastScreenshotAt *time.Time                  `json:"lastScreenshotAt,omitempty"`
	ScreenshotsToday int                         `json:"screenshotsToday"`
	LastRecord       *contracts.ScreenshotRecord `json:"lastRecord,omitempty"`
}

// Config holds uploader settings
type Config struct {
	Quality      int
	AccountLogin string
	Bus          state.Bus
	Metrics      *metrics.Recorder
}

// Uploader captures, encodes, uploads and records screenshots one at a time
type Uploader struct {
	capturer Capturer
	writer   blob.Writer
	records  RecordStore
	quality  int
	login    string
	now      func() time.Time

	mu        sync.Mutex
	uploading bool

	view    *state.Value[Status]
	logger  *logger.Logger
	metrics *metrics.Recorder
}

// NewUploader creates an uploader
func NewUploader(capturer Capturer, writer blob.Writer, records RecordStore, cfg Config, log *logger.Logger) *Uploader {
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = DefaultQuality
	}
	return &Uploader{
		capturer: capturer,
		writer:   writer,
		records:  records,
		quality:  cfg.Quality,
		login:    cfg.AccountLogin,
		now:      time.Now,
		view:     state.NewValue(state.TopicScreenshot, Status{UploadStatus: StatusReady}, cfg.Bus, log),
		logger:   log.WithComponent("screenshot"),
		metrics:  cfg.Metrics,
	}
}

// WithClock overrides the time source
func (u *Uploader) WithClock(now func() time.Time) *Uploader {
	u.now = now
	return u
}

// View exposes the published status
func (u *Uploader) View() *state.Value[Status] {
	return u.view
}

// Status returns the current status
func (u *Uploader) Status() Status {
	return u.view.Get()
}

// Records returns the most recent uploads
func (u *Uploader) Records(ctx context.Context, limit int) ([]contracts.ScreenshotRecord, error) {
	return u.records.Recent(ctx, limit)
}

// Tick is the timer entry: an automatic capture, dropped when an upload is in flight
func (u *Uploader) Tick(ctx context.Context) error {
	_, err := u.Capture(ctx, contracts.ScreenshotAutomatic, nil)
	return err
}

// Filename is screenshot_<type>_<unix-seconds>.jpg
func Filename(typ contracts.ScreenshotType, at time.Time) string {
	return fmt.Sprintf("screenshot_%s_%d.jpg", typ, at.Unix())
}

// ObjectKey is screenshots/<yyyy>/<mm>/<dd>/<filename>
func ObjectKey(filename string, at time.Time) string {
	return fmt.Sprintf("screenshots/%s/%s", at.UTC().Format("2006/01/02"), filename)
}

// Capture takes one screenshot of typ and uploads it with metadata. No retry on failure.
func (u *Uploader) Capture(ctx context.Context, typ contracts.ScreenshotType, metadata interface{}) (contracts.ScreenshotRecord, error) {
	if !typ.IsValid() {
		return contracts.ScreenshotRecord{}, ErrInvalidType
	}

	u.mu.Lock()
	if u.uploading {
		u.mu.Unlock()
		u.metrics.RecordScreenshot(string(typ), metrics.ScreenshotDropped)
		u.logger.WithField("type", typ).Debug("Capture skipped, upload in progress")
		return contracts.ScreenshotRecord{}, ErrUploadInProgress
	}
	u.uploading = true
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.uploading = false
		u.mu.Unlock()
	}()

	u.view.Update(func(s *Status) {
		s.IsUploading = true
		s.UploadStatus = StatusUploading
	})

	start := time.Now()
	rec, err := u.upload(ctx, typ, metadata)
	u.metrics.ObserveSince("screenshot_upload", start)

	if err != nil {
		u.view.Update(func(s *Status) {
			s.IsUploading = false
			s.UploadStatus = fmt.Sprintf(statusFailedFmt, err.Error())
		})
		u.metrics.RecordScreenshot(string(typ), metrics.ScreenshotFailed)
		u.logger.WithError(err).WithField("type", typ).Error("Screenshot upload failed")
		return contracts.ScreenshotRecord{}, err
	}

	u.view.Update(func(s *Status) {
		at := rec.Timestamp
		if s.LastScreenshotAt == nil || !sameDay(*s.LastScreenshotAt, at) {
			s.ScreenshotsToday = 0
		}
		s.ScreenshotsToday++
		s.LastScreenshotAt = &at
		s.IsUploading = false
		s.UploadStatus = StatusSuccess
		r := rec
		s.LastRecord = &r
	})
	u.metrics.RecordScreenshot(string(typ), metrics.ScreenshotOK)
	u.logger.WithFields(map[string]interface{}{
		"type":       typ,
		"object_key": rec.ObjectKey,
		"size_bytes": rec.SizeBytes,
	}).Info("Screenshot uploaded")
	return rec, nil
}

func (u *Uploader) upload(ctx context.Context, typ contracts.ScreenshotType, metadata interface{}) (contracts.ScreenshotRecord, error) {
	img, err := u.capturer.Capture(ctx)
	if err != nil {
		return contracts.ScreenshotRecord{}, fmt.Errorf("capture: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: u.quality}); err != nil {
		return contracts.ScreenshotRecord{}, fmt.Errorf("encode jpeg: %w", err)
	}

	var meta json.RawMessage
	if metadata != nil {
		meta, err = json.Marshal(metadata)
		if err != nil {
			return contracts.ScreenshotRecord{}, fmt.Errorf("encode metadata: %w", err)
		}
	}

	now := u.now()
	filename := Filename(typ, now)
	key := ObjectKey(filename, now)
	size := int64(buf.Len())

	url, err := u.writer.Put(ctx, key, bytes.NewReader(buf.Bytes()), "image/jpeg")
	if err != nil {
		return contracts.ScreenshotRecord{}, err
	}

	rec := contracts.ScreenshotRecord{
		ID:           uuid.NewString(),
		Type:         typ,
		Filename:     filename,
		ObjectKey:    key,
		DownloadURL:  url,
		Metadata:     meta,
		Timestamp:    now,
		AccountLogin: u.login,
		SizeBytes:    size,
	}
	if err := u.records.Save(ctx, rec); err != nil {
		return contracts.ScreenshotRecord{}, fmt.Errorf("save record: %w", err)
	}
	return rec, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
