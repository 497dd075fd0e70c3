package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects application metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	refreshes     *prometheus.CounterVec
	controlErrors *prometheus.CounterVec
	screenshots   *prometheus.CounterVec
	authAttempts  *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protrader_store_refresh_total",
				Help: "Number of store refresh cycles",
			},
			[]string{"store", "result"},
		),
		controlErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protrader_control_plane_errors_total",
				Help: "Control plane request failures",
			},
			[]string{"endpoint"},
		),
		screenshots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protrader_screenshot_uploads_total",
				Help: "Screenshot uploads by outcome",
			},
			[]string{"type", "outcome"},
		),
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protrader_auth_attempts_total",
				Help: "Auth gateway operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		lastPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "protrader_last_price",
				Help: "Last simulated price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "protrader_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	reg.MustRegister(r.refreshes, r.controlErrors, r.screenshots, r.authAttempts, r.lastPrice, r.latency)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordRefresh counts a store refresh cycle.
func (r *Recorder) RecordRefresh(store string, err error) {
	if r == nil {
		return
	}
	r.refreshes.WithLabelValues(store, outcome(err)).Inc()
}

// RecordControlError counts a failed control plane call.
func (r *Recorder) RecordControlError(endpoint string) {
	if r == nil {
		return
	}
	r.controlErrors.WithLabelValues(endpoint).Inc()
}

// Screenshot upload outcomes
const (
	ScreenshotOK      = "ok"
	ScreenshotFailed  = "failed"
	ScreenshotDropped = "dropped"
)

// RecordScreenshot counts an upload attempt; result is one of the Screenshot* outcomes.
func (r *Recorder) RecordScreenshot(kind, result string) {
	if r == nil {
		return
	}
	r.screenshots.WithLabelValues(kind, result).Inc()
}

// RecordAuth counts an auth gateway operation.
func (r *Recorder) RecordAuth(op string, err error) {
	if r == nil {
		return
	}
	r.authAttempts.WithLabelValues(op, outcome(err)).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	if r == nil {
		return
	}
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// ObserveSince records the elapsed time of an operation.
func (r *Recorder) ObserveSince(op string, start time.Time) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
