package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	r.RecordRefresh("bots", nil)
	r.RecordRefresh("bots", nil)
	r.RecordRefresh("bots", errors.New("boom"))
	r.RecordScreenshot("automatic", ScreenshotDropped)
	r.RecordAuth("sign_in", nil)
	r.RecordControlError("status")
	r.RecordLastPrice("XAUUSD", 2045.67)
	r.ObserveSince("control_refresh", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(r.refreshes.WithLabelValues("bots", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.refreshes.WithLabelValues("bots", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.screenshots.WithLabelValues("automatic", "dropped")))
	assert.Equal(t, 2045.67, testutil.ToFloat64(r.lastPrice.WithLabelValues("XAUUSD")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordRefresh("bots", nil)
		r.RecordAuth("sign_in", errors.New("x"))
		r.ObserveSince("op", time.Now())
	})
	assert.Nil(t, r.Registry())
}

func TestHandlerServesMetrics(t *testing.T) {
	r := New()
	r.RecordRefresh("trading", nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "protrader_store_refresh_total")
}
