package controlplane

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/pkg/httputil"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/metrics"
)

const (
	statusBody  = `{"status":"success","bot_running":true,"service_status":"active","recent_activity":"BUY XAUUSD 0.1\nSELL XAUUSD 0.1","timestamp":1767225600}`
	accountBody = `{"status":"success","account":{"login":845638,"server":"Coinexx-Demo","balance":1270.45,"equity":1282.10,"profit":11.65,"currency":"USD","leverage":500},"timestamp":1767225600}`
	tradesBody  = `{"status":"success","trades":[{"timestamp":1767225600,"type":"BUY","status":"filled","log":"BUY 0.1 @ 2045.5"}],"total_trades":1}`
)

// fakeService serves the control endpoints. Handlers can be overridden per path.
type fakeService struct {
	overrides map[string]http.HandlerFunc
	posts     atomic.Int32
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := f.overrides[r.URL.Path]; ok {
		h(w, r)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == EndpointStatus:
		fmt.Fprint(w, statusBody)
	case r.Method == http.MethodGet && r.URL.Path == EndpointAccount:
		fmt.Fprint(w, accountBody)
	case r.Method == http.MethodGet && r.URL.Path == EndpointTrades:
		fmt.Fprint(w, tradesBody)
	case r.Method == http.MethodPost && r.URL.Path == EndpointControl+ActionStart:
		f.posts.Add(1)
		fmt.Fprint(w, `{"message":"Bot started"}`)
	case r.Method == http.MethodPost && r.URL.Path == EndpointControl+ActionStop:
		f.posts.Add(1)
		fmt.Fprint(w, `{"message":"Bot stopped"}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, svc *fakeService) *Client {
	t.Helper()
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	hc := httputil.New(logger.NewNop(), httputil.Options{Timeout: 2 * time.Second})
	c, err := NewClient(srv.URL+"/", hc, logger.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	hc := httputil.New(logger.NewNop(), httputil.Options{})
	for _, raw := range []string{"", "not a url", "ftp://host", "http://"} {
		_, err := NewClient(raw, hc, logger.NewNop())
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestClient_Decodes(t *testing.T) {
	c := newTestClient(t, &fakeService{})
	ctx := context.Background()

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.BotRunning)
	assert.Equal(t, "active", st.ServiceStatus)
	assert.Equal(t, int64(1767225600), st.Timestamp)
	assert.Equal(t, "BUY XAUUSD 0.1\nSELL XAUUSD 0.1", st.RecentActivity)

	acct, err := c.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(845638), acct.Account.Login)
	assert.Equal(t, 500, acct.Account.Leverage)
	assert.Equal(t, "USD", acct.Account.Currency)

	tr, err := c.Trades(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.TotalTrades)
	require.Len(t, tr.Trades, 1)
	assert.Equal(t, "BUY", tr.Trades[0].Type)
	assert.Equal(t, int64(1767225600), tr.Trades[0].Timestamp)

	msg, err := c.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bot started", msg)

	msg, err = c.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bot stopped", msg)
}

func TestClient_Errors(t *testing.T) {
	svc := &fakeService{overrides: map[string]http.HandlerFunc{
		EndpointStatus:  func(w http.ResponseWriter, r *http.Request) {},
		EndpointAccount: func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "<html>") },
		EndpointTrades: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		EndpointControl + ActionStart: func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"ok":true}`) },
	}}
	c := newTestClient(t, svc)
	ctx := context.Background()

	_, err := c.Status(ctx)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "No data received", err.Error())

	_, err = c.Account(ctx)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = c.Trades(ctx)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)

	_, err = c.Start(ctx)
	assert.ErrorIs(t, err, ErrInvalidResponse, "a reply without message is rejected")
}

func TestMonitor_RefreshAllSucceed(t *testing.T) {
	m := NewMonitor(newTestClient(t, &fakeService{}), nil, metrics.New(), logger.NewNop())

	require.NoError(t, m.RefreshData(context.Background()))

	s := m.State()
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.ErrorMessage)
	assert.True(t, s.IsBotRunning())
	require.NotNil(t, s.Account)
	require.NotNil(t, s.Trades)
	assert.False(t, s.LastUpdated.IsZero())
}

func TestMonitor_PartialFailureKeepsSuccesses(t *testing.T) {
	svc := &fakeService{overrides: map[string]http.HandlerFunc{
		EndpointAccount: func(w http.ResponseWriter, r *http.Request) {},
	}}
	m := NewMonitor(newTestClient(t, svc), nil, nil, logger.NewNop())

	err := m.RefreshData(context.Background())
	assert.ErrorIs(t, err, ErrNoData)

	s := m.State()
	assert.NotNil(t, s.Status)
	assert.NotNil(t, s.Trades)
	assert.Nil(t, s.Account)
	assert.Equal(t, "No data received", s.ErrorMessage)
}

func TestMonitor_ErrorClearedOnSuccess(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	svc := &fakeService{overrides: map[string]http.HandlerFunc{
		EndpointStatus: func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, statusBody)
		},
	}}
	m := NewMonitor(newTestClient(t, svc), nil, nil, logger.NewNop())

	assert.Error(t, m.RefreshData(context.Background()))
	assert.NotEmpty(t, m.State().ErrorMessage)

	fail.Store(false)
	require.NoError(t, m.RefreshData(context.Background()))
	assert.Empty(t, m.State().ErrorMessage)
}

func TestMonitor_StartStopRefresh(t *testing.T) {
	svc := &fakeService{}
	m := NewMonitor(newTestClient(t, svc), nil, nil, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, m.StartBot(ctx))
	assert.Equal(t, "Bot started", m.State().LastMessage)
	assert.NotNil(t, m.State().Status, "start re-triggers a refresh")

	require.NoError(t, m.StopBot(ctx))
	assert.Equal(t, "Bot stopped", m.State().LastMessage)
	assert.Equal(t, int32(2), svc.posts.Load())
}

func TestMonitor_StartFailureOnlySetsMessage(t *testing.T) {
	svc := &fakeService{overrides: map[string]http.HandlerFunc{
		EndpointControl + ActionStart: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	}}
	m := NewMonitor(newTestClient(t, svc), nil, nil, logger.NewNop())

	assert.Error(t, m.StartBot(context.Background()))
	s := m.State()
	assert.Contains(t, s.ErrorMessage, "503")
	assert.Nil(t, s.Status)
	assert.True(t, s.LastUpdated.IsZero())
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	m := NewMonitor(newTestClient(t, &fakeService{}), nil, nil, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool { return m.State().Status != nil }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
