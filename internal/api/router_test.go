package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/internal/api/handlers"
	"github.com/planetprotrader/backend/internal/api/ws"
	"github.com/planetprotrader/backend/internal/auth"
	"github.com/planetprotrader/backend/internal/blob"
	"github.com/planetprotrader/backend/internal/bots"
	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/debug"
	"github.com/planetprotrader/backend/internal/marketplace"
	"github.com/planetprotrader/backend/internal/playbook"
	"github.com/planetprotrader/backend/internal/profile"
	"github.com/planetprotrader/backend/internal/sample"
	"github.com/planetprotrader/backend/internal/screenshot"
	"github.com/planetprotrader/backend/internal/signals"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/internal/trading"
	"github.com/planetprotrader/backend/internal/vps"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/metrics"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testHandlers(t *testing.T) Handlers {
	t.Helper()
	log := logger.NewNop()
	rec := metrics.New()
	gen := sample.NewGenerator(42).WithClock(func() time.Time { return fixedNow })

	tradingStore := trading.NewStore(sample.TradingSnapshot(gen), gen.Derive(), 0, nil, rec, log)
	uploader := screenshot.NewUploader(
		screenshot.NewDashboardCapturer(func() screenshot.Headline { return screenshot.Headline{Price: 2045.67} }),
		blob.NewMemoryWriter(""),
		screenshot.NewMemoryRecordStore(),
		screenshot.Config{Metrics: rec},
		log,
	).WithClock(func() time.Time { return fixedNow })

	h := Handlers{
		Auth: handlers.NewAuthHandler(
			auth.NewGateway(auth.NewMemoryProvider(time.Hour), profile.NewMemoryRepository(), auth.Config{Metrics: rec}, log), log),
		Bots:        handlers.NewBotsHandler(bots.NewRegistry(sample.Bots(gen), gen.Derive(), bots.Config{Metrics: rec}, log), log),
		Trading:     handlers.NewTradingHandler(tradingStore, signals.NewStore(gen.Derive(), nil, 0, nil, log), log),
		Playbook:    handlers.NewPlaybookHandler(playbook.NewJournal(sample.PlaybookTrades(gen), sample.JournalEntries(gen), gen.Derive(), nil, log), log),
		Marketplace: handlers.NewMarketplaceHandler(marketplace.NewCatalog(sample.MarketplaceBots(gen))),
		Control:     handlers.NewControlHandler(nil, log),
		VPS:         handlers.NewVPSHandler(vps.NewRegistry(sample.VPSInstances(), 0, nil, log), log),
		Debug:       handlers.NewDebugHandler(debug.NewStore(sample.ErrorLogs(gen), gen.Derive(), nil, log), log),
		Screenshots: handlers.NewScreenshotHandler(uploader, log),
		Metrics:     rec.Handler(),
	}
	return h
}

func newTestRouter(t *testing.T, apiKey string) http.Handler {
	t.Helper()
	return NewRouter(testHandlers(t), apiKey, logger.NewNop())
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, "")

	w := do(t, r, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = do(t, r, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyMiddleware(t *testing.T) {
	r := newTestRouter(t, "s3cret")

	w := do(t, r, "GET", "/api/bots", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("GET", "/api/bots", nil)
	req.Header.Set("X-API-Key", "s3cret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health stays open
	assert.Equal(t, http.StatusOK, do(t, r, "GET", "/health", nil).Code)
}

func TestStateStreamRequiresAPIKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := testHandlers(t)
	h.Hub = ws.NewHub(state.NewMemoryBus(), map[string]ws.Source{
		state.TopicAuth: func() interface{} { return map[string]string{"email": "alice@example.com"} },
	}, logger.NewNop())
	go h.Hub.Run(ctx)

	srv := httptest.NewServer(NewRouter(h, "s3cret", logger.NewNop()))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?api_key=wrong", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("X-API-Key", "s3cret")
	for _, dial := range []struct {
		url    string
		header http.Header
	}{
		{wsURL, header},
		{wsURL + "?api_key=s3cret", nil},
	} {
		conn, _, err := websocket.DefaultDialer.Dial(dial.url, dial.header)
		require.NoError(t, err, dial.url)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(data), `"topic":"auth"`)
		conn.Close()
	}

	// the query parameter is only honoured on the WebSocket handshake
	assert.Equal(t, http.StatusUnauthorized, do(t, newTestRouter(t, "s3cret"), "GET", "/api/bots?api_key=s3cret", nil).Code)
}

func TestBotsRoutes(t *testing.T) {
	r := newTestRouter(t, "")

	var snap bots.Snapshot
	decode(t, do(t, r, "GET", "/api/bots", nil), &snap)
	require.NotEmpty(t, snap.Bots)

	var toggled bots.Snapshot
	w := do(t, r, "POST", "/api/bots/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &toggled)
	assert.Equal(t, !snap.Stats.AllActive, toggled.Stats.AllActive)

	w = do(t, r, "POST", "/api/bots", handlers.AddBotRequest{Name: "Scalper X", Strategy: contracts.StrategyScalping})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var added contracts.TradingBot
	decode(t, w, &added)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, contracts.RiskMedium, added.RiskLevel)
	assert.Equal(t, contracts.BotInactive, added.Status)

	w = do(t, r, "PUT", "/api/bots/"+added.ID+"/status", handlers.StatusRequest{Status: contracts.BotPaused})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, "PUT", "/api/bots/missing/status", handlers.StatusRequest{Status: contracts.BotPaused})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, "POST", "/api/bots", map[string]string{"strategy": "HODL"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_REQUIRED")
}

func TestAuthRoutes(t *testing.T) {
	r := newTestRouter(t, "")

	w := do(t, r, "POST", "/api/auth/signin", handlers.SignInRequest{ID: "nobody", Password: "secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Sign in failed: invalid email or password"}`, w.Body.String())

	w = do(t, r, "POST", "/api/auth/signup", handlers.SignUpRequest{Username: "goldbug", Email: "goldbug", Password: "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "valid email address")

	w = do(t, r, "POST", "/api/auth/signup", handlers.SignUpRequest{Username: "goldbug", Email: "goldbug@goldex.ai", Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var session auth.SessionState
	decode(t, do(t, r, "GET", "/api/auth/session", nil), &session)
	assert.True(t, session.IsAuthenticated)
	require.NotNil(t, session.User)
	assert.Equal(t, "goldbug@goldex.ai", session.User.Email)

	w = do(t, r, "POST", "/api/auth/signup", handlers.SignUpRequest{Username: "goldbug", Email: "goldbug@goldex.ai", Password: "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.Equal(t, http.StatusOK, do(t, r, "POST", "/api/auth/signout", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, "POST", "/api/auth/signin", handlers.SignInRequest{ID: "goldbug", Password: "secret123"}).Code)

	w = do(t, r, "POST", "/api/auth/signin", map[string]string{"id": "goldbug"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Password is required")
}

func TestTradingAndSignalRoutes(t *testing.T) {
	r := newTestRouter(t, "")

	var snap contracts.TradingSnapshot
	decode(t, do(t, r, "GET", "/api/trading/snapshot", nil), &snap)
	assert.Equal(t, sample.GoldSymbol, snap.Symbol)

	w := do(t, r, "POST", "/api/trading/refresh", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, do(t, r, "POST", "/api/signals/generate", nil).Code)
	}
	var list []contracts.Signal
	decode(t, do(t, r, "GET", "/api/signals?limit=2", nil), &list)
	assert.Len(t, list, 2)
}

func TestPlaybookRoutes(t *testing.T) {
	r := newTestRouter(t, "")

	var all []contracts.PlaybookTrade
	decode(t, do(t, r, "GET", "/api/playbook/trades?grade=ALL", nil), &all)
	assert.NotEmpty(t, all)

	assert.Equal(t, http.StatusBadRequest, do(t, r, "GET", "/api/playbook/trades?grade=Z", nil).Code)

	w := do(t, r, "POST", "/api/playbook/trades", handlers.TradeRequest{
		Direction:  contracts.DirectionBuy,
		EntryPrice: 2045.5,
		StopLoss:   2037.5,
		TakeProfit: 2061.5,
		RMultiple:  2.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var trade contracts.PlaybookTrade
	decode(t, w, &trade)
	assert.Equal(t, contracts.GradeElite, trade.Grade)
	assert.Equal(t, "XAUUSD", trade.Symbol)
	assert.InDelta(t, 0.01, trade.LotSize, 1e-9)
	assert.Equal(t, 3, trade.EmotionalRating)

	w = do(t, r, "POST", "/api/playbook/trades", map[string]interface{}{"direction": "UP", "entryPrice": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var stats playbook.Stats
	decode(t, do(t, r, "GET", "/api/playbook/stats", nil), &stats)
	assert.Equal(t, len(all)+1, stats.TotalTrades)

	w = do(t, r, "POST", "/api/playbook/journal", handlers.EntryRequest{Title: "Asia range"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/api/playbook/journal", handlers.EntryRequest{}).Code)
}

func TestMarketplaceRoutes(t *testing.T) {
	r := newTestRouter(t, "")

	var list []contracts.MarketplaceBot
	decode(t, do(t, r, "GET", "/api/marketplace/bots?sort=price", nil), &list)
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Price, list[i].Price)
	}

	assert.Equal(t, http.StatusBadRequest, do(t, r, "GET", "/api/marketplace/bots?sort=hype", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, "GET", "/api/marketplace/bots?maxPrice=abc", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, "GET", "/api/marketplace/bots/"+list[0].ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, "GET", "/api/marketplace/bots/missing", nil).Code)
}

func TestControlRoutes_NotConfigured(t *testing.T) {
	r := newTestRouter(t, "")

	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, "GET", "/api/control/state", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, r, "POST", "/api/control/start", nil).Code)
}

func TestVPSRoutes(t *testing.T) {
	r := newTestRouter(t, "")

	w := do(t, r, "POST", "/api/vps/vps-1/connect", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v contracts.VPSInstance
	decode(t, w, &v)
	assert.Equal(t, contracts.VPSConnected, v.Status)

	for i := 0; i < contracts.DefaultMaxAccounts; i++ {
		assert.Equal(t, http.StatusOK, do(t, r, "POST", "/api/vps/vps-1/deploy", nil).Code)
	}
	assert.Equal(t, http.StatusConflict, do(t, r, "POST", "/api/vps/vps-1/deploy", nil).Code)

	assert.Equal(t, http.StatusOK, do(t, r, "POST", "/api/vps/vps-1/undeploy", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, "POST", "/api/vps/nope/connect", nil).Code)

	var fleet []contracts.VPSInstance
	decode(t, do(t, r, "GET", "/api/vps", nil), &fleet)
	assert.Len(t, fleet, sample.VPSFleetSize)
}

func TestDebugRoutes(t *testing.T) {
	r := newTestRouter(t, "")

	var open []contracts.ErrorLog
	decode(t, do(t, r, "GET", "/api/debug/errors?fixed=false", nil), &open)
	require.NotEmpty(t, open)

	assert.Equal(t, http.StatusBadRequest, do(t, r, "GET", "/api/debug/errors?fixed=maybe", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, "POST", "/api/debug/errors/missing/autofix", nil).Code)

	w := do(t, r, "POST", "/api/debug/errors/"+open[0].ID+"/autofix", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, "POST", "/api/debug/health-check", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session contracts.DebugSession
	decode(t, w, &session)
	assert.Equal(t, contracts.SessionHealthCheck, session.Type)

	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/api/debug/health-check", map[string]string{"type": "Vibe Check"}).Code)

	var sessions []contracts.DebugSession
	decode(t, do(t, r, "GET", "/api/debug/sessions", nil), &sessions)
	assert.Len(t, sessions, 1)
}

func TestScreenshotRoutes(t *testing.T) {
	r := newTestRouter(t, "")

	w := do(t, r, "POST", "/api/screenshots", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec contracts.ScreenshotRecord
	decode(t, w, &rec)
	assert.Equal(t, contracts.ScreenshotManual, rec.Type)

	assert.Equal(t, http.StatusBadRequest, do(t, r, "POST", "/api/screenshots", map[string]string{"type": "video"}).Code)

	var status screenshot.Status
	decode(t, do(t, r, "GET", "/api/screenshots/status", nil), &status)
	assert.Equal(t, screenshot.StatusSuccess, status.UploadStatus)
	assert.Equal(t, 1, status.ScreenshotsToday)

	var records []contracts.ScreenshotRecord
	decode(t, do(t, r, "GET", "/api/screenshots?limit=5", nil), &records)
	assert.Len(t, records, 1)
}

func TestPaletteRoute(t *testing.T) {
	r := newTestRouter(t, "")

	var palette map[string]string
	decode(t, do(t, r, "GET", "/api/meta/palette", nil), &palette)
	assert.Equal(t, "green", palette["BotStatus.Trading"])
}
