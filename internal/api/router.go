package api

import (
	"bufio"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/planetprotrader/backend/internal/api/handlers"
	"github.com/planetprotrader/backend/internal/api/ws"
	"github.com/planetprotrader/backend/pkg/logger"
)

// Handlers groups everything the router mounts. Nil Metrics or Hub skips those routes.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Bots        *handlers.BotsHandler
	Trading     *handlers.TradingHandler
	Playbook    *handlers.PlaybookHandler
	Marketplace *handlers.MarketplaceHandler
	Control     *handlers.ControlHandler
	VPS         *handlers.VPSHandler
	Debug       *handlers.DebugHandler
	Screenshots *handlers.ScreenshotHandler
	Hub         *ws.Hub
	Metrics     http.Handler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routes are only declared in this function
func NewRouter(h Handlers, apiKey string, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(apiKeyMiddleware(apiKey))

	// Auth
	api.HandleFunc("/auth/session", h.Auth.GetSession).Methods("GET")
	api.HandleFunc("/auth/signin", h.Auth.SignIn).Methods("POST")
	api.HandleFunc("/auth/signup", h.Auth.SignUp).Methods("POST")
	api.HandleFunc("/auth/signout", h.Auth.SignOut).Methods("POST")
	api.HandleFunc("/auth/reset", h.Auth.ResetPassword).Methods("POST")

	// Bots
	api.HandleFunc("/bots", h.Bots.List).Methods("GET")
	api.HandleFunc("/bots", h.Bots.Add).Methods("POST")
	api.HandleFunc("/bots/stats", h.Bots.Stats).Methods("GET")
	api.HandleFunc("/bots/refresh", h.Bots.Refresh).Methods("POST")
	api.HandleFunc("/bots/toggle", h.Bots.Toggle).Methods("POST")
	api.HandleFunc("/bots/{id}", h.Bots.Get).Methods("GET")
	api.HandleFunc("/bots/{id}/status", h.Bots.SetStatus).Methods("PUT")

	// Trading + signals
	api.HandleFunc("/trading/snapshot", h.Trading.GetSnapshot).Methods("GET")
	api.HandleFunc("/trading/refresh", h.Trading.Refresh).Methods("POST")
	api.HandleFunc("/signals", h.Trading.ListSignals).Methods("GET")
	api.HandleFunc("/signals/generate", h.Trading.GenerateSignal).Methods("POST")

	// Playbook
	api.HandleFunc("/playbook/trades", h.Playbook.ListTrades).Methods("GET")
	api.HandleFunc("/playbook/trades", h.Playbook.AddTrade).Methods("POST")
	api.HandleFunc("/playbook/stats", h.Playbook.Stats).Methods("GET")
	api.HandleFunc("/playbook/journal", h.Playbook.ListEntries).Methods("GET")
	api.HandleFunc("/playbook/journal", h.Playbook.AddEntry).Methods("POST")

	// Marketplace
	api.HandleFunc("/marketplace/bots", h.Marketplace.List).Methods("GET")
	api.HandleFunc("/marketplace/bots/{id}", h.Marketplace.Get).Methods("GET")

	// Remote control
	api.HandleFunc("/control/state", h.Control.GetState).Methods("GET")
	api.HandleFunc("/control/refresh", h.Control.Refresh).Methods("POST")
	api.HandleFunc("/control/start", h.Control.Start).Methods("POST")
	api.HandleFunc("/control/stop", h.Control.Stop).Methods("POST")

	// VPS
	api.HandleFunc("/vps", h.VPS.List).Methods("GET")
	api.HandleFunc("/vps/{id}", h.VPS.Get).Methods("GET")
	api.HandleFunc("/vps/{id}/connect", h.VPS.Connect).Methods("POST")
	api.HandleFunc("/vps/{id}/disconnect", h.VPS.Disconnect).Methods("POST")
	api.HandleFunc("/vps/{id}/deploy", h.VPS.Deploy).Methods("POST")
	api.HandleFunc("/vps/{id}/undeploy", h.VPS.Undeploy).Methods("POST")

	// Debug
	api.HandleFunc("/debug/errors", h.Debug.ListErrors).Methods("GET")
	api.HandleFunc("/debug/errors/{id}", h.Debug.GetError).Methods("GET")
	api.HandleFunc("/debug/errors/{id}/autofix", h.Debug.AutoFix).Methods("POST")
	api.HandleFunc("/debug/health-check", h.Debug.HealthCheck).Methods("POST")
	api.HandleFunc("/debug/sessions", h.Debug.ListSessions).Methods("GET")

	// Screenshots
	api.HandleFunc("/screenshots", h.Screenshots.List).Methods("GET")
	api.HandleFunc("/screenshots", h.Screenshots.Capture).Methods("POST")
	api.HandleFunc("/screenshots/status", h.Screenshots.GetStatus).Methods("GET")

	// Meta
	api.HandleFunc("/meta/palette", handlers.GetPalette).Methods("GET")

	// State stream, behind the same key as /api
	if h.Hub != nil {
		r.Handle("/ws", apiKeyMiddleware(apiKey)(http.HandlerFunc(h.Hub.HandleWS))).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "protrader-api",
	})
}

// apiKeyMiddleware requires X-API-Key when a key is configured
func apiKeyMiddleware(key string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			// browsers cannot set headers on a WebSocket handshake
			if got == "" && websocket.IsWebSocketUpgrade(r) {
				got = r.URL.Query().Get("api_key")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Invalid API key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder keeps the status code for the request log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrade through the recorder
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
