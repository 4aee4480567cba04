package server

import (
	"encoding/json"
	"net/http"
	"time"

	"tutorbot/internal/metrics"
	"tutorbot/internal/repository"
	"tutorbot/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the thin HTTP surface: the payment webhook, liveness
// endpoints, and metrics. It carries no business logic of its own.
type Server struct {
	confirm  *service.ConfirmationService
	sessions repository.SessionRepository
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	started  time.Time
}

// New creates the HTTP surface.
func New(
	confirm *service.ConfirmationService,
	sessions repository.SessionRepository,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	return &Server{
		confirm:  confirm,
		sessions: sessions,
		metrics:  m,
		gatherer: gatherer,
		logger:   logger,
		started:  time.Now(),
	}
}

// Router builds the chi router for all HTTP endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/success", s.handleSuccess)
	r.Post("/verify", s.handleVerify)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

type verifyPayload struct {
	TxRef string `json:"tx_ref"`
}

// handleVerify processes a payment provider callback. It always answers
// 2xx: the provider must never be given a reason to retry-storm, so
// internal failures are logged and swallowed.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	s.metrics.PaymentCallbacks.Inc()

	var payload verifyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.logger.Warn("Malformed payment callback body", zap.Error(err))
	}

	outcome := s.confirm.Confirm(r.Context(), payload.TxRef)
	if outcome == service.ConfirmVerified {
		s.metrics.PaymentsVerified.Inc()
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type healthResponse struct {
	Status         string `json:"status"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	ActiveSessions int    `json:"active_sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		ActiveSessions: s.sessions.Count(),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("tutorbot is running\n"))
}

func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Payment received</title></head>
<body>
<h1>✅ Payment received</h1>
<p>Thank you! You can return to the Telegram bot — your account will be activated shortly.</p>
</body>
</html>`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
