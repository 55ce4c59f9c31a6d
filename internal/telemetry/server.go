package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Health tracks what /healthz reports. The zero value is not ready, and the
// setters are no-ops on a nil *Health.
type Health struct {
	mu      sync.RWMutex
	ready   bool
	user    string
	since   time.Time
	attempt int
}

// SetReady records that a session reached READY as user.
func (h *Health) SetReady(user string, at time.Time) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = true
	h.user = user
	h.since = at
}

// SetNotReady records that the current session ended.
func (h *Health) SetNotReady() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = false
	h.user = ""
	h.since = time.Time{}
}

// SetAttempt records the current connection attempt number.
func (h *Health) SetAttempt(n int) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempt = n
}

// HealthStatus is the JSON body served by /healthz.
type HealthStatus struct {
	Ready   bool       `json:"ready"`
	User    string     `json:"user,omitempty"`
	Since   *time.Time `json:"since,omitempty"`
	Attempt int        `json:"attempt"`
}

// Status returns a snapshot of the health state.
func (h *Health) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	st := HealthStatus{Ready: h.ready, User: h.user, Attempt: h.attempt}
	if !h.since.IsZero() {
		since := h.since
		st.Since = &since
	}
	return st
}

// NewRouter returns a chi router serving /metrics from gatherer and /healthz
// from health.
func NewRouter(gatherer prometheus.Gatherer, health *Health) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		st := health.Status()
		w.Header().Set("Content-Type", "application/json")
		if !st.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(st)
	})

	return r
}

// Server is the optional metrics and health endpoint.
type Server struct {
	addr   string
	srv    *http.Server
	logger *slog.Logger
}

// NewServer creates a server for addr. It does not listen until Start.
func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr: addr,
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start listens on the configured address and serves in the background.
// It returns the bound address, which differs from the configured one when
// the port is 0.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", err
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", "error", err)
		}
	}()

	s.logger.Info("metrics server listening", "addr", ln.Addr().String())
	return ln.Addr().String(), nil
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
