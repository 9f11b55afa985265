// Package server exposes the calculators over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	pruneInterval   = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Server bundles the router with its runtime dependencies.
type Server struct {
	cfg     *Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	limiter *rateLimiter
	router  chi.Router
	started time.Time
}

type handler struct {
	logger      *zap.Logger
	metrics     *metrics.Metrics
	maxBodySize int64
	version     string
	started     time.Time
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// New constructs the server. A nil config, logger or metrics is replaced
// by its default.
func New(logger *zap.Logger, cfg *Config, m *metrics.Metrics, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if m == nil {
		m = metrics.New()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		limiter: newRateLimiter(cfg.RateLimit),
		router:  chi.NewRouter(),
		started: time.Now(),
	}

	h := &handler{
		logger:      logger,
		metrics:     m,
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
		started:     s.started,
	}
	s.routes(h)
	return s
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, cfg *Config, m *metrics.Metrics, version string) http.Handler {
	return New(logger, cfg, m, version).Handler()
}

func (s *Server) routes(h *handler) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(s.metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.limiter.middleware)

	s.router.Get("/health", h.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)

		r.Post("/nir/validate", h.handleNIRValidate)
		r.Get("/nir/format", h.handleNIRFormat)

		r.Post("/reimbursement", h.handleReimbursement)
		r.Post("/reimbursement/sweep", h.handleReimbursementSweep)
		r.Get("/reimbursement/options", h.handleReimbursementOptions)

		r.Post("/margin", h.handleMargin)
		r.Post("/margin/sweep", h.handleMarginSweep)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.pruneLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening",
			zap.String("op", "server.Run"),
			zap.String("address", s.cfg.Address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down", zap.String("op", "server.Run"))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining := s.limiter.prune()
			s.logger.Debug("pruned rate limiter buckets",
				zap.String("op", "server.pruneLoop"),
				zap.Int("remaining", remaining),
			)
		}
	}
}

// decodeJSON reads the limited request body into dst and answers the error
// itself when it returns false.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.respondCodedError(w, status, msg, "", op)
}

func (h *handler) respondCodedError(w http.ResponseWriter, status int, msg, code, op string) {
	level := h.logger.Warn
	if status >= http.StatusInternalServerError {
		level = h.logger.Error
	}
	level("request error",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if err := writeJSON(w, status, payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// writeJSON encodes payload before touching the response, so a payload that
// cannot be encoded turns into a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response","code":"encode_failed"}` + "\n"))
		return fmt.Errorf("encode response: %w", err)
	}
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}
