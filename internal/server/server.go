// Package server wires the HTTP surface: router, middleware stack, and
// graceful lifecycle.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fieldscript/fieldscript/internal/apperr"
	"github.com/fieldscript/fieldscript/internal/handler"
	"github.com/fieldscript/fieldscript/internal/job"
	"github.com/fieldscript/fieldscript/internal/model"
	"github.com/fieldscript/fieldscript/internal/openapi"
	"github.com/fieldscript/fieldscript/internal/server/middleware"
	"github.com/fieldscript/fieldscript/internal/store"
	"github.com/fieldscript/fieldscript/internal/usage"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Dev             bool
	RateLimit       int
	RateWindow      time.Duration
}

// DefaultConfig returns a Config with production defaults. Dev mode is off,
// which hides dry-run and the /debug endpoints.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		RateLimit:       middleware.DefaultRateLimit,
		RateWindow:      middleware.DefaultRateWindow,
	}
}

// Server is the top-level HTTP server. It owns the Chi router, the API key
// store, the job manager, and the usage recorder.
type Server struct {
	cfg        Config
	router     chi.Router
	keys       store.APIKeyStore
	jobs       *job.Manager
	rec        *usage.Recorder
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes and middleware wired. Call
// ListenAndServe to start accepting connections.
func New(cfg Config, keys store.APIKeyStore, jobs *job.Manager, rec *usage.Recorder, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		keys:   keys,
		jobs:   jobs,
		rec:    rec,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	limiter := middleware.NewRateLimiter(s.cfg.RateLimit, s.cfg.RateWindow)

	// --- Global middleware ---
	// The rate limiter runs before auth, so rejected bursts never touch the
	// key store. RealIP must precede it so limits attach to the real client.
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Project-Id", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Logger(s.logger, s.rec))
	r.Use(middleware.Recoverer(s.logger))
	r.Use(limiter.Middleware)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, req, apperr.NotFound("Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, req, apperr.FromStatus(http.StatusMethodNotAllowed, "Method not allowed"))
	})

	// --- System endpoints (no auth) ---
	r.Get("/health", handler.Health)
	r.Get("/version", handler.Version)

	spec := openapi.Generate(fmt.Sprintf("http://%s:%d", s.cfg.Host, s.cfg.Port))
	r.Get("/openapi.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(spec)
	})

	// --- API key management ---
	keyHandler := handler.NewAPIKeyHandler(s.keys)
	r.Route("/api/projects/{projectID}/api-keys", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.keys))
			r.Post("/", keyHandler.Create)
			r.Get("/", keyHandler.List)
		})
		// Revocation accepts the key being revoked, so a leaked key can
		// always be shut off with itself.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthenticateAllowRevoked(s.keys))
			r.Post("/{keyID}/revoke", keyHandler.Revoke)
		})
	})

	// --- OCR intake ---
	ocrHandler := handler.NewOCRHandler(s.jobs, s.cfg.Dev)
	r.Route("/v1/projects/{projectID}", func(r chi.Router) {
		r.Post("/ocr", ocrHandler.Submit)
		r.Post("/ocr/dry-run", ocrHandler.DryRun)
		r.Get("/jobs/{jobID}", ocrHandler.GetJob)
		r.Post("/export", ocrHandler.Export)
	})

	// --- Diagnostics (dev-mode only; 404 otherwise) ---
	debugHandler := handler.NewDebugHandler(s.rec, s.cfg.Dev)
	r.Get("/debug/usage", debugHandler.Usage)
	r.Get("/debug/health", debugHandler.Health)

	s.router = r
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, e *apperr.Error) {
	middleware.SetErrorCode(r.Context(), string(e.Code))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		ErrorCode: string(e.Code),
		Message:   e.Message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then drains in-flight requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "dev", s.cfg.Dev)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
