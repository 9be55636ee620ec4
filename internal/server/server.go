package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/papertree/internal/api"
	"github.com/jackzampolin/papertree/internal/config"
	"github.com/jackzampolin/papertree/internal/document"
	"github.com/jackzampolin/papertree/internal/home"
	"github.com/jackzampolin/papertree/internal/metrics"
	"github.com/jackzampolin/papertree/internal/server/endpoints"
	"github.com/jackzampolin/papertree/internal/svcctx"
)

// BuildFunc reconstructs the served document from the current config.
type BuildFunc func(ctx context.Context, cfg *config.Config) (*document.Document, error)

// Server is the papertree HTTP server. It serves one document, built in
// the background on start and again whenever the config file changes.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	logger     *slog.Logger
	store      *document.Store
	build      BuildFunc

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	// rebuild is signalled by config reloads
	rebuild chan struct{}

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the papertree home directory
	Home *home.Dir
	// Store holds the served document; a new one is created if nil
	Store *document.Store
	// Build produces the document; when nil the store must be filled by the caller
	Build BuildFunc
	// Metrics receives build timings; a new recorder is created if nil
	Metrics *metrics.Recorder
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = document.NewStore()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRecorder(0)
	}
	if cfg.Build != nil && cfg.ConfigManager == nil {
		return nil, fmt.Errorf("build function requires a config manager")
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		store:     cfg.Store,
		build:     cfg.Build,
		rebuild:   make(chan struct{}, 1),
	}

	s.services = &svcctx.Services{
		Logger:  cfg.Logger,
		Home:    cfg.Home,
		Config:  cfg.ConfigManager,
		Store:   cfg.Store,
		Metrics: cfg.Metrics,
	}

	if cfg.ConfigManager != nil && cfg.Build != nil {
		cfg.ConfigManager.OnChange(func(*config.Config) {
			s.requestRebuild()
		})
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start builds the document and serves it.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if s.build != nil {
		s.requestRebuild()
		go s.buildLoop(ctx)
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

func (s *Server) requestRebuild() {
	select {
	case s.rebuild <- struct{}{}:
	default:
	}
}

// buildLoop serializes builds. Reload signals that arrive during a build
// collapse into one follow-up build.
func (s *Server) buildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.rebuild:
			s.Rebuild(ctx)
		}
	}
}

// Rebuild runs the build function once and swaps in the result. On failure
// the previously served document stays in place.
func (s *Server) Rebuild(ctx context.Context) {
	if s.build == nil {
		return
	}
	start := time.Now()
	doc, err := s.build(ctx, s.configMgr.Get())
	s.services.Metrics.RecordSince("", "build", "", start, err)
	if err != nil {
		s.logger.Error("document build failed", "error", err)
		return
	}
	s.store.Set(doc)
	s.logger.Info("document ready", "id", doc.ID(), "pages", doc.Pages(), "elapsed", time.Since(start))
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Metrics returns the metrics recorder.
func (s *Server) Metrics() *metrics.Recorder {
	return s.services.Metrics
}

// Store returns the document store.
func (s *Server) Store() *document.Store {
	return s.store
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures a document has been built.
// Returns 503 Service Unavailable until the first build finishes.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.store.Ready() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"document not built yet"}`))
			return
		}
		next(w, r)
	}
}
