// Package web serves the standardizer over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/recordprep/internal/batch"
	"github.com/recordprep/internal/config"
	"github.com/recordprep/internal/store"
	"github.com/recordprep/internal/web/handlers"
	"github.com/recordprep/internal/web/middleware"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Server represents the web server
type Server struct {
	config     config.Config
	std        *batch.Standardizer
	store      *store.Store
	log        *zap.Logger
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance. st may be nil, in which case
// runs are not persisted and /api/runs is not served.
func NewServer(cfg config.Config, std *batch.Standardizer, st *store.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		config: cfg,
		std:    std,
		store:  st,
		log:    log.Named("web"),
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	health := &handlers.HealthHandler{Version: Version, Started: time.Now(), StoreEnabled: s.store != nil}
	standardize := &handlers.StandardizeHandler{Std: s.std, Store: s.store, Log: s.log}
	parser := &handlers.ParseHandler{Std: s.std}

	// Health stays outside the authenticated subrouter.
	s.router.HandleFunc("/api/health", health.Health).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/addresses/standardize", standardize.Addresses).Methods("POST", "OPTIONS")
	api.HandleFunc("/names/standardize", standardize.Names).Methods("POST", "OPTIONS")
	api.HandleFunc("/parse/address", parser.Address).Methods("POST", "OPTIONS")
	api.HandleFunc("/parse/name", parser.Name).Methods("POST", "OPTIONS")
	if s.store != nil {
		runs := &handlers.RunsHandler{Store: s.store}
		api.HandleFunc("/runs/{id}", runs.GetRun).Methods("GET")
	}

	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging(s.log))
	api.Use(middleware.MaxBody(s.config.Server.MaxBodyBytes))
	api.Use(middleware.APIKey(s.config.Auth.APIKey))
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done, then shuts down within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
