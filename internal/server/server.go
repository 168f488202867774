package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// Server wraps an http.Server with lifecycle management.
type Server struct {
	httpServer *http.Server
	logger     observability.Logger

	mu      sync.Mutex
	running bool
}

// NewServer creates a server from configuration.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger observability.Logger) *Server {
	if logger == nil {
		logger = observability.NopLogger()
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout.Duration(),
			WriteTimeout: cfg.WriteTimeout.Duration(),
			IdleTimeout:  cfg.IdleTimeout.Duration(),
		},
		logger: logger,
	}
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called; a clean shutdown returns nil.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("server listening",
		observability.String("addr", s.httpServer.Addr),
	)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("server shutting down",
		observability.String("addr", s.httpServer.Addr),
	)

	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// MetricsServer serves the metrics and probe endpoints on a dedicated
// listener.
func MetricsServer(cfg config.MetricsConfig, metrics *observability.Metrics, probes *http.ServeMux, logger observability.Logger) *Server {
	mux := http.NewServeMux()

	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux.Handle(path, metrics.Handler())

	if probes != nil {
		mux.Handle("/", probes)
	}

	return NewServer(config.ServerConfig{
		ListenAddr:   cfg.ListenAddr,
		ReadTimeout:  config.Duration(10 * time.Second),
		WriteTimeout: config.Duration(30 * time.Second),
		IdleTimeout:  config.Duration(60 * time.Second),
	}, mux, logger)
}
