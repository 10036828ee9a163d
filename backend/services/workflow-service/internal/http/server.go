package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ServerOptions tunes the listener. Zero values pick the defaults below.
type ServerOptions struct {
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server serves the workflow API until its context ends.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewServer builds server.
func NewServer(addr string, handler http.Handler, opts ServerOptions, logger *zap.Logger) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       time.Minute,
			ErrorLog:          zap.NewStdLog(logger.Named("http")),
		},
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          logger,
	}
}

// Run listens on the configured address. Cancelling ctx drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		s.logger.Info("workflow api listening", zap.String("addr", s.server.Addr))
		done <- s.server.ListenAndServe()
	}()

	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.logger.Info("draining workflow api", zap.Duration("timeout", s.shutdownTimeout))
	if err := s.server.Shutdown(drainCtx); err != nil {
		return err
	}
	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
