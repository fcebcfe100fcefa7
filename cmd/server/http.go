package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/JaimeStill/consult/internal/config"
	"github.com/JaimeStill/consult/pkg/lifecycle"
)

type httpServer struct {
	srv     *http.Server
	logger  *slog.Logger
	drain   time.Duration
	bound   string
	serveCh chan error
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *httpServer {
	return &httpServer{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeoutDuration(),
			ReadHeaderTimeout: cfg.ReadHeaderTimeoutDuration(),
			WriteTimeout:      cfg.WriteTimeoutDuration(),
			IdleTimeout:       cfg.IdleTimeoutDuration(),
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger:  logger.With("system", "http"),
		drain:   cfg.ShutdownTimeoutDuration(),
		serveCh: make(chan error, 1),
	}
}

// Start binds the listen address and serves in the background. A bind
// failure is returned here rather than surfacing later from the goroutine.
// The shutdown hook drains connections for at most the server's shutdown timeout.
func (s *httpServer) Start(lc *lifecycle.Coordinator) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	s.bound = ln.Addr().String()

	go func() {
		s.logger.Info("server listening", "addr", s.bound)
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			s.logger.Error("server error", "error", err)
		}
		s.serveCh <- err
	}()

	lc.OnShutdown("http", func(ctx context.Context) error {
		drainCtx, cancel := context.WithTimeout(ctx, s.drain)
		defer cancel()

		if err := s.srv.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("drain connections: %w", err)
		}
		if err := <-s.serveCh; err != nil {
			return err
		}
		s.logger.Info("server shutdown complete")
		return nil
	})

	return nil
}
