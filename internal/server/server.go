// Package server runs the HTTP listener for the PDF service and drains in-flight
// uploads on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/JaimeStill/qpdf-utils/internal/config"
	"github.com/JaimeStill/qpdf-utils/pkg/lifecycle"
	"github.com/docker/go-units"
)

// System manages the HTTP server lifecycle including startup and shutdown.
type System interface {
	Start(lc *lifecycle.Coordinator) error

	// Addr returns the bound listen address once Start has succeeded,
	// otherwise the configured one.
	Addr() string
}

type server struct {
	http            *http.Server
	listener        net.Listener
	maxUpload       int64
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New creates a server system for handler. Request headers must arrive within the
// read timeout; bodies are bounded by the handler's upload limit.
func New(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) System {
	return &server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeoutDuration(),
			ReadTimeout:       cfg.ReadTimeoutDuration(),
			WriteTimeout:      cfg.WriteTimeoutDuration(),
		},
		maxUpload:       cfg.MaxUploadSizeBytes(),
		logger:          logger.With("system", "server"),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}
}

func (s *server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

// Start binds the listen address, serves in the background and shuts the
// server down when the coordinator context is cancelled. A bind failure is
// returned directly.
func (s *server) Start(lc *lifecycle.Coordinator) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	s.listener = ln

	attrs := []any{"addr", s.Addr()}
	if s.maxUpload > 0 {
		attrs = append(attrs, "max_upload", units.HumanSize(float64(s.maxUpload)))
	}

	go func() {
		s.logger.Info("server listening", attrs...)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.logger.Info("draining uploads", "timeout", s.shutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		} else {
			s.logger.Info("server shutdown complete")
		}
	})

	return nil
}
