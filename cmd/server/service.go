package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/qpdf-utils/internal/api"
	"github.com/JaimeStill/qpdf-utils/internal/config"
	"github.com/JaimeStill/qpdf-utils/internal/server"
	"github.com/JaimeStill/qpdf-utils/pkg/lifecycle"
	"github.com/JaimeStill/qpdf-utils/pkg/logging"
	"github.com/JaimeStill/qpdf-utils/pkg/middleware"
	"github.com/JaimeStill/qpdf-utils/pkg/qpdf"
	"github.com/JaimeStill/qpdf-utils/pkg/routes"
	"github.com/JaimeStill/qpdf-utils/pkg/tempfile"
)

// Service coordinates the lifecycle of all subsystems.
type Service struct {
	lifecycle *lifecycle.Coordinator
	logger    *slog.Logger
	temp      *tempfile.Store
	server    server.System
}

// NewService creates and initializes the service with all subsystems.
func NewService(cfg *config.Config) (*Service, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	temp, err := tempfile.New(&cfg.Temp, logger)
	if err != nil {
		return nil, fmt.Errorf("temp store init failed: %w", err)
	}

	runner := qpdf.New(&cfg.QPDF, logger)
	pdfHandler := api.NewHandler(runner, temp, &cfg.Documents, cfg.Server.MaxUploadSizeBytes(), logger)

	routeSys := routes.New(logger)
	if err := registerRoutes(routeSys, lc, pdfHandler, cfg); err != nil {
		return nil, fmt.Errorf("route registration failed: %w", err)
	}

	handler := middleware.Apply(
		routeSys.Build(),
		middleware.Logger(logger),
		middleware.CORS(&cfg.CORS),
		middleware.TrimSlash(),
	)

	logger.Info(
		"service initialized",
		"addr", cfg.Server.Addr(),
		"qpdf", runner.Binary(),
		"temp_dir", temp.Dir(),
		"cors", cfg.CORS.Enabled,
	)

	return &Service{
		lifecycle: lc,
		logger:    logger,
		temp:      temp,
		server:    server.New(&cfg.Server, handler, logger),
	}, nil
}

// Start begins all subsystems and returns once their hooks are registered.
func (s *Service) Start() error {
	s.logger.Info("starting service")

	if err := s.temp.Start(s.lifecycle); err != nil {
		return fmt.Errorf("temp store start failed: %w", err)
	}

	if err := s.server.Start(s.lifecycle); err != nil {
		return fmt.Errorf("server start failed: %w", err)
	}

	go func() {
		s.lifecycle.WaitForStartup()
		s.logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown gracefully stops all subsystems within timeout.
func (s *Service) Shutdown(timeout time.Duration) error {
	s.logger.Info("initiating shutdown")

	if err := s.lifecycle.Shutdown(timeout); err != nil {
		return err
	}

	s.logger.Info("all subsystems shut down successfully")
	return nil
}
