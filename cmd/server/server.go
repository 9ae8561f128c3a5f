package main

import (
	"fmt"
	"time"

	"github.com/JaimeStill/worksheet-lab/internal/config"
	"github.com/JaimeStill/worksheet-lab/internal/infrastructure"
	"github.com/JaimeStill/worksheet-lab/internal/worksheets"
)

// Server owns the worksheet service: shared infrastructure, the mounted API
// module, and the HTTP listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
	started time.Time
}

// NewServer wires every subsystem from cfg without starting any of them.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg, worksheets.Migrations)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	router := buildRouter(infra, cfg)
	modules.Mount(router)

	infra.Logger.Info("server initialized", startupAttrs(cfg)...)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// startupAttrs summarizes the backends and features a deployment runs with.
func startupAttrs(cfg *config.Config) []any {
	return []any{
		"addr", cfg.Server.Addr(),
		"env", cfg.Env(),
		"version", cfg.Version,
		"api", cfg.API.BasePath,
		"database", cfg.Database.Driver,
		"storage", cfg.Storage.Driver,
		"cache", cfg.Cache.Enabled,
		"auth", cfg.Auth.IsEnabled(),
		"thumbnails", cfg.Worksheets.GenerateThumbnail,
	}
}

// Start returns once the listener is bound. Database and bucket startup
// continues in the background and is logged when it finishes.
func (s *Server) Start() error {
	s.started = time.Now()
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return fmt.Errorf("start infrastructure: %w", err)
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return fmt.Errorf("start http: %w", err)
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready", "startup", time.Since(s.started).Round(time.Millisecond))
	}()

	return nil
}

// Shutdown drains in-flight requests, then closes storage and database
// handles, giving up after timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	begin := time.Now()
	s.infra.Logger.Info("initiating shutdown", "timeout", timeout)

	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		s.infra.Logger.Error("shutdown incomplete", "error", err)
		return err
	}

	s.infra.Logger.Info("shutdown complete", "duration", time.Since(begin).Round(time.Millisecond))
	return nil
}
