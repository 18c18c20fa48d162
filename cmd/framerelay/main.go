// If you are AI: This is the main entrypoint for the framerelay process.
// It handles env and configuration loading, role startup, the status server and graceful shutdown.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"framerelay/internal/config"
	"framerelay/internal/core/cpuinfo"
	"framerelay/internal/core/session"
	"framerelay/internal/logging"
	"framerelay/internal/server"
	"framerelay/internal/svc/relay"
)

// main is the entrypoint for the framerelay process.
// It loads configuration, starts the relay role and the status server, and handles graceful shutdown.
func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file (defaults when empty)")
	role := flag.String("role", relay.RoleLoopback, "Process role: host, client or loopback")
	envPath := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	if err := run(*configPath, *role, *envPath); err != nil {
		failure(err)
		os.Exit(1)
	}
}

// run wires the process together and blocks until shutdown.
func run(configPath, role, envPath string) error {
	if err := config.LoadEnv(envPath); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	features := cpuinfo.Host().Features()
	logger.Info("starting",
		zap.String("role", role),
		zap.String("region", cfg.Region.Name),
		zap.Stringer("cpu", features),
		zap.String("strategy", cfg.Transport.Strategy))

	registry := session.NewRegistry()
	mgr := relay.NewManager(registry, logger)
	if err := mgr.StartRole(cfg, role); err != nil {
		mgr.Stop()
		return fmt.Errorf("start %s role: %w", role, err)
	}

	srv := server.New(cfg, registry, mgr, role, logger)

	// Tasks are summarized before the manager releases them
	var tasks []relay.TaskInfo
	shutdownHandler := server.NewShutdownHandler(srv, context.Background(), func() error {
		tasks = mgr.GetTasks()
		return mgr.Stop()
	})

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("status server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	if err := shutdownHandler.Wait(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	summary(os.Stdout, role, features, tasks)
	logger.Info("shut down cleanly")
	return nil
}

// loadConfig reads the YAML file (or defaults), then applies env overrides and validates.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
