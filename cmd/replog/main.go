package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/server"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/storage/postgres"
	"github.com/claude/replog/internal/storage/sqlite"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit (postgres driver)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepLog starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	backend, err := openBackend(cfg, log)
	if err != nil {
		log.Error("failed to open storage backend", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	srv := server.New(backend, backend, server.Options{
		SessionSecret: cfg.Auth.SessionSecret,
		BcryptCost:    cfg.Auth.BcryptCost,
		PageSize:      cfg.Server.PageSize,
	}, log)

	// Start the listener, tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "driver", cfg.Database.Driver)
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// openBackend connects the configured storage driver, running migrations for
// postgres.
func openBackend(cfg *config.Config, log *slog.Logger) (storage.Backend, error) {
	switch cfg.Database.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := postgres.RunMigrations(dsn, "migrations"); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations applied")
		db, err := postgres.New(context.Background(), dsn)
		if err != nil {
			return nil, err
		}
		log.Info("database connected", "driver", "postgres")
		return db, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		log.Info("database opened", "driver", "sqlite", "path", cfg.Database.Path)
		return db, nil
	case "memory":
		log.Warn("using the in-memory backend, data will not survive a restart")
		return storage.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}
