package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/mcp"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/storage/postgres"
	"github.com/claude/replog/internal/storage/sqlite"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	email := flag.String("email", "", "email of the account to serve (required)")
	flag.Parse()

	// Stdout carries the MCP protocol, logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *email == "" {
		fmt.Fprintf(os.Stderr, "Usage: replog-mcp -config config.yaml -email you@example.com\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Error("failed to open storage backend", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	account, err := backend.GetAccountByEmail(ctx, *email)
	if err != nil {
		log.Error("account lookup failed", "email", *email, "error", err)
		os.Exit(1)
	}

	srv := mcp.New(backend, Version, log)
	log.Info("RepLog MCP server starting", "version", Version, "account", account.Email)

	err = server.ServeStdio(srv, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithOwnerID(ctx, account.ID)
	}))
	if err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return postgres.New(ctx, cfg.Database.DSN())
	case "sqlite":
		return sqlite.Open(cfg.Database.Path)
	case "memory":
		return nil, fmt.Errorf("the memory driver holds no data to serve")
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}
