package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/importer"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/storage/postgres"
	"github.com/claude/replog/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to JSON export file (required)")
	email := flag.String("email", "", "email of the account to import into (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the store")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" || *email == "" {
		fmt.Fprintf(os.Stderr, "Usage: replog-import -config config.yaml -file export.json -email you@example.com [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	backend, err := openBackend(ctx, cfg, log)
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

	if *dryRun {
		log.Info("DRY RUN mode — no sessions will be written")
	}

	imp := importer.New(backend, log, *dryRun)
	stats, err := imp.Import(ctx, *filePath, account.ID)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Backend, error) {
	switch cfg.Database.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := postgres.RunMigrations(dsn, "migrations"); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return postgres.New(ctx, dsn)
	case "sqlite":
		return sqlite.Open(cfg.Database.Path)
	case "memory":
		return nil, fmt.Errorf("the memory driver holds no accounts to import into")
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"sessions_imported", stats.SessionsImported,
		"sessions_skipped", stats.SessionsSkipped,
	)
	if len(stats.SkippedTitles) > 0 {
		log.Info("skipped sessions", "titles", stats.SkippedTitles)
	}
}
