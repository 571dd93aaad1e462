// Package importer loads training sessions from a JSON export file into the
// store, for migrating logs kept in other tools or restoring backups.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

// Export is the import file format: a flat list of training sessions in the
// same shape the API serves.
type Export struct {
	Sessions []models.TrainingSession `json:"sessions"`
}

// Stats tracks import progress.
type Stats struct {
	SessionsImported int
	SessionsSkipped  int

	SkippedTitles []string
}

// Importer reads an export file and inserts its sessions for one account.
type Importer struct {
	store  storage.Store
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. With dryRun set nothing is written; the stats
// report what would have been imported.
func New(store storage.Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

// Import reads the export file and inserts every valid session for the given
// owner. Invalid sessions are skipped and counted, not fatal; a file that
// cannot be read or parsed is.
func (imp *Importer) Import(ctx context.Context, path string, ownerID uuid.UUID) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading %s: %w", path, err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return &imp.stats, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i := range export.Sessions {
		session := &export.Sessions[i]
		if err := session.Validate(); err != nil {
			imp.log.Warn("skipping invalid session",
				"index", i,
				"title", session.FullTitle(),
				"error", err,
			)
			imp.stats.SessionsSkipped++
			imp.stats.SkippedTitles = append(imp.stats.SkippedTitles, session.FullTitle())
			continue
		}

		if imp.dryRun {
			imp.stats.SessionsImported++
			continue
		}

		if _, err := imp.store.CreateSession(ctx, ownerID, session); err != nil {
			return &imp.stats, fmt.Errorf("inserting session %s: %w", session.FullTitle(), err)
		}
		imp.stats.SessionsImported++
	}

	return &imp.stats, nil
}
