package importer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

func writeExport(t *testing.T, export Export) string {
	t.Helper()
	data, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSession(date, title string) models.TrainingSession {
	return models.TrainingSession{
		Date:       date,
		Time:       "18:00",
		ShortTitle: title,
		Exercises: []models.ExerciseItem{
			{Exercise: "Deadlift", SetType: models.SetTypeWork, Sets: 1, Reps: []int{5}},
		},
	}
}

func TestImport(t *testing.T) {
	mem := storage.NewMemory()
	owner := uuid.New()

	path := writeExport(t, Export{Sessions: []models.TrainingSession{
		sampleSession("2026-01-05", "A"),
		sampleSession("2026-01-07", "B"),
	}})

	stats, err := New(mem, testLogger(), false).Import(context.Background(), path, owner)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsImported != 2 || stats.SessionsSkipped != 0 {
		t.Errorf("stats = %+v, want 2 imported", stats)
	}

	stored, err := mem.ListSessions(context.Background(), owner, storage.Filter{})
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored %d sessions, want 2", len(stored))
	}
	if stored[0].ShortTitle != "B" {
		t.Errorf("newest stored session = %q, want B", stored[0].ShortTitle)
	}
}

// TestImportSkipsInvalid counts and names unimportable sessions without
// aborting the run.
func TestImportSkipsInvalid(t *testing.T) {
	mem := storage.NewMemory()
	owner := uuid.New()

	broken := sampleSession("not-a-date", "Broken")
	path := writeExport(t, Export{Sessions: []models.TrainingSession{
		sampleSession("2026-01-05", "Good"),
		broken,
	}})

	stats, err := New(mem, testLogger(), false).Import(context.Background(), path, owner)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsImported != 1 || stats.SessionsSkipped != 1 {
		t.Fatalf("stats = %+v, want 1 imported and 1 skipped", stats)
	}
	if len(stats.SkippedTitles) != 1 || stats.SkippedTitles[0] != broken.FullTitle() {
		t.Errorf("SkippedTitles = %v", stats.SkippedTitles)
	}
}

// TestImportDryRun reports counts without writing anything.
func TestImportDryRun(t *testing.T) {
	mem := storage.NewMemory()
	owner := uuid.New()

	path := writeExport(t, Export{Sessions: []models.TrainingSession{
		sampleSession("2026-01-05", "A"),
	}})

	stats, err := New(mem, testLogger(), true).Import(context.Background(), path, owner)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsImported != 1 {
		t.Errorf("dry-run imported = %d, want 1", stats.SessionsImported)
	}

	stored, _ := mem.ListSessions(context.Background(), owner, storage.Filter{})
	if len(stored) != 0 {
		t.Errorf("dry run stored %d sessions, want 0", len(stored))
	}
}

func TestImportBadFile(t *testing.T) {
	mem := storage.NewMemory()

	if _, err := New(mem, testLogger(), false).Import(context.Background(), filepath.Join(t.TempDir(), "missing.json"), uuid.New()); err == nil {
		t.Error("missing file: want error")
	}

	path := filepath.Join(t.TempDir(), "garbage.json")
	os.WriteFile(path, []byte("not json"), 0o600)
	if _, err := New(mem, testLogger(), false).Import(context.Background(), path, uuid.New()); err == nil {
		t.Error("garbage file: want error")
	}
}
