// Package storage defines the persistence contract for accounts and training
// sessions, plus an in-memory implementation. Database-backed implementations
// live in the postgres and sqlite subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a session or account does not exist or is
	// not owned by the requesting account. The two cases are deliberately
	// indistinguishable.
	ErrNotFound = errors.New("not found")
)

// Filter narrows a session listing to a date range. Zero bounds are open.
// End is exclusive.
type Filter struct {
	Start time.Time
	End   time.Time
}

// matches reports whether a session's combined date-time falls in the range.
func (f Filter) matches(dt time.Time) bool {
	if !f.Start.IsZero() && dt.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && !dt.Before(f.End) {
		return false
	}
	return true
}

// Store is the persistence collaborator for training sessions. All access is
// scoped to an owner; a session belonging to a different account behaves as
// if it did not exist. Listings are ordered newest-first by combined
// date+time.
type Store interface {
	ListSessions(ctx context.Context, ownerID uuid.UUID, f Filter) ([]models.TrainingSession, error)
	GetSession(ctx context.Context, ownerID, id uuid.UUID) (*models.TrainingSession, error)
	CreateSession(ctx context.Context, ownerID uuid.UUID, s *models.TrainingSession) (uuid.UUID, error)
	UpdateSession(ctx context.Context, ownerID, id uuid.UUID, s *models.TrainingSession) error
	DeleteSession(ctx context.Context, ownerID, id uuid.UUID) error
}

// Accounts is the account collaborator.
type Accounts interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	CreateAccount(ctx context.Context, a *models.Account) (uuid.UUID, error)
}

// Backend combines both contracts; every storage driver implements it.
type Backend interface {
	Store
	Accounts
	Close() error
}

// Stats aggregates a set of sessions for the stats endpoint and MCP tools.
type Stats struct {
	Sessions int     `json:"sessions"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	VolumeKG float64 `json:"volumeKg"`
}

// ComputeStats totals session count, sets, reps, and lifted volume
// (weight × reps, counting only items with a weight).
func ComputeStats(sessions []models.TrainingSession) Stats {
	var st Stats
	st.Sessions = len(sessions)
	for _, s := range sessions {
		for _, item := range s.Exercises {
			st.Sets += item.Sets
			for _, reps := range item.Reps {
				st.Reps += reps
				if item.WeightKG != nil {
					st.VolumeKG += *item.WeightKG * float64(reps)
				}
			}
		}
	}
	return st
}

// checkSession runs the shared pre-persist checks all backends apply.
func checkSession(s *models.TrainingSession) (time.Time, error) {
	if len(s.Exercises) == 0 {
		return time.Time{}, models.ErrNoExercises
	}
	dt, err := s.DateTime()
	if err != nil {
		return time.Time{}, err
	}
	return dt, nil
}
