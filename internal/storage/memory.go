package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
)

// Memory is a map-backed Backend with the same semantics as the database
// drivers. It backs tests and the "memory" config driver for ephemeral runs.
type Memory struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.TrainingSession
	accounts map[uuid.UUID]models.Account
}

var _ Backend = (*Memory)(nil)

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[uuid.UUID]models.TrainingSession),
		accounts: make(map[uuid.UUID]models.Account),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) ListSessions(ctx context.Context, ownerID uuid.UUID, f Filter) ([]models.TrainingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.TrainingSession
	for _, s := range m.sessions {
		if s.OwnerID != ownerID {
			continue
		}
		dt, err := s.DateTime()
		if err != nil || !f.matches(dt) {
			continue
		}
		result = append(result, cloneSession(s))
	}
	sort.Slice(result, func(i, j int) bool {
		di, _ := result[i].DateTime()
		dj, _ := result[j].DateTime()
		if di.Equal(dj) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return di.After(dj)
	})
	return result, nil
}

func (m *Memory) GetSession(ctx context.Context, ownerID, id uuid.UUID) (*models.TrainingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	out := cloneSession(s)
	return &out, nil
}

func (m *Memory) CreateSession(ctx context.Context, ownerID uuid.UUID, s *models.TrainingSession) (uuid.UUID, error) {
	if _, err := checkSession(s); err != nil {
		return uuid.Nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneSession(*s)
	stored.ID = uuid.New()
	stored.OwnerID = ownerID
	m.sessions[stored.ID] = stored
	return stored.ID, nil
}

func (m *Memory) UpdateSession(ctx context.Context, ownerID, id uuid.UUID, s *models.TrainingSession) error {
	if _, err := checkSession(s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[id]
	if !ok || existing.OwnerID != ownerID {
		return ErrNotFound
	}
	stored := cloneSession(*s)
	stored.ID = id
	stored.OwnerID = ownerID
	m.sessions[id] = stored
	return nil
}

func (m *Memory) DeleteSession(ctx context.Context, ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[id]
	if !ok || existing.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *Memory) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			out := a
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateAccount(ctx context.Context, a *models.Account) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return uuid.Nil, models.ErrEmailTaken
		}
	}
	stored := *a
	stored.ID = uuid.New()
	m.accounts[stored.ID] = stored
	return stored.ID, nil
}

func cloneSession(s models.TrainingSession) models.TrainingSession {
	out := s
	out.Exercises = make([]models.ExerciseItem, len(s.Exercises))
	copy(out.Exercises, s.Exercises)
	for i, item := range out.Exercises {
		reps := make([]int, len(item.Reps))
		copy(reps, item.Reps)
		out.Exercises[i].Reps = reps
		if item.WeightKG != nil {
			w := *item.WeightKG
			out.Exercises[i].WeightKG = &w
		}
	}
	return out
}
