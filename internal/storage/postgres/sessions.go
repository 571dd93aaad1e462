package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, owner_id, session_date, session_time, short_title,
	duration_min, bodyweight_kg, comments, exercises`

func (db *DB) ListSessions(ctx context.Context, ownerID uuid.UUID, f storage.Filter) ([]models.TrainingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM training_sessions WHERE owner_id = $1`
	args := []any{ownerID}
	if !f.Start.IsZero() {
		args = append(args, f.Start)
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if !f.End.IsZero() {
		args = append(args, f.End)
		query += fmt.Sprintf(" AND occurred_at < $%d", len(args))
	}
	query += " ORDER BY occurred_at DESC, id"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (db *DB) GetSession(ctx context.Context, ownerID, id uuid.UUID) (*models.TrainingSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM training_sessions WHERE id = $1 AND owner_id = $2`,
		id, ownerID)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return s, err
}

func (db *DB) CreateSession(ctx context.Context, ownerID uuid.UUID, s *models.TrainingSession) (uuid.UUID, error) {
	dt, err := checkAndMarshal(s)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO training_sessions
		 (id, owner_id, occurred_at, session_date, session_time, short_title,
		  duration_min, bodyweight_kg, comments, exercises)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		id, ownerID, dt.at, s.Date, s.Time, s.ShortTitle,
		s.DurationMin, s.BodyweightKG, s.Comments, dt.exercises)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

func (db *DB) UpdateSession(ctx context.Context, ownerID, id uuid.UUID, s *models.TrainingSession) error {
	dt, err := checkAndMarshal(s)
	if err != nil {
		return err
	}

	tag, err := db.Pool.Exec(ctx,
		`UPDATE training_sessions SET
		 occurred_at = $3, session_date = $4, session_time = $5, short_title = $6,
		 duration_min = $7, bodyweight_kg = $8, comments = $9, exercises = $10
		 WHERE id = $1 AND owner_id = $2`,
		id, ownerID, dt.at, s.Date, s.Time, s.ShortTitle,
		s.DurationMin, s.BodyweightKG, s.Comments, dt.exercises)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (db *DB) DeleteSession(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM training_sessions WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type sessionWrite struct {
	at        any
	exercises []byte
}

func checkAndMarshal(s *models.TrainingSession) (*sessionWrite, error) {
	if len(s.Exercises) == 0 {
		return nil, models.ErrNoExercises
	}
	dt, err := s.DateTime()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(s.Exercises)
	if err != nil {
		return nil, fmt.Errorf("marshaling exercises: %w", err)
	}
	return &sessionWrite{at: dt, exercises: data}, nil
}

func scanSession(row pgx.Row) (*models.TrainingSession, error) {
	var s models.TrainingSession
	var exercises []byte
	err := row.Scan(&s.ID, &s.OwnerID, &s.Date, &s.Time, &s.ShortTitle,
		&s.DurationMin, &s.BodyweightKG, &s.Comments, &exercises)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	if err := json.Unmarshal(exercises, &s.Exercises); err != nil {
		return nil, fmt.Errorf("unmarshaling exercises: %w", err)
	}
	return &s, nil
}
