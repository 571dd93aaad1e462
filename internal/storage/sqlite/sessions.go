package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

const sessionColumns = `id, owner_id, session_date, session_time, short_title,
	duration_min, bodyweight_kg, comments, exercises`

func (d *DB) ListSessions(ctx context.Context, ownerID uuid.UUID, f storage.Filter) ([]models.TrainingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM training_sessions WHERE owner_id = ?`
	args := []any{ownerID.String()}
	if !f.Start.IsZero() {
		query += ` AND occurred_at >= ?`
		args = append(args, f.Start.UTC().Format(time.RFC3339))
	}
	if !f.End.IsZero() {
		query += ` AND occurred_at < ?`
		args = append(args, f.End.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY occurred_at DESC, id`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingSession
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (d *DB) GetSession(ctx context.Context, ownerID, id uuid.UUID) (*models.TrainingSession, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM training_sessions WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	s, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return s, err
}

func (d *DB) CreateSession(ctx context.Context, ownerID uuid.UUID, s *models.TrainingSession) (uuid.UUID, error) {
	occurredAt, exercises, err := checkAndMarshal(s)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO training_sessions
		 (id, owner_id, occurred_at, session_date, session_time, short_title,
		  duration_min, bodyweight_kg, comments, exercises)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		id.String(), ownerID.String(), occurredAt, s.Date, s.Time, s.ShortTitle,
		s.DurationMin, s.BodyweightKG, s.Comments, exercises)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

func (d *DB) UpdateSession(ctx context.Context, ownerID, id uuid.UUID, s *models.TrainingSession) error {
	occurredAt, exercises, err := checkAndMarshal(s)
	if err != nil {
		return err
	}

	res, err := d.db.ExecContext(ctx,
		`UPDATE training_sessions SET
		 occurred_at = ?, session_date = ?, session_time = ?, short_title = ?,
		 duration_min = ?, bodyweight_kg = ?, comments = ?, exercises = ?
		 WHERE id = ? AND owner_id = ?`,
		occurredAt, s.Date, s.Time, s.ShortTitle,
		s.DurationMin, s.BodyweightKG, s.Comments, exercises,
		id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	return requireAffected(res)
}

func (d *DB) DeleteSession(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM training_sessions WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func checkAndMarshal(s *models.TrainingSession) (string, string, error) {
	if len(s.Exercises) == 0 {
		return "", "", models.ErrNoExercises
	}
	dt, err := s.DateTime()
	if err != nil {
		return "", "", err
	}
	data, err := json.Marshal(s.Exercises)
	if err != nil {
		return "", "", fmt.Errorf("marshaling exercises: %w", err)
	}
	return dt.UTC().Format(time.RFC3339), string(data), nil
}

func scanSession(scan func(dest ...any) error) (*models.TrainingSession, error) {
	var s models.TrainingSession
	var id, ownerID, exercises string
	err := scan(&id, &ownerID, &s.Date, &s.Time, &s.ShortTitle,
		&s.DurationMin, &s.BodyweightKG, &s.Comments, &exercises)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing session id: %w", err)
	}
	if s.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, fmt.Errorf("parsing owner id: %w", err)
	}
	if err := json.Unmarshal([]byte(exercises), &s.Exercises); err != nil {
		return nil, fmt.Errorf("unmarshaling exercises: %w", err)
	}
	return &s, nil
}
