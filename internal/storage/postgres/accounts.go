package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func (db *DB) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return db.scanAccount(db.Pool.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, password_hash
		 FROM accounts WHERE id = $1`, id))
}

func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return db.scanAccount(db.Pool.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, password_hash
		 FROM accounts WHERE lower(email) = lower($1)`, email))
}

func (db *DB) CreateAccount(ctx context.Context, a *models.Account) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO accounts (id, email, first_name, last_name, password_hash)
		 VALUES ($1,$2,$3,$4,$5)`,
		id, a.Email, a.FirstName, a.LastName, a.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, models.ErrEmailTaken
		}
		return uuid.Nil, fmt.Errorf("inserting account: %w", err)
	}
	return id, nil
}

func (db *DB) scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Email, &a.FirstName, &a.LastName, &a.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	return &a, nil
}
