package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

func (d *DB) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return scanAccount(d.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash
		 FROM accounts WHERE id = ?`, id.String()))
}

func (d *DB) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return scanAccount(d.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash
		 FROM accounts WHERE email = ?`, email))
}

func (d *DB) CreateAccount(ctx context.Context, a *models.Account) (uuid.UUID, error) {
	id := uuid.New()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, first_name, last_name, password_hash)
		 VALUES (?,?,?,?,?)`,
		id.String(), a.Email, a.FirstName, a.LastName, a.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return uuid.Nil, models.ErrEmailTaken
		}
		return uuid.Nil, fmt.Errorf("inserting account: %w", err)
	}
	return id, nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var id string
	err := row.Scan(&id, &a.Email, &a.FirstName, &a.LastName, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing account id: %w", err)
	}
	return &a, nil
}
