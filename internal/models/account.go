package models

import "github.com/google/uuid"

// Account is a registered user identified by email. Only the bcrypt hash of
// the password is ever stored.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
}
