// Package models defines server-side data models persisted in the database.
package models

import "github.com/google/uuid"

// User is a live account. PasswordHash holds a bcrypt hash, never the
// plaintext, and is excluded from JSON.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PhoneNumber  string    `db:"phone_number" json:"phone_number"`
	PasswordHash string    `db:"password_hash" json:"-"`
}
