// Package users declares the repository contract for live user accounts
// and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

// Names of the UNIQUE constraints on "user". A violation of either is
// reported as the matching duplicate error.
const (
	UsernameConstraint = "user_username_key"
	EmailConstraint    = "user_email_key"
)

type Repository interface {
	// Create inserts user with its caller-assigned ID. It returns
	// common.ErrDuplicateUsername or common.ErrDuplicateEmail on a
	// uniqueness conflict.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// LockByID is GetByID that also locks the row for the rest of the
	// transaction, blocking concurrent writes to the user's dependents.
	LockByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateContact(ctx context.Context, id uuid.UUID, email, phoneNumber string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
