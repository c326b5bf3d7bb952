// Package addresses stores the one-to-one postal address of a user.
package addresses

import (
	"context"

	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *models.Address) error
	// Get returns common.ErrorNotFound when the user has no address row.
	Get(ctx context.Context, userID uuid.UUID) (*models.Address, error)
	Update(ctx context.Context, a *models.Address) error
	Delete(ctx context.Context, userID uuid.UUID) error
}
