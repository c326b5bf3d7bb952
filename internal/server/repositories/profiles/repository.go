// Package profiles stores the one-to-one personal profile of a user.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *models.UserProfile) error
	// Get returns common.ErrorNotFound when the user has no profile row.
	Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	Update(ctx context.Context, p *models.UserProfile) error
	Delete(ctx context.Context, userID uuid.UUID) error
}
