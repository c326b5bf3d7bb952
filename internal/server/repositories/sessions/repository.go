// Package sessions declares the server-side session store contract and its
// PostgreSQL and Redis implementations.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/server/models"
)

// Repository maps opaque session tokens to user ids.
type Repository interface {
	// Set stores s. The entry lives until s.ExpiresAt; backends with native
	// expiry use ExpiresAt-CreatedAt as the TTL.
	Set(ctx context.Context, s *models.Session) error

	// Get returns the session for token or common.ErrorNotFound.
	// Callers still compare ExpiresAt against their own clock.
	Get(ctx context.Context, token string) (*models.Session, error)

	// Clear removes token. Clearing an unknown token is not an error.
	Clear(ctx context.Context, token string) error

	// Purge deletes sessions that expired before now and reports how many.
	Purge(ctx context.Context, now time.Time) (int64, error)
}
