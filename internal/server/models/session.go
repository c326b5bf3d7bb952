package models

import (
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque token to a user id until ExpiresAt.
type Session struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}
