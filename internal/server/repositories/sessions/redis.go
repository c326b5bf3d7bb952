package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type redisSession struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisRepository keeps sessions as JSON values under "session:<token>"
// and lets Redis expire them.
type RedisRepository struct {
	client redis.UniversalClient
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Set(ctx context.Context, s *models.Session) error {
	ttl := s.ExpiresAt.Sub(s.CreatedAt)
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", ttl)
	}

	b, err := json.Marshal(redisSession{UserID: s.UserID, ExpiresAt: s.ExpiresAt, CreatedAt: s.CreatedAt})
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, keyPrefix+s.Token, b, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %w", common.ErrStore, err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	b, err := r.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: redis get: %w", common.ErrStore, err)
	}

	var v redisSession
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: corrupt session value: %w", common.ErrStore, err)
	}

	return &models.Session{Token: token, UserID: v.UserID, ExpiresAt: v.ExpiresAt, CreatedAt: v.CreatedAt}, nil
}

func (r *RedisRepository) Clear(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %w", common.ErrStore, err)
	}
	return nil
}

// Purge is a no-op: Redis expires keys on its own.
func (r *RedisRepository) Purge(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
