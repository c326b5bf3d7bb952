package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
)

// PostgresRepository keeps sessions in the session table over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Set(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO session (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, s.Token, s.UserID, s.ExpiresAt, s.CreatedAt); err != nil {
		return common.StoreError(err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token, user_id, expires_at, created_at
		FROM session
		WHERE token = $1
	`
	s := &models.Session{}
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError(err)
	}
	return s, nil
}

func (r *PostgresRepository) Clear(ctx context.Context, token string) error {
	query := `
		DELETE FROM session
		WHERE token = $1
	`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return common.StoreError(err)
	}
	return nil
}

func (r *PostgresRepository) Purge(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM session
		WHERE expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, common.StoreError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.StoreError(err)
	}
	return n, nil
}
