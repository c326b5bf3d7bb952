package profiles

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.UserProfile) error {
	query := `
		INSERT INTO user_profile (user_id, first_name, last_name, date_of_birth, bio, hobbies)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		p.UserID, p.FirstName, p.LastName, p.DateOfBirth, p.Bio, p.Hobbies); err != nil {
		return common.StoreError(err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	query := `
		SELECT user_id, first_name, last_name, date_of_birth, bio, hobbies
		FROM user_profile
		WHERE user_id = $1
	`
	p := &models.UserProfile{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&p.UserID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Bio, &p.Hobbies)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError(err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.UserProfile) error {
	query := `
		UPDATE user_profile
		SET first_name = $2, last_name = $3, date_of_birth = $4, bio = $5, hobbies = $6
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		p.UserID, p.FirstName, p.LastName, p.DateOfBirth, p.Bio, p.Hobbies)
	if err != nil {
		return common.StoreError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.StoreError(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	query := `
		DELETE FROM user_profile
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return common.StoreError(err)
	}
	return nil
}
