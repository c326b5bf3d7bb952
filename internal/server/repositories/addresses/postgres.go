package addresses

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

func (r *PostgresRepository) Create(ctx context.Context, a *models.Address) error {
	query := `
		INSERT INTO address (user_id, street_address, city, state, zip_code, country)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		a.UserID, a.StreetAddress, a.City, a.State, a.ZipCode, a.Country); err != nil {
		return common.StoreError(err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	query := `
		SELECT user_id, street_address, city, state, zip_code, country
		FROM address
		WHERE user_id = $1
	`
	a := &models.Address{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&a.UserID, &a.StreetAddress, &a.City, &a.State, &a.ZipCode, &a.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError(err)
	}
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Address) error {
	query := `
		UPDATE address
		SET street_address = $2, city = $3, state = $4, zip_code = $5, country = $6
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		a.UserID, a.StreetAddress, a.City, a.State, a.ZipCode, a.Country)
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

// Delete removes the address row. A missing row is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	query := `
		DELETE FROM address
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return common.StoreError(err)
	}
	return nil
}
