package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO "user" (id, username, email, phone_number, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PhoneNumber, user.PasswordHash)
	if err != nil {
		return writeError(err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query :=
		`SELECT id, username, email, phone_number, password_hash FROM "user"
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

// LockByID reads the user and holds a row lock until the transaction ends.
// Inserts into tables referencing the user wait for the lock.
func (r *PostgresRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query :=
		`SELECT id, username, email, phone_number, password_hash FROM "user"
		 WHERE id = $1
		 FOR UPDATE
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, email, phone_number, password_hash FROM "user"
		 WHERE username = $1
		 `
	return r.getOne(ctx, query, username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, username, email, phone_number, password_hash FROM "user"
		 WHERE email = $1
		 `
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.PhoneNumber, &user.PasswordHash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError(err)
	}

	return user, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	query :=
		`UPDATE "user" SET password_hash = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return common.StoreError(err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) UpdateContact(ctx context.Context, id uuid.UUID, email, phoneNumber string) error {
	query :=
		`UPDATE "user" SET email = $2, phone_number = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, email, phoneNumber)
	if err != nil {
		return writeError(err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query :=
		`DELETE FROM "user"
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return common.StoreError(err)
	}
	return expectOneRow(res)
}

// writeError turns a unique violation into the duplicate error for the
// violated constraint and everything else into a store error.
func writeError(err error) error {
	if constraint, ok := dbx.UniqueViolation(err); ok {
		switch constraint {
		case UsernameConstraint:
			return common.ErrDuplicateUsername
		case EmailConstraint:
			return common.ErrDuplicateEmail
		default:
			return fmt.Errorf("%w: %s", common.ErrConflict, constraint)
		}
	}
	return common.StoreError(err)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return common.StoreError(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
