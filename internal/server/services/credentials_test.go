package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophaccount/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser_ThenVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.registerAlice(t)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.NotEqual(t, alicePassword, u.PasswordHash)

	got, err := env.credentials.VerifyCredentials(ctx, "alice", alicePassword)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = env.credentials.VerifyCredentials(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	addr, err := env.rm.Addresses(env.store).Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "1 Rabbit Hole", addr.StreetAddress)

	prof, err := env.rm.Profiles(env.store).Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1990, prof.DateOfBirth.Year())
	assert.Equal(t, 5, int(prof.DateOfBirth.Month()))
	assert.Equal(t, 4, prof.DateOfBirth.Day())

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.AccountOps.WithLabelValues(metrics.OpRegister, metrics.ResultOK)))
}

func TestVerifyCredentials_UnknownUserPaysForCompare(t *testing.T) {
	env := newTestEnv(t)
	env.registerAlice(t)

	before := env.hasher.compares
	_, err := env.credentials.VerifyCredentials(context.Background(), "bob", alicePassword)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, before+1, env.hasher.compares)

	_, err = env.credentials.VerifyCredentials(context.Background(), "alice", "Wr0ng!Pass")
	assert.Equal(t, common.ErrorUnauthorized, err)
}

func TestVerifyCredentials_EmptyInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.credentials.VerifyCredentials(context.Background(), "", "")
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")
}

func TestCreateUser_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerAlice(t)

	sameName := aliceRegistration()
	sameName.Email = "other@example.com"
	_, err := env.credentials.CreateUser(ctx, sameName)
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)
	_, err = env.rm.Users(env.store).GetByEmail(ctx, "other@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	sameEmail := aliceRegistration()
	sameEmail.Username = "alice2"
	_, err = env.credentials.CreateUser(ctx, sameEmail)
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	_, err = env.rm.Users(env.store).GetByUsername(ctx, "alice2")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// usernames compare case-sensitively
	upper := aliceRegistration()
	upper.Username = "Alice"
	upper.Email = "upper@example.com"
	u, err := env.credentials.CreateUser(ctx, upper)
	require.NoError(t, err)
	assert.NotEqual(t, alice.ID, u.ID)
}

func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Registration)
		field  string
	}{
		{"short username", func(r *Registration) { r.Username = "al" }, "username"},
		{"long username", func(r *Registration) { r.Username = "abcdefghijklmnopqrstu" }, "username"},
		{"bad email", func(r *Registration) { r.Email = "alice" }, "email"},
		{"weak password", func(r *Registration) { r.Password, r.ConfirmPassword = "password", "password" }, "password"},
		{"no special", func(r *Registration) { r.Password, r.ConfirmPassword = "Passw0rdX", "Passw0rdX" }, "password"},
		{"foreign char", func(r *Registration) { r.Password, r.ConfirmPassword = "Str0ng!Pass#", "Str0ng!Pass#" }, "password"},
		{"too long password", func(r *Registration) {
			r.Password = "Aa1!" + "aaaaaaaaaaaaaaaaaaaaaaaaaaa"
			r.ConfirmPassword = r.Password
		}, "password"},
		{"confirm mismatch", func(r *Registration) { r.ConfirmPassword = "Str0ng!Pasz" }, "confirm_password"},
		{"dob format", func(r *Registration) { r.DateOfBirth = "1990-05-04" }, "date_of_birth"},
		{"dob impossible", func(r *Registration) { r.DateOfBirth = "31/02/1990" }, "date_of_birth"},
		{"missing phone", func(r *Registration) { r.PhoneNumber = "" }, "phone_number"},
		{"short first name", func(r *Registration) { r.FirstName = "A" }, "first_name"},
		{"long zip", func(r *Registration) { r.ZipCode = "12345678901" }, "zip_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := aliceRegistration()
			tt.mutate(&r)

			_, err := env.credentials.CreateUser(context.Background(), r)
			require.ErrorIs(t, err, common.ErrValidation)

			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)

			_, err = env.rm.Users(env.store).GetByUsername(context.Background(), r.Username)
			assert.ErrorIs(t, err, common.ErrorNotFound)
		})
	}
}

func TestUpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerAlice(t)

	err := env.credentials.UpdatePassword(ctx, u.ID, "weak")
	assert.ErrorIs(t, err, common.ErrValidation)

	require.NoError(t, env.credentials.UpdatePassword(ctx, u.ID, "N3w!Passw0rd"))

	_, err = env.credentials.VerifyCredentials(ctx, "alice", alicePassword)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = env.credentials.VerifyCredentials(ctx, "alice", "N3w!Passw0rd")
	assert.NoError(t, err)

	err = env.credentials.UpdatePassword(ctx, uuid.New(), "N3w!Passw0rd")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetUserAndFindByEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.registerAlice(t)

	got, err := env.credentials.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = env.credentials.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = env.credentials.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

// --- transaction boundaries against PostgreSQL repositories ---

func newSQLMockCredentials(t *testing.T) (*CredentialService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc, err := NewCredentialService(dbx.NewSQLDB(db), repomanager.NewPostgresRepositoryManager(),
		NewBcryptHasher(bcrypt.MinCost), logging.Discard(), metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	return svc, mock
}

func TestCreateUser_UniqueViolationRollsBack(t *testing.T) {
	svc, mock := newSQLMockCredentials(t)

	// both pre-checks pass, then a concurrent registration wins the race
	mock.ExpectQuery(`FROM "user"\s+WHERE username = \$1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM "user"\s+WHERE email = \$1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "user"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: users.EmailConstraint})
	mock.ExpectRollback()

	_, err := svc.CreateUser(context.Background(), aliceRegistration())
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_ProfileInsertFailsRollsBack(t *testing.T) {
	svc, mock := newSQLMockCredentials(t)

	mock.ExpectQuery(`FROM "user"\s+WHERE username = \$1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM "user"\s+WHERE email = \$1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "user"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO address`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_profile`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.CreateUser(context.Background(), aliceRegistration())
	assert.ErrorIs(t, err, common.ErrStore)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_CommitFailure(t *testing.T) {
	svc, mock := newSQLMockCredentials(t)

	mock.ExpectQuery(`FROM "user"\s+WHERE username = \$1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM "user"\s+WHERE email = \$1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "user"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO address`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_profile`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	_, err := svc.CreateUser(context.Background(), aliceRegistration())
	assert.ErrorIs(t, err, common.ErrStore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_PrecheckStoreError(t *testing.T) {
	svc, mock := newSQLMockCredentials(t)

	mock.ExpectQuery(`FROM "user"\s+WHERE username = \$1`).WillReturnError(errors.New("db down"))

	_, err := svc.CreateUser(context.Background(), aliceRegistration())
	assert.ErrorIs(t, err, common.ErrStore)
	assert.NoError(t, mock.ExpectationsWereMet())
}
