package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/httpapi"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) (*Env, *bytes.Buffer, httpapi.Services) {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = config.DSNMemory
	c.SessionBackend = config.SessionBackendMemory
	c.BcryptCost = 4

	out := &bytes.Buffer{}
	env := &Env{Config: c, Log: logging.Discard(), Out: out}
	require.NoError(t, env.open(context.Background()))
	t.Cleanup(func() { _ = env.Close() })
	return env, out, env.services
}

func registerBob(t *testing.T, svc httpapi.Services) *models.User {
	t.Helper()
	u, err := svc.Credentials.CreateUser(context.Background(), services.Registration{
		Username:        "bob",
		Email:           "bob@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
		FirstName:       "Bob",
		LastName:        "Jones",
		DateOfBirth:     "15/06/1985",
		PhoneNumber:     "555-0101",
	})
	require.NoError(t, err)
	return u
}

func stubPasswords(t *testing.T, entries ...string) {
	t.Helper()
	orig := readPassword
	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(entries) {
			return nil, errors.New("no more input")
		}
		pw := []byte(entries[i])
		i++
		return pw, nil
	}
	t.Cleanup(func() { readPassword = orig })
}

func run(env *Env, args ...string) error {
	cmd := NewRootCommand(env)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestMigrate_MemoryIsNoop(t *testing.T) {
	env, out, _ := newTestEnv(t)
	require.NoError(t, run(env, "migrate"))
	assert.Contains(t, out.String(), "migrations applied")
}

func TestSetPassword(t *testing.T) {
	env, out, svc := newTestEnv(t)
	registerBob(t, svc)
	stubPasswords(t, "N3wSecret!", "N3wSecret!")

	require.NoError(t, run(env, "set-password", "bob"))
	assert.Contains(t, out.String(), "password updated for bob")

	_, err := svc.Credentials.VerifyCredentials(context.Background(), "bob", "N3wSecret!")
	assert.NoError(t, err)
}

func TestSetPassword_Mismatch(t *testing.T) {
	env, _, svc := newTestEnv(t)
	registerBob(t, svc)
	stubPasswords(t, "N3wSecret!", "Other0ne!")

	err := run(env, "set-password", "bob")
	assert.ErrorIs(t, err, errPasswordMismatch)
}

func TestSetPassword_Weak(t *testing.T) {
	env, _, svc := newTestEnv(t)
	registerBob(t, svc)
	stubPasswords(t, "weak", "weak")

	err := run(env, "set-password", "bob")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSetPassword_UnknownUser(t *testing.T) {
	env, _, _ := newTestEnv(t)
	err := run(env, "set-password", "nobody")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestArchiveAndShow(t *testing.T) {
	env, out, svc := newTestEnv(t)
	u := registerBob(t, svc)

	require.NoError(t, run(env, "archive", u.ID.String()))
	assert.Contains(t, out.String(), "archived bob at ")

	out.Reset()
	require.NoError(t, run(env, "show-archived", u.ID.String()))

	var rec models.UserRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, u.ID, rec.User.ID)
	assert.Equal(t, "bob", rec.User.Username)
	assert.False(t, rec.ArchivedAt.IsZero())
}

func TestArchive_BadID(t *testing.T) {
	env, _, _ := newTestEnv(t)
	err := run(env, "archive", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid user id")
}

func TestArchive_Unknown(t *testing.T) {
	env, _, _ := newTestEnv(t)
	err := run(env, "archive", uuid.NewString())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPurgeSessions(t *testing.T) {
	env, out, _ := newTestEnv(t)
	require.NoError(t, run(env, "purge-sessions"))
	assert.Contains(t, out.String(), "0 expired sessions removed")
}
