package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	secret = []byte("super-secret")
	userID = uuid.MustParse("6f1c1b1e-0000-4000-8000-000000000001")
	issued = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
)

const validity = 2 * time.Hour

func issue(t *testing.T) string {
	t.Helper()
	tok, err := GenerateResetToken(userID, secret, issued, validity)
	require.NoError(t, err)
	return tok
}

func TestRoundTrip_WithinValidity(t *testing.T) {
	t.Parallel()
	tok := issue(t)

	for _, after := range []time.Duration{0, time.Minute, validity - time.Second} {
		got, err := ValidateResetToken(tok, secret, issued.Add(after))
		require.NoError(t, err, "after %s", after)
		assert.Equal(t, userID, got)
	}
}

func TestExpiredTwoHoursAndOneSecondLater(t *testing.T) {
	t.Parallel()
	tok := issue(t)

	got, err := ValidateResetToken(tok, secret, issued.Add(validity+time.Second))
	assert.ErrorIs(t, err, common.ErrTokenExpired)
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredToken)
	assert.NotErrorIs(t, err, common.ErrInvalidSignature)
	assert.Equal(t, uuid.Nil, got)
}

func TestFlippingAnyByteFails(t *testing.T) {
	t.Parallel()
	tok := issue(t)
	now := issued.Add(time.Minute)

	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		b[i] ^= 0x01

		got, err := ValidateResetToken(string(b), secret, now)
		if !errors.Is(err, common.ErrInvalidSignature) {
			t.Fatalf("byte %d (%q): want ErrInvalidSignature, got %v", i, tok[i], err)
		}
		if got != uuid.Nil {
			t.Fatalf("byte %d: tampered token returned user id %s", i, got)
		}
	}
}

func TestTamperedExpiredTokenReportsSignature(t *testing.T) {
	t.Parallel()
	tok := issue(t)
	parts := strings.Split(tok, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))

	_, err := ValidateResetToken(strings.Join(parts, "."), secret, issued.Add(3*time.Hour))
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestWrongSecret(t *testing.T) {
	t.Parallel()
	tok := issue(t)

	_, err := ValidateResetToken(tok, []byte("rotated-secret"), issued)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestMalformed(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := ValidateResetToken(s, secret, issued)
		assert.ErrorIs(t, err, common.ErrInvalidSignature, "token %q", s)
	}
}

func TestWrongAlgorithm(t *testing.T) {
	t.Parallel()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(issued.Add(validity))},
		UserID:           userID.String(),
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)
	_, err = ValidateResetToken(hs512, secret, issued)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateResetToken(none, secret, issued)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestMissingOrBadClaims(t *testing.T) {
	t.Parallel()

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: userID.String()}).SignedString(secret)
	require.NoError(t, err)
	_, err = ValidateResetToken(noExp, secret, issued)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)

	badID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(issued.Add(validity))},
		UserID:           "not-a-uuid",
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = ValidateResetToken(badID, secret, issued)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestPayloadShape(t *testing.T) {
	t.Parallel()
	tok := issue(t)

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), claims["user_id"])
	assert.EqualValues(t, issued.Add(validity).Unix(), claims["exp"])
	assert.Len(t, claims, 2)
}
