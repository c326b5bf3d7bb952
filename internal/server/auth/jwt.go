// Package auth issues and validates password reset tokens: HS256 JWTs
// carrying {user_id, exp}. Nothing is stored server-side; rotating the
// secret invalidates every outstanding token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the reset token payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// GenerateResetToken signs {user_id, exp = now + validity} with secretKey.
func GenerateResetToken(userID uuid.UUID, secretKey []byte, now time.Time, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID.String(),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateResetToken verifies tokenString and returns the user id it carries.
//
// now is the only clock reading used: the parser compares exp against it.
// An expired token yields common.ErrTokenExpired; any other failure
// (tampering, different secret, malformed input, algorithm other than HS256,
// missing or bad claims) yields common.ErrInvalidSignature. The parser's
// error is kept in the message for logs.
func ValidateResetToken(tokenString string, secretKey []byte, now time.Time) (uuid.UUID, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
		}
		return uuid.Nil, fmt.Errorf("%w: %v", common.ErrInvalidSignature, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad user_id claim: %v", common.ErrInvalidSignature, err)
	}

	return userID, nil
}
