package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/passvault/passvault-server/internal/model"
)

// Claims represents JWT claims binding the session to an account.
type Claims struct {
	jwt.RegisteredClaims
	AccountID uuid.UUID `json:"account_id"`
}

var _ model.TokenManager = (*JWT)(nil)

// JWT implements TokenManager backed by symmetric HMAC. Tokens are
// self-contained and non-revocable: verification is a signature and expiry
// check, with no server-side state.
type JWT struct {
	secretKey string
	validity  time.Duration
	now       func() time.Time
}

// NewJWT creates a new JWT token manager with the provided secret key and
// validity window.
func NewJWT(secretKey string, validity time.Duration) *JWT {
	return &JWT{
		secretKey: secretKey,
		validity:  validity,
		now:       time.Now,
	}
}

// Issue creates a signed session token embedding the account ID, valid from
// now for the configured window.
func (j *JWT) Issue(accountID uuid.UUID) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.validity)),
		},
		AccountID: accountID,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Verify validates the signature and expiry and extracts the account ID. Any
// unusable token maps to model.ErrInvalidOrExpiredToken.
func (j *JWT) Verify(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(func() time.Time { return j.now() }))
	if err != nil {
		return uuid.Nil, model.ErrInvalidOrExpiredToken
	}
	if !token.Valid || claims.AccountID == uuid.Nil {
		return uuid.Nil, model.ErrInvalidOrExpiredToken
	}

	return claims.AccountID, nil
}
