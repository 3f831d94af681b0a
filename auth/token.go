package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todo-auth-api/api"
)

var (
	ErrMissingToken = errors.New("token is missing")
	ErrInvalidToken = errors.New("token is invalid")
	ErrUnauthorized = errors.New("could not verify")
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 60 * time.Minute

// Tokens issues and verifies HS256 tokens carrying an account's public id.
type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for publicID that expires after the configured TTL.
func (t *Tokens) Issue(publicID string) (string, error) {
	now := t.now().UTC()
	claims := &api.Claims{
		PublicID: publicID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// public id it carries. Every failure is reported as ErrInvalidToken.
func (t *Tokens) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}

	claims := &api.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.PublicID == "" {
		return "", ErrInvalidToken
	}
	return claims.PublicID, nil
}
