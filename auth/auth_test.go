package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todo-auth-api/api"
)

func TestHashPassword(t *testing.T) {
	first, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if first == "password123" {
		t.Error("hash must not be the plaintext")
	}
	if first == second {
		t.Error("expected salted hashes to differ")
	}
	if !CheckPassword("password123", first) || !CheckPassword("password123", second) {
		t.Error("expected both hashes to verify")
	}
	if CheckPassword("wrong", first) {
		t.Error("expected a wrong password to fail")
	}

	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
	if _, err := HashPassword(strings.Repeat("x", 80)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
	if _, err := HashPassword(strings.Repeat("x", MaxPasswordBytes)); err != nil {
		t.Errorf("expected a 72 byte password to hash, got %v", err)
	}
}

func newTestTokens(t *testing.T, secret string) *Tokens {
	t.Helper()
	tokens, err := NewTokens(secret, time.Hour)
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	return tokens
}

func TestIssueAndVerify(t *testing.T) {
	tokens := newTestTokens(t, "test-secret")

	token, err := tokens.Issue("pub-alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(token) < 20 {
		t.Errorf("token seems too short: %s", token)
	}

	publicID, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if publicID != "pub-alice" {
		t.Errorf("expected 'pub-alice', got %q", publicID)
	}
}

func TestVerifyRejects(t *testing.T) {
	tokens := newTestTokens(t, "test-secret")

	expired := newTestTokens(t, "test-secret")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue("pub-alice")
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	foreignToken, err := newTestTokens(t, "other-secret").Issue("pub-alice")
	if err != nil {
		t.Fatalf("issue foreign: %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &api.Claims{
		PublicID: "pub-alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign unsigned token: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &api.Claims{PublicID: "pub-alice"}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token without expiry: %v", err)
	}

	testCases := []struct {
		name     string
		token    string
		expected error
	}{
		{name: "expired", token: expiredToken, expected: ErrInvalidToken},
		{name: "wrong key", token: foreignToken, expected: ErrInvalidToken},
		{name: "alg none", token: unsigned, expected: ErrInvalidToken},
		{name: "no expiry", token: noExpiry, expected: ErrInvalidToken},
		{name: "malformed", token: "not-a-token", expected: ErrInvalidToken},
		{name: "empty", token: "", expected: ErrMissingToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tokens.Verify(tc.token)
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens("", time.Hour); err == nil {
		t.Fatal("expected an error for an empty secret")
	}

	tokens, err := NewTokens("secret", 0)
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	if tokens.ttl != DefaultTokenTTL {
		t.Errorf("expected default ttl %v, got %v", DefaultTokenTTL, tokens.ttl)
	}
}
