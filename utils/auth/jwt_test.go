package auth

import (
	"errors"
	"testing"
	"time"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{Secret: "test-secret", Issuer: "finchat-test"})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()

	token, err := m.GenerateAccessToken("alice", 30*time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("expected access token type, got %q", claims.TokenType)
	}
	if claims.Issuer != "finchat-test" {
		t.Fatalf("expected issuer finchat-test, got %q", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected a jti claim")
	}
}

func TestResetTokenIsNotAnAccessToken(t *testing.T) {
	m := testManager()

	token, err := m.GenerateResetToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reset token accepted as access token: %v", err)
	}
	claims, err := m.ValidateResetToken(token)
	if err != nil {
		t.Fatalf("validate reset: %v", err)
	}
	if claims.TokenType != TokenTypePasswordReset {
		t.Fatalf("expected password_reset type, got %q", claims.TokenType)
	}
}

func TestAccessTokenIsNotAResetToken(t *testing.T) {
	m := testManager()

	token, err := m.GenerateAccessToken("alice", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateResetToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as reset token: %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := testManager()

	token, err := m.GenerateAccessToken("alice", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := testManager()
	other := NewJWTManager(JWTConfig{Secret: "different-secret", Issuer: "finchat-test"})

	token, err := m.GenerateAccessToken("alice", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	m := testManager()

	if _, err := m.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if _, err := m.ValidateToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error for empty string, got %v", err)
	}
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	m := testManager()

	a, _ := m.GenerateAccessToken("alice", time.Minute)
	b, _ := m.GenerateAccessToken("alice", time.Minute)

	ca, err := m.ValidateToken(a)
	if err != nil {
		t.Fatalf("validate a: %v", err)
	}
	cb, err := m.ValidateToken(b)
	if err != nil {
		t.Fatalf("validate b: %v", err)
	}
	if ca.ID == cb.ID {
		t.Fatalf("expected distinct jti claims")
	}
}
