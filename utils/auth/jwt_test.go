package auth

import (
	"testing"
	"time"
)

func testManager(ttl time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-0123456789",
		Expiry:        ttl,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "concours-api-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager(time.Hour)

	token, err := m.GenerateAccessToken(42, "admin", "ADMIN")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if claims.UserID != 42 || claims.Username != "admin" || claims.Role != "ADMIN" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Errorf("expected access token type, got %s", claims.TokenType)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := testManager(-time.Minute)

	token, err := m.GenerateAccessToken(1, "admin", "ADMIN")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := m.ValidateToken(token); err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestRefreshAccessTokenRequiresRefreshType(t *testing.T) {
	m := testManager(time.Hour)

	accessToken, err := m.GenerateAccessToken(1, "admin", "ADMIN")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// An access token must not be usable as a refresh token
	if _, err := m.RefreshAccessToken(accessToken); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}

	refreshToken, err := m.GenerateRefreshToken(1, "admin", "ADMIN")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	newAccess, err := m.RefreshAccessToken(refreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	claims, err := m.ValidateToken(newAccess)
	if err != nil {
		t.Fatalf("validate refreshed token failed: %v", err)
	}
	if claims.TokenType != "access" {
		t.Errorf("expected refreshed token to be an access token, got %s", claims.TokenType)
	}
}
