package jwt

import (
	"testing"

	jwtstd "github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret")

	payload := map[string]any{
		"user_id":  "u-1",
		"username": "Alice",
		"role":     "manager",
	}
	signed, err := tm.GenerateAccessToken("jti-1", payload)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	token, err := tm.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	claims, ok := token.Claims.(jwtstd.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	if !IsAccessToken(claims) {
		t.Error("IsAccessToken = false for access token")
	}
	if got := GetTokenID(claims); got != "jti-1" {
		t.Errorf("token id = %q", got)
	}
	if got := GetPayloadString(claims, "user_id"); got != "u-1" {
		t.Errorf("user_id = %q", got)
	}
	if got := GetPayloadString(claims, "missing"); got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}
}

func TestRefreshTokenIsNotAccess(t *testing.T) {
	tm := NewTokenManager("test-secret")

	signed, err := tm.GenerateRefreshToken("jti-2", map[string]any{"user_id": "u-1"})
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	token, err := tm.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if IsAccessToken(token.Claims.(jwtstd.MapClaims)) {
		t.Error("refresh token classified as access token")
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	signed, err := NewTokenManager("secret-a").GenerateAccessToken("jti-3", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("secret-b").ValidateToken(signed); err == nil {
		t.Error("expected validation failure with wrong key")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := NewTokenManager("secret").ValidateToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
