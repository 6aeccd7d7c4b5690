package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-42",
		"email": "student@example.com",
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseTokenVerified(t *testing.T) {
	token := signedToken(t, "top-secret")

	identity, err := ParseToken(token, "top-secret")
	if err != nil {
		t.Fatalf("ParseToken err: %v", err)
	}
	if identity.UserID != "user-42" {
		t.Fatalf("unexpected user id: %s", identity.UserID)
	}
	if identity.Email != "student@example.com" {
		t.Fatalf("unexpected email: %s", identity.Email)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token := signedToken(t, "top-secret")

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Fatal("expected error for wrong signing secret")
	}
}

func TestParseTokenUnverified(t *testing.T) {
	token := signedToken(t, "whatever")

	identity, err := ParseToken(token, "")
	if err != nil {
		t.Fatalf("ParseToken err: %v", err)
	}
	if identity.UserID != "user-42" {
		t.Fatalf("unexpected user id: %s", identity.UserID)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-token", ""); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestParseTokenMissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x@y"})
	signed, err := token.SignedString([]byte("s"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ParseToken(signed, ""); err == nil {
		t.Fatal("expected error for token without subject")
	}
}
