package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	token := signed(t, jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(exp)})

	got, ok := TokenExpiry(token)
	if !ok {
		t.Fatalf("expected expiry for an expired token")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
	if sub := TokenSubject(token); sub != "u1" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestTokenExpiry_NoClaim(t *testing.T) {
	if _, ok := TokenExpiry(signed(t, jwt.MapClaims{"sub": "u1"})); ok {
		t.Fatalf("expected no expiry")
	}
}

func TestTokenExpiry_Opaque(t *testing.T) {
	for _, tok := range []string{"", "opaque-token", "a.b.c"} {
		if _, ok := TokenExpiry(tok); ok {
			t.Fatalf("expected no expiry for %q", tok)
		}
	}
	if sub := TokenSubject("opaque-token"); sub != "" {
		t.Fatalf("subject = %q", sub)
	}
}
