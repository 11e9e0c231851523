package auth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v4"

	"github.com/example/tour-matching/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestUserIDFromTokenSubClaim(t *testing.T) {
	v := NewVerifier(testSecret)
	raw := signToken(t, jwt.MapClaims{"sub": "user-1"}, testSecret)
	got, err := v.UserIDFromToken(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "user-1" {
		t.Fatalf("got %q", got)
	}
}

func TestUserIDFromTokenUserIDClaim(t *testing.T) {
	v := NewVerifier(testSecret)
	raw := signToken(t, jwt.MapClaims{"user_id": "user-2"}, testSecret)
	got, err := v.UserIDFromToken(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "user-2" {
		t.Fatalf("got %q", got)
	}
}

func TestUserIDFromTokenWrongSecret(t *testing.T) {
	v := NewVerifier(testSecret)
	raw := signToken(t, jwt.MapClaims{"sub": "user-1"}, "other-secret")
	if _, err := v.UserIDFromToken(raw); !errors.Is(err, models.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestUserIDFromTokenNoSubject(t *testing.T) {
	v := NewVerifier(testSecret)
	raw := signToken(t, jwt.MapClaims{"role": "tourist"}, testSecret)
	if _, err := v.UserIDFromToken(raw); !errors.Is(err, models.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestUserIDFromRequestHeaderShapes(t *testing.T) {
	v := NewVerifier(testSecret)
	raw := signToken(t, jwt.MapClaims{"sub": "user-1"}, testSecret)

	cases := []struct {
		name   string
		header string
		wantOK bool
	}{
		{"valid bearer", "Bearer " + raw, true},
		{"missing header", "", false},
		{"no bearer prefix", raw, false},
		{"empty bearer", "Bearer ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodPost, "/functions/find-matches", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			_, err := v.UserIDFromRequest(r)
			if tc.wantOK && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.wantOK && !errors.Is(err, models.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}
