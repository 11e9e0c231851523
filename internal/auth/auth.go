// Package auth verifies the bearer tokens carried by matcher and embedding
// requests. Tokens are HS256 JWTs whose subject (or user_id claim) identifies
// the requesting user.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/example/tour-matching/internal/models"
)

type Verifier struct {
	Secret string
}

func NewVerifier(secret string) *Verifier { return &Verifier{Secret: secret} }

// UserIDFromRequest extracts and verifies the Authorization bearer token and
// returns the user id it identifies. All failures wrap
// models.ErrUnauthenticated.
func (v *Verifier) UserIDFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", models.ErrUnauthenticated
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header || raw == "" {
		return "", fmt.Errorf("%w: malformed authorization header", models.ErrUnauthenticated)
	}
	return v.UserIDFromToken(raw)
}

// UserIDFromToken verifies a raw token string.
func (v *Verifier) UserIDFromToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(v.Secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", models.ErrUnauthenticated
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		return uid, nil
	}
	return "", fmt.Errorf("%w: token has no subject", models.ErrUnauthenticated)
}
