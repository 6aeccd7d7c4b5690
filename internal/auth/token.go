package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid access token")

// Identity is what the access token proves about the caller.
type Identity struct {
	UserID string
	Email  string
}

// ParseToken extracts the caller identity from a provider-issued JWT. When a
// secret is supplied the HS256 signature is verified; otherwise the claims are
// read unverified, which matches deployments that terminate trust at the
// identity provider proxy.
func ParseToken(token, secret string) (Identity, error) {
	claims := jwt.MapClaims{}

	if secret != "" {
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid {
			return Identity{}, ErrInvalidToken
		}
	} else {
		parser := jwt.NewParser()
		if _, _, err := parser.ParseUnverified(token, claims); err != nil {
			return Identity{}, ErrInvalidToken
		}
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	return Identity{UserID: sub, Email: email}, nil
}
