package identity

import (
	"fmt"

	"capoff/internal/apperr"

	jwt "github.com/dgrijalva/jwt-go"
)

// Identity is what the hosted identity provider asserts about the caller.
// ID is the provider's subject identifier and is what the local users table
// keys on.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// FromToken verifies a provider-issued session token (HS256, shared secret)
// and extracts the standard claims. The provider puts the subject in "sub",
// the primary email in "email" and a display name in "name"; email and name
// may be absent, which downstream code handles (MissingEmail, "Anonymous").
func FromToken(tokenString, secret string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid session token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthorized("invalid session token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, apperr.Unauthorized("session token has no subject")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return &Identity{ID: sub, Email: email, Username: name}, nil
}
