package identity

import (
	"testing"

	"capoff/internal/apperr"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestFromTokenRoundTrip(t *testing.T) {
	token := signToken(t, "s3cret", jwt.MapClaims{
		"sub":   "user_a",
		"email": "a@example.com",
		"name":  "Ada",
	})

	ident, err := FromToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "user_a", ident.ID)
	assert.Equal(t, "a@example.com", ident.Email)
	assert.Equal(t, "Ada", ident.Username)
}

func TestFromTokenOptionalClaims(t *testing.T) {
	token := signToken(t, "s3cret", jwt.MapClaims{"sub": "user_a"})

	ident, err := FromToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "user_a", ident.ID)
	assert.Empty(t, ident.Email)
	assert.Empty(t, ident.Username)
}

func TestFromTokenWrongSecret(t *testing.T) {
	token := signToken(t, "s3cret", jwt.MapClaims{"sub": "user_a"})

	_, err := FromToken(token, "other-secret")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestFromTokenMissingSubject(t *testing.T) {
	token := signToken(t, "s3cret", jwt.MapClaims{"email": "a@example.com"})

	_, err := FromToken(token, "s3cret")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestFromTokenRejectsUnsignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user_a"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = FromToken(signed, "s3cret")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestFromTokenGarbage(t *testing.T) {
	_, err := FromToken("not-a-jwt", "s3cret")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}
