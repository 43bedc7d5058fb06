package middleware

import (
	"net/http"
	"strings"

	"capoff/internal/identity"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const IdentityKey = "identity"

// Session field names written by the auth handler.
const (
	SessionIdentityID    = "identity_id"
	SessionIdentityEmail = "identity_email"
	SessionIdentityName  = "identity_name"
)

// LoadIdentity resolves the caller's identity and sets it on the context.
// The cookie session (populated at sign-in) wins; a Bearer token from the
// identity provider is accepted as a fallback so API clients can skip the
// session round trip.
func LoadIdentity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if id, ok := session.Get(SessionIdentityID).(string); ok && id != "" {
			email, _ := session.Get(SessionIdentityEmail).(string)
			name, _ := session.Get(SessionIdentityName).(string)
			c.Set(IdentityKey, &identity.Identity{ID: id, Email: email, Username: name})
			c.Next()
			return
		}

		if auth := c.GetHeader("Authorization"); auth != "" {
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				if ident, err := identity.FromToken(parts[1], secret); err == nil {
					c.Set(IdentityKey, ident)
				}
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests that LoadIdentity could not attach an
// identity to.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "you must be logged in",
				"kind":  "unauthorized",
			})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the caller's identity or nil for anonymous
// requests.
func CurrentIdentity(c *gin.Context) *identity.Identity {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil
	}
	ident, _ := v.(*identity.Identity)
	return ident
}
