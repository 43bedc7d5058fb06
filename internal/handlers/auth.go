package handlers

import (
	"net/http"

	"capoff/internal/apperr"
	"capoff/internal/identity"
	"capoff/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AuthHandler exchanges identity-provider tokens for cookie sessions. The
// provider itself (sign-up, passwords, OAuth) lives entirely outside this
// service.
type AuthHandler struct {
	identitySecret string
}

func NewAuthHandler(identitySecret string) *AuthHandler {
	return &AuthHandler{identitySecret: identitySecret}
}

type createSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		JSONError(c, err)
		return
	}

	ident, err := identity.FromToken(req.Token, h.identitySecret)
	if err != nil {
		JSONError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionIdentityID, ident.ID)
	session.Set(middleware.SessionIdentityEmail, ident.Email)
	session.Set(middleware.SessionIdentityName, ident.Username)
	if err := session.Save(); err != nil {
		JSONError(c, apperr.Wrap(apperr.KindInternal, "save session", err))
		return
	}

	c.JSON(http.StatusCreated, ident)
}

func (h *AuthHandler) CurrentSession(c *gin.Context) {
	ident := middleware.CurrentIdentity(c)
	if ident == nil {
		JSONError(c, apperr.Unauthorized("not signed in"))
		return
	}
	c.JSON(http.StatusOK, ident)
}

func (h *AuthHandler) DeleteSession(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		JSONError(c, apperr.Wrap(apperr.KindInternal, "clear session", err))
		return
	}
	c.Status(http.StatusNoContent)
}
