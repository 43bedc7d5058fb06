package handlers

import (
	"errors"
	"net/http"

	"capoff/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// JSONError renders a typed core failure. Classification goes through the
// error kind, never the message text.
func JSONError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	message := "something went wrong"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.JSON(statusFor(kind), gin.H{"error": message, "kind": string(kind)})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindMissingFields, apperr.KindInvalidContent:
		return http.StatusBadRequest
	case apperr.KindMissingEmail:
		return http.StatusUnprocessableEntity
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func bindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperr.Wrap(apperr.KindMissingFields, "invalid request body", err)
	}
	if err := validate.Struct(req); err != nil {
		return apperr.Wrap(apperr.KindMissingFields, "missing or invalid fields", err)
	}
	return nil
}
