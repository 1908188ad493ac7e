// Package httpx holds the JSON envelope and request parsing helpers shared
// by the resource handlers.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/buildboard/buildboard-backend/internal/apperr"
)

// OK writes {"ok": true, key: value}.
func OK(c *gin.Context, status int, key string, value any) {
	c.JSON(status, gin.H{"ok": true, key: value})
}

// Done writes {"ok": true} for operations without a payload.
func Done(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Fail maps err onto its status code and writes {"ok": false, "error": msg}.
// Internal errors are logged with the request-scoped logger.
func Fail(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": apperr.Message(err)})
}

// FailValidation writes a 400 with msg.
func FailValidation(c *gin.Context, msg string) {
	Fail(c, apperr.Validation(msg))
}
