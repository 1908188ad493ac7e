package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/buildboard/buildboard-backend/internal/api/httpx"
	"github.com/buildboard/buildboard-backend/internal/apperr"
)

// RequireAuth validates the access token from the Authorization header or
// the session cookie and stores the principal in the gin context.
func RequireAuth(tokens *TokenService, revoker Revoker, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c, cookieName)
		if raw == "" {
			httpx.Fail(c, apperr.New(apperr.ErrUnauthorized, "missing authorization token"))
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			httpx.Fail(c, err)
			return
		}

		ctx := c.Request.Context()
		revoked, err := revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if revoked {
			httpx.Fail(c, apperr.New(apperr.ErrUnauthorized, "token revoked"))
			return
		}

		SetPrincipal(c, Principal{
			UserID:    claims.Subject,
			Email:     claims.Email,
			Role:      claims.Role,
			TokenID:   claims.ID,
			ExpiresAt: claims.ExpiresAt.Time,
		})

		l := log.Ctx(ctx).With().Str("user_id", claims.Subject).Logger()
		c.Request = c.Request.WithContext(l.WithContext(ctx))

		c.Next()
	}
}

// extractToken prefers the Bearer header and falls back to the cookie.
func extractToken(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ActionFor maps an HTTP method onto an RBAC action.
func ActionFor(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionWrite
	}
}

// Authorize gates a route group on the caller's role. It must run after
// RequireAuth.
func (en *Enforcer) Authorize(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			httpx.Fail(c, apperr.New(apperr.ErrUnauthorized, "user not authenticated"))
			return
		}

		allowed, err := en.Allowed(p.Role, resource, ActionFor(c.Request.Method))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if !allowed {
			httpx.Fail(c, apperr.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

// RequireRole gates a single route on a minimum role.
func RequireRole(min Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			httpx.Fail(c, apperr.New(apperr.ErrUnauthorized, "user not authenticated"))
			return
		}
		if !p.Role.AtLeast(min) {
			httpx.Fail(c, apperr.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}
