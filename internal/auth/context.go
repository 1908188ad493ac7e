package auth

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	CtxPrincipal = "auth_principal"
	CtxUserID    = "user_id"
)

// Principal is the authenticated caller, decoded from the access token.
type Principal struct {
	UserID    string
	Email     string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// SetPrincipal stores p on the request. RequireAuth calls it after the token
// checks out.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(CtxPrincipal, p)
	c.Set(CtxUserID, p.UserID)
}

// CurrentPrincipal returns the caller stored by RequireAuth.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// UserID returns the authenticated user's id or "".
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}
