package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/buildboard/buildboard-backend/internal/api/httpx"
	"github.com/buildboard/buildboard-backend/internal/apperr"
)

type Options struct {
	CookieName   string
	CookieDomain string
	CookieSecure bool
	AllowSignup  bool
}

// Handler serves the /auth endpoints.
type Handler struct {
	accounts AccountStore
	tokens   *TokenService
	revoker  Revoker
	opts     Options
}

func NewHandler(accounts AccountStore, tokens *TokenService, revoker Revoker, opts Options) *Handler {
	return &Handler{
		accounts: accounts,
		tokens:   tokens,
		revoker:  revoker,
		opts:     opts,
	}
}

// RegisterPublic attaches the unauthenticated routes.
func (h *Handler) RegisterPublic(rg gin.IRoutes) {
	rg.POST("/login", h.login)
	rg.POST("/register", h.register)
}

// RegisterPrivate attaches routes that need RequireAuth upstream.
func (h *Handler) RegisterPrivate(rg gin.IRoutes) {
	rg.POST("/logout", h.logout)
	rg.GET("/me", h.me)
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if !httpx.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	acct, err := h.accounts.AccountByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			burnCompare(req.Password)
			httpx.Fail(c, ErrMismatchedPassword)
			return
		}
		httpx.Fail(c, err)
		return
	}

	if err := ComparePassword(req.Password, acct.PasswordHash); err != nil {
		httpx.Fail(c, err)
		return
	}
	if !acct.Active {
		httpx.Fail(c, apperr.New(apperr.ErrUnauthorized, "account is disabled"))
		return
	}

	issued, err := h.tokens.Issue(Identity{UserID: acct.ID, Email: acct.Email, Role: acct.Role})
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	if err := h.accounts.RecordLogin(ctx, acct.ID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", acct.ID).Msg("failed to record login")
	}

	h.setCookie(c, issued.Token, int(time.Until(issued.ExpiresAt).Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"token":      issued.Token,
		"expires_at": issued.ExpiresAt,
		"user":       acct,
	})
}

type registerReq struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

func (h *Handler) register(c *gin.Context) {
	if !h.opts.AllowSignup {
		httpx.Fail(c, apperr.Forbidden("sign-up is disabled"))
		return
	}

	var req registerReq
	if !httpx.BindJSON(c, &req) {
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	acct, err := h.accounts.CreateAccount(c.Request.Context(), NewAccount{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         RoleMember,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, http.StatusCreated, "user", acct)
}

func (h *Handler) logout(c *gin.Context) {
	p, ok := CurrentPrincipal(c)
	if !ok {
		httpx.Fail(c, apperr.New(apperr.ErrUnauthorized, "user not authenticated"))
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), p.TokenID, p.ExpiresAt); err != nil {
		httpx.Fail(c, err)
		return
	}

	h.setCookie(c, "", -1)
	httpx.Done(c)
}

func (h *Handler) me(c *gin.Context) {
	p, ok := CurrentPrincipal(c)
	if !ok {
		httpx.Fail(c, apperr.New(apperr.ErrUnauthorized, "user not authenticated"))
		return
	}

	acct, err := h.accounts.AccountByID(c.Request.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			httpx.Fail(c, apperr.New(apperr.ErrUnauthorized, "user no longer exists"))
			return
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, http.StatusOK, "user", acct)
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	if h.opts.CookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, value, maxAge, "/", h.opts.CookieDomain, h.opts.CookieSecure, true)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail lowercases and trims an address the way accounts are stored.
func NormalizeEmail(s string) string {
	return normalizeEmail(s)
}
