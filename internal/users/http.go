package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildboard/buildboard-backend/internal/api/httpx"
	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/auth"
)

type Store interface {
	List(ctx context.Context, f Filter) ([]User, error)
	Get(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, in NewUser) (*User, error)
	Update(ctx context.Context, id string, p Patch) (*User, error)
	SetPassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterSelf mounts the /users/me routes. They need authentication only.
func (h *Handler) RegisterSelf(rg gin.IRoutes) {
	rg.GET("/me", h.me)
	rg.PUT("/me", h.updateMe)
	rg.PUT("/me/password", h.changePassword)
}

// Register mounts the role-gated user management routes.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type createReq struct {
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8,max=72"`
	FirstName  string  `json:"first_name" binding:"required,max=100"`
	LastName   string  `json:"last_name" binding:"max=100"`
	Role       string  `json:"role" binding:"omitempty,oneof=admin manager member"`
	PositionID *string `json:"position_id" binding:"omitnil,uuid_or_empty"`
}

type updateReq struct {
	FirstName  *string `json:"first_name" binding:"omitempty,max=100"`
	LastName   *string `json:"last_name" binding:"omitempty,max=100"`
	Role       *string `json:"role" binding:"omitempty,oneof=admin manager member"`
	PositionID *string `json:"position_id" binding:"omitnil,uuid_or_empty"`
	Active     *bool   `json:"is_active"`
}

type updateMeReq struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
}

type passwordReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

func (h *Handler) list(c *gin.Context) {
	page, ok := httpx.Page(c)
	if !ok {
		return
	}
	role := auth.Role(strings.TrimSpace(c.Query("role")))
	if role != "" && !role.Valid() {
		httpx.FailValidation(c, "invalid role")
		return
	}

	items, err := h.store.List(c.Request.Context(), Filter{
		Query: strings.TrimSpace(c.Query("q")),
		Role:  role,
		Page:  page,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "users", items)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	u, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "user", u)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if !httpx.BindJSON(c, &req) {
		return
	}
	first := strings.TrimSpace(req.FirstName)
	if first == "" {
		httpx.FailValidation(c, "first_name is required")
		return
	}
	role := auth.RoleMember
	if req.Role != "" {
		role = auth.Role(req.Role)
	}
	positionID := req.PositionID
	if positionID != nil && *positionID == "" {
		positionID = nil
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	u, err := h.store.Create(c.Request.Context(), NewUser{
		Email:        auth.NormalizeEmail(req.Email),
		PasswordHash: hash,
		FirstName:    first,
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		PositionID:   positionID,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, "user", u)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var req updateReq
	if !httpx.BindJSON(c, &req) {
		return
	}
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		httpx.FailValidation(c, "first_name cannot be empty")
		return
	}

	p := Patch{
		FirstName:  httpx.Trimmed(req.FirstName),
		LastName:   httpx.Trimmed(req.LastName),
		PositionID: req.PositionID,
		Active:     req.Active,
	}
	if req.Role != nil && *req.Role != "" {
		role := auth.Role(*req.Role)
		p.Role = &role
	}
	if id == auth.UserID(c) {
		if p.Active != nil && !*p.Active {
			httpx.FailValidation(c, "cannot deactivate your own account")
			return
		}
		if p.Role != nil && *p.Role != auth.RoleAdmin {
			httpx.FailValidation(c, "cannot change your own role")
			return
		}
	}

	u, err := h.store.Update(c.Request.Context(), id, p)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "user", u)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	if id == auth.UserID(c) {
		httpx.FailValidation(c, "cannot delete your own account")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Done(c)
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.store.Get(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "user", u)
}

func (h *Handler) updateMe(c *gin.Context) {
	var req updateMeReq
	if !httpx.BindJSON(c, &req) {
		return
	}
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		httpx.FailValidation(c, "first_name cannot be empty")
		return
	}

	u, err := h.store.Update(c.Request.Context(), auth.UserID(c), Patch{
		FirstName: httpx.Trimmed(req.FirstName),
		LastName:  httpx.Trimmed(req.LastName),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "user", u)
}

func (h *Handler) changePassword(c *gin.Context) {
	var req passwordReq
	if !httpx.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	id := auth.UserID(c)
	u, err := h.store.Get(ctx, id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	if err := auth.ComparePassword(req.CurrentPassword, u.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrMismatchedPassword) {
			httpx.Fail(c, apperr.New(apperr.ErrUnauthorized, "current password is incorrect"))
			return
		}
		httpx.Fail(c, err)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	if err := h.store.SetPassword(ctx, id, hash); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Done(c)
}
