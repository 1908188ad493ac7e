package builders

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildboard/buildboard-backend/internal/api/httpx"
)

type Store interface {
	List(ctx context.Context, f Filter) ([]Builder, error)
	Get(ctx context.Context, id string) (*Builder, error)
	Create(ctx context.Context, in NewBuilder) (*Builder, error)
	Update(ctx context.Context, id string, p Patch) (*Builder, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	store Store
}

func Register(rg gin.IRoutes, store Store) {
	h := &Handler{store: store}

	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type createReq struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
	Website string `json:"website" binding:"omitempty,url"`
}

type updateReq struct {
	Name    *string `json:"name" binding:"omitempty,max=200"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Website *string `json:"website" binding:"omitempty,url"`
}

func (h *Handler) list(c *gin.Context) {
	page, ok := httpx.Page(c)
	if !ok {
		return
	}
	items, err := h.store.List(c.Request.Context(), Filter{
		Query: strings.TrimSpace(c.Query("q")),
		Page:  page,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "builders", items)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "builder", b)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if !httpx.BindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		httpx.FailValidation(c, "name is required")
		return
	}

	b, err := h.store.Create(c.Request.Context(), NewBuilder{
		Name:    name,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Website: strings.TrimSpace(req.Website),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, "builder", b)
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
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		httpx.FailValidation(c, "name cannot be empty")
		return
	}

	email := httpx.Trimmed(req.Email)
	if email != nil {
		*email = strings.ToLower(*email)
	}

	b, err := h.store.Update(c.Request.Context(), id, Patch{
		Name:    httpx.Trimmed(req.Name),
		Email:   email,
		Phone:   httpx.Trimmed(req.Phone),
		Address: httpx.Trimmed(req.Address),
		Website: httpx.Trimmed(req.Website),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "builder", b)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Done(c)
}
