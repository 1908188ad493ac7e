package positions

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildboard/buildboard-backend/internal/api/httpx"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type Store interface {
	List(ctx context.Context, page postgres.Page) ([]Position, error)
	Get(ctx context.Context, id string) (*Position, error)
	Create(ctx context.Context, name, description string) (*Position, error)
	Update(ctx context.Context, id string, patch Patch) (*Position, error)
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
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

type updateReq struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

func (h *Handler) list(c *gin.Context) {
	page, ok := httpx.Page(c)
	if !ok {
		return
	}
	items, err := h.store.List(c.Request.Context(), page)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "positions", items)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "position", p)
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

	p, err := h.store.Create(c.Request.Context(), name, strings.TrimSpace(req.Description))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, "position", p)
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

	p, err := h.store.Update(c.Request.Context(), id, Patch{
		Name:        httpx.Trimmed(req.Name),
		Description: httpx.Trimmed(req.Description),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "position", p)
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
