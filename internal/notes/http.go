package notes

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildboard/buildboard-backend/internal/api/httpx"
	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/auth"
	"github.com/buildboard/buildboard-backend/internal/board"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type Store interface {
	List(ctx context.Context, t board.Table, parentID string, page postgres.Page) ([]Note, error)
	Get(ctx context.Context, id string) (*Note, error)
	Create(ctx context.Context, t board.Table, parentID, authorID, body string) (*Note, error)
	Update(ctx context.Context, id, body string) (*Note, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterParent mounts GET and POST /:id/notes for cards of table t.
func (h *Handler) RegisterParent(rg gin.IRoutes, t board.Table) {
	rg.GET("/:id/notes", h.list(t))
	rg.POST("/:id/notes", h.create(t))
}

// Register mounts /notes/:id.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type bodyReq struct {
	Body string `json:"body" binding:"required,max=10000"`
}

func (h *Handler) list(t board.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		page, ok := httpx.Page(c)
		if !ok {
			return
		}
		items, err := h.store.List(c.Request.Context(), t, parentID, page)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, "notes", items)
	}
}

func (h *Handler) create(t board.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req bodyReq
		if !httpx.BindJSON(c, &req) {
			return
		}
		body := strings.TrimSpace(req.Body)
		if body == "" {
			httpx.FailValidation(c, "body is required")
			return
		}

		n, err := h.store.Create(c.Request.Context(), t, parentID, auth.UserID(c), body)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, "note", n)
	}
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	n, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "note", n)
}

// editable loads the note and checks the caller is its author or at least a
// manager.
func (h *Handler) editable(c *gin.Context, id string) bool {
	n, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return false
	}
	p, _ := auth.CurrentPrincipal(c)
	if p.Role.AtLeast(auth.RoleManager) {
		return true
	}
	if n.AuthorID != nil && *n.AuthorID == p.UserID && p.UserID != "" {
		return true
	}
	httpx.Fail(c, apperr.Forbidden("only the author or a manager can change this note"))
	return false
}

func (h *Handler) update(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var req bodyReq
	if !httpx.BindJSON(c, &req) {
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		httpx.FailValidation(c, "body is required")
		return
	}
	if !h.editable(c, id) {
		return
	}

	n, err := h.store.Update(c.Request.Context(), id, body)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "note", n)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	if !h.editable(c, id) {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Done(c)
}
