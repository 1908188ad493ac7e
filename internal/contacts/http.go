package contacts

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildboard/buildboard-backend/internal/api/httpx"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type Store interface {
	List(ctx context.Context, f Filter) ([]Contact, error)
	ListByBuilder(ctx context.Context, builderID string, page postgres.Page) ([]Contact, error)
	Get(ctx context.Context, id string) (*Contact, error)
	Create(ctx context.Context, in NewContact) (*Contact, error)
	Update(ctx context.Context, id string, p Patch) (*Contact, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Register mounts /contacts.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

// RegisterBuilderContacts mounts GET /:id/contacts on the builders group.
func (h *Handler) RegisterBuilderContacts(rg gin.IRoutes) {
	rg.GET("/:id/contacts", h.listForBuilder)
}

type createReq struct {
	BuilderID *string `json:"builder_id" binding:"omitnil,uuid_or_empty"`
	FirstName string  `json:"first_name" binding:"required,max=100"`
	LastName  string  `json:"last_name" binding:"max=100"`
	Title     string  `json:"title" binding:"max=100"`
	Email     string  `json:"email" binding:"omitempty,email"`
	Phone     string  `json:"phone" binding:"max=50"`
}

type updateReq struct {
	BuilderID *string `json:"builder_id" binding:"omitnil,uuid_or_empty"`
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Title     *string `json:"title" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
}

func (h *Handler) list(c *gin.Context) {
	page, ok := httpx.Page(c)
	if !ok {
		return
	}
	builderID, ok := httpx.QueryID(c, "builder_id")
	if !ok {
		return
	}
	items, err := h.store.List(c.Request.Context(), Filter{
		BuilderID: builderID,
		Query:     strings.TrimSpace(c.Query("q")),
		Page:      page,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "contacts", items)
}

func (h *Handler) listForBuilder(c *gin.Context) {
	builderID, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	page, ok := httpx.Page(c)
	if !ok {
		return
	}
	items, err := h.store.ListByBuilder(c.Request.Context(), builderID, page)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "contacts", items)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	ct, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "contact", ct)
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

	builderID := req.BuilderID
	if builderID != nil && *builderID == "" {
		builderID = nil
	}

	ct, err := h.store.Create(c.Request.Context(), NewContact{
		BuilderID: builderID,
		FirstName: first,
		LastName:  strings.TrimSpace(req.LastName),
		Title:     strings.TrimSpace(req.Title),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, "contact", ct)
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

	email := httpx.Trimmed(req.Email)
	if email != nil {
		*email = strings.ToLower(*email)
	}

	ct, err := h.store.Update(c.Request.Context(), id, Patch{
		BuilderID: req.BuilderID,
		FirstName: httpx.Trimmed(req.FirstName),
		LastName:  httpx.Trimmed(req.LastName),
		Title:     httpx.Trimmed(req.Title),
		Email:     email,
		Phone:     httpx.Trimmed(req.Phone),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "contact", ct)
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
