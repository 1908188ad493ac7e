package projects

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buildboard/buildboard-backend/internal/api/httpx"
	"github.com/buildboard/buildboard-backend/internal/board"
)

type Store interface {
	List(ctx context.Context, f Filter) ([]Project, error)
	Board(ctx context.Context) ([]Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	Create(ctx context.Context, in NewProject) (*Project, error)
	Update(ctx context.Context, id string, p Patch) (*Project, error)
	Move(ctx context.Context, id string, status board.Status, pos *int) (*Project, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	store Store
}

func Register(rg gin.IRoutes, store Store) {
	h := &Handler{store: store}

	rg.GET("", h.list)
	rg.GET("/board", h.board)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.PATCH("/:id/status", h.move)
	rg.DELETE("/:id", h.delete)
}

type createReq struct {
	Name        string  `json:"name" binding:"required,max=200"`
	BuilderID   string  `json:"builder_id" binding:"required,uuid"`
	Address     string  `json:"address" binding:"max=500"`
	Description string  `json:"description" binding:"max=5000"`
	Status      string  `json:"status"`
	AssignedTo  *string `json:"assigned_to" binding:"omitnil,uuid_or_empty"`
	StartDate   *string `json:"start_date" binding:"omitnil,date_or_empty"`
	DueDate     *string `json:"due_date" binding:"omitnil,date_or_empty"`
}

type updateReq struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	BuilderID   *string `json:"builder_id" binding:"omitnil,uuid_or_empty"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	AssignedTo  *string `json:"assigned_to" binding:"omitnil,uuid_or_empty"`
	StartDate   *string `json:"start_date" binding:"omitnil,date_or_empty"`
	DueDate     *string `json:"due_date" binding:"omitnil,date_or_empty"`
}

type moveReq struct {
	Status        string `json:"status" binding:"required"`
	BoardPosition *int   `json:"board_position" binding:"omitempty,gte=0"`
}

func (h *Handler) list(c *gin.Context) {
	page, ok := httpx.Page(c)
	if !ok {
		return
	}
	f := Filter{Query: strings.TrimSpace(c.Query("q")), Page: page}
	if s := c.Query("status"); s != "" {
		st, err := board.ParseStatus(s)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		f.Status = st
	}
	if f.BuilderID, ok = httpx.QueryID(c, "builder_id"); !ok {
		return
	}
	if f.AssignedTo, ok = httpx.QueryID(c, "assigned_to"); !ok {
		return
	}

	items, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "projects", items)
}

func (h *Handler) board(c *gin.Context) {
	items, err := h.store.Board(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "board", board.Group(items))
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
	httpx.OK(c, http.StatusOK, "project", p)
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
	status := board.StatusNew
	if req.Status != "" {
		st, err := board.ParseStatus(req.Status)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		status = st
	}

	p, err := h.store.Create(c.Request.Context(), NewProject{
		Name:        name,
		BuilderID:   req.BuilderID,
		Address:     strings.TrimSpace(req.Address),
		Description: strings.TrimSpace(req.Description),
		Status:      status,
		AssignedTo:  httpx.NonEmpty(req.AssignedTo),
		StartDate:   httpx.NonEmpty(req.StartDate),
		DueDate:     httpx.NonEmpty(req.DueDate),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, "project", p)
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
	if req.BuilderID != nil && *req.BuilderID == "" {
		httpx.FailValidation(c, "builder_id cannot be empty")
		return
	}

	p, err := h.store.Update(c.Request.Context(), id, Patch{
		Name:        httpx.Trimmed(req.Name),
		BuilderID:   req.BuilderID,
		Address:     httpx.Trimmed(req.Address),
		Description: httpx.Trimmed(req.Description),
		AssignedTo:  req.AssignedTo,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "project", p)
}

func (h *Handler) move(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var req moveReq
	if !httpx.BindJSON(c, &req) {
		return
	}
	status, err := board.ParseStatus(req.Status)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	p, err := h.store.Move(c.Request.Context(), id, status, req.BoardPosition)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "project", p)
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
