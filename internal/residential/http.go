package residential

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
	ClientName  string  `json:"client_name" binding:"required,max=200"`
	BuilderID   *string `json:"builder_id" binding:"omitnil,uuid_or_empty"`
	Address     string  `json:"address" binding:"required,max=500"`
	Subdivision string  `json:"subdivision" binding:"max=200"`
	LotNumber   string  `json:"lot_number" binding:"max=50"`
	PlanName    string  `json:"plan_name" binding:"max=200"`
	Status      string  `json:"status"`
	AssignedTo  *string `json:"assigned_to" binding:"omitnil,uuid_or_empty"`
	DueDate     *string `json:"due_date" binding:"omitnil,date_or_empty"`
}

type updateReq struct {
	ClientName  *string `json:"client_name" binding:"omitempty,max=200"`
	BuilderID   *string `json:"builder_id" binding:"omitnil,uuid_or_empty"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	Subdivision *string `json:"subdivision" binding:"omitempty,max=200"`
	LotNumber   *string `json:"lot_number" binding:"omitempty,max=50"`
	PlanName    *string `json:"plan_name" binding:"omitempty,max=200"`
	AssignedTo  *string `json:"assigned_to" binding:"omitnil,uuid_or_empty"`
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
	httpx.OK(c, http.StatusOK, "residential_projects", items)
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
	httpx.OK(c, http.StatusOK, "residential_project", p)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if !httpx.BindJSON(c, &req) {
		return
	}
	client := strings.TrimSpace(req.ClientName)
	address := strings.TrimSpace(req.Address)
	switch {
	case client == "":
		httpx.FailValidation(c, "client_name is required")
		return
	case address == "":
		httpx.FailValidation(c, "address is required")
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
		ClientName:  client,
		BuilderID:   httpx.NonEmpty(req.BuilderID),
		Address:     address,
		Subdivision: strings.TrimSpace(req.Subdivision),
		LotNumber:   strings.TrimSpace(req.LotNumber),
		PlanName:    strings.TrimSpace(req.PlanName),
		Status:      status,
		AssignedTo:  httpx.NonEmpty(req.AssignedTo),
		DueDate:     httpx.NonEmpty(req.DueDate),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, "residential_project", p)
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
	if req.ClientName != nil && strings.TrimSpace(*req.ClientName) == "" {
		httpx.FailValidation(c, "client_name cannot be empty")
		return
	}
	if req.Address != nil && strings.TrimSpace(*req.Address) == "" {
		httpx.FailValidation(c, "address cannot be empty")
		return
	}

	p, err := h.store.Update(c.Request.Context(), id, Patch{
		ClientName:  httpx.Trimmed(req.ClientName),
		BuilderID:   req.BuilderID,
		Address:     httpx.Trimmed(req.Address),
		Subdivision: httpx.Trimmed(req.Subdivision),
		LotNumber:   httpx.Trimmed(req.LotNumber),
		PlanName:    httpx.Trimmed(req.PlanName),
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "residential_project", p)
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
	httpx.OK(c, http.StatusOK, "residential_project", p)
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
