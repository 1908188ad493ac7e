package drawings

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/buildboard/buildboard-backend/internal/api/httpx"
	"github.com/buildboard/buildboard-backend/internal/auth"
	"github.com/buildboard/buildboard-backend/internal/board"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type Store interface {
	List(ctx context.Context, t board.Table, parentID string, page postgres.Page) ([]Drawing, error)
	Get(ctx context.Context, id string) (*Drawing, error)
	Create(ctx context.Context, t board.Table, parentID string, in NewDrawing) (*Drawing, error)
	Update(ctx context.Context, id string, p Patch) (*Drawing, error)
	Delete(ctx context.Context, id string) (string, error)
}

type Handler struct {
	store Store
	files FileStore
}

// NewHandler accepts a nil files when object storage is not configured;
// drawings then carry external file URLs only.
func NewHandler(store Store, files FileStore) *Handler {
	return &Handler{store: store, files: files}
}

// RegisterParent mounts GET and POST /:id/drawings for cards of table t.
func (h *Handler) RegisterParent(rg gin.IRoutes, t board.Table) {
	rg.GET("/:id/drawings", h.list(t))
	rg.POST("/:id/drawings", h.create(t))
}

// Register mounts /drawings/:id.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type createReq struct {
	Title       string `json:"title" binding:"required,max=200"`
	Revision    string `json:"revision" binding:"max=50"`
	FileName    string `json:"file_name" binding:"max=255"`
	ContentType string `json:"content_type" binding:"max=100"`
	SizeBytes   int64  `json:"size_bytes" binding:"gte=0"`
	FileURL     string `json:"file_url" binding:"omitempty,url"`
}

type updateReq struct {
	Title    *string `json:"title" binding:"omitempty,max=200"`
	Revision *string `json:"revision" binding:"omitempty,max=50"`
	FileURL  *string `json:"file_url" binding:"omitempty,url"`
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
		httpx.OK(c, http.StatusOK, "drawings", items)
	}
}

func (h *Handler) create(t board.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req createReq
		if !httpx.BindJSON(c, &req) {
			return
		}
		title := strings.TrimSpace(req.Title)
		if title == "" {
			httpx.FailValidation(c, "title is required")
			return
		}
		fileName := strings.TrimSpace(req.FileName)
		if fileName != "" && h.files == nil {
			httpx.FailValidation(c, "file uploads are not configured; provide file_url")
			return
		}

		in := NewDrawing{
			Title:       title,
			Revision:    strings.TrimSpace(req.Revision),
			FileURL:     strings.TrimSpace(req.FileURL),
			ContentType: strings.TrimSpace(req.ContentType),
			SizeBytes:   req.SizeBytes,
			UploadedBy:  auth.UserID(c),
		}
		if fileName != "" {
			in.FileKey = ObjectKey(parentID, fileName)
		}

		// Presign before inserting so a storage failure leaves no row behind.
		ctx := c.Request.Context()
		var (
			uploadURL string
			expires   time.Time
		)
		if in.FileKey != "" {
			var err error
			uploadURL, expires, err = h.files.PresignUpload(ctx, in.FileKey, in.ContentType)
			if err != nil {
				httpx.Fail(c, err)
				return
			}
		}

		d, err := h.store.Create(ctx, t, parentID, in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if uploadURL != "" {
			d.UploadURL, d.URLExpires = uploadURL, &expires
		}
		httpx.OK(c, http.StatusCreated, "drawing", d)
	}
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	d, err := h.store.Get(ctx, id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	if d.FileKey != "" && h.files != nil {
		url, exp, err := h.files.PresignDownload(ctx, d.FileKey)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		d.DownloadURL, d.URLExpires = url, &exp
	}
	httpx.OK(c, http.StatusOK, "drawing", d)
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
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		httpx.FailValidation(c, "title cannot be empty")
		return
	}

	d, err := h.store.Update(c.Request.Context(), id, Patch{
		Title:    httpx.Trimmed(req.Title),
		Revision: httpx.Trimmed(req.Revision),
		FileURL:  httpx.Trimmed(req.FileURL),
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, "drawing", d)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	key, err := h.store.Delete(ctx, id)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	if key != "" && h.files != nil {
		if err := h.files.Delete(ctx, key); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("drawing_id", id).Str("file_key", key).Msg("failed to delete drawing object")
		}
	}
	httpx.Done(c)
}
