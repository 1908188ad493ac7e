package drawings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/board"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type memStore struct {
	parents map[string]board.Table
	items   map[string]*Drawing
}

func (m *memStore) List(_ context.Context, t board.Table, parentID string, _ postgres.Page) ([]Drawing, error) {
	if m.parents[parentID] != t {
		return nil, apperr.NotFound(t.Noun() + " not found")
	}
	out := []Drawing{}
	for _, d := range m.items {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (*Drawing, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("drawing not found")
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, t board.Table, parentID string, in NewDrawing) (*Drawing, error) {
	if m.parents[parentID] != t {
		return nil, apperr.NotFound(t.Noun() + " not found")
	}
	now := time.Now()
	d := &Drawing{
		ID: uuid.NewString(), Title: in.Title, Revision: in.Revision, FileKey: in.FileKey, FileURL: in.FileURL,
		ContentType: in.ContentType, SizeBytes: in.SizeBytes, CreatedAt: now, UpdatedAt: now,
	}
	if t == board.ResidentialProjects {
		d.ResidentialProjectID = &parentID
	} else {
		d.ProjectID = &parentID
	}
	m.items[d.ID] = d
	cp := *d
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, id string, p Patch) (*Drawing, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("drawing not found")
	}
	if p.Revision != nil {
		d.Revision = *p.Revision
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id string) (string, error) {
	d, ok := m.items[id]
	if !ok {
		return "", apperr.NotFound("drawing not found")
	}
	delete(m.items, id)
	return d.FileKey, nil
}

type fakeFiles struct {
	deleted    []string
	failDel    bool
	failUpload bool
}

func (f *fakeFiles) PresignUpload(_ context.Context, key, _ string) (string, time.Time, error) {
	if f.failUpload {
		return "", time.Time{}, errors.New("credentials expired")
	}
	return "https://objects.test/put/" + key, time.Now().Add(time.Minute), nil
}

func (f *fakeFiles) PresignDownload(_ context.Context, key string) (string, time.Time, error) {
	return "https://objects.test/get/" + key, time.Now().Add(time.Minute), nil
}

func (f *fakeFiles) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.failDel {
		return errors.New("bucket unavailable")
	}
	return nil
}

func setup(store *memStore, files FileStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, files)
	r := gin.New()
	h.RegisterParent(r.Group("/projects"), board.Projects)
	h.RegisterParent(r.Group("/residential-projects"), board.ResidentialProjects)
	h.Register(r.Group("/drawings"))
	return r
}

func call(r http.Handler, method, path, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var out map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr.Code, out
}

func TestDrawings_UploadFlow(t *testing.T) {
	projectID := uuid.NewString()
	store := &memStore{parents: map[string]board.Table{projectID: board.Projects}, items: map[string]*Drawing{}}
	files := &fakeFiles{failDel: true}
	r := setup(store, files)

	code, out := call(r, http.MethodPost, "/projects/"+projectID+"/drawings",
		`{"title":"A-101 Floor plan","revision":"B","file_name":"A-101.pdf","content_type":"application/pdf","size_bytes":2048}`)
	require.Equal(t, http.StatusCreated, code)
	d := out["drawing"].(map[string]any)
	id := d["id"].(string)
	key := d["file_key"].(string)
	assert.True(t, strings.HasPrefix(key, "drawings/"+projectID+"/"))
	assert.Equal(t, "https://objects.test/put/"+key, d["upload_url"])

	code, out = call(r, http.MethodGet, "/drawings/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "https://objects.test/get/"+key, out["drawing"].(map[string]any)["download_url"])
	assert.NotContains(t, out["drawing"], "upload_url")

	code, out = call(r, http.MethodPut, "/drawings/"+id, `{"revision":"C"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "C", out["drawing"].(map[string]any)["revision"])

	code, _ = call(r, http.MethodDelete, "/drawings/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{key}, files.deleted)

	code, _ = call(r, http.MethodGet, "/drawings/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDrawings_WithoutObjectStorage(t *testing.T) {
	houseID := uuid.NewString()
	store := &memStore{parents: map[string]board.Table{houseID: board.ResidentialProjects}, items: map[string]*Drawing{}}
	r := setup(store, nil)

	code, out := call(r, http.MethodPost, "/residential-projects/"+houseID+"/drawings", `{"title":"Site plan","file_name":"site.pdf"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["error"], "file uploads are not configured")

	code, out = call(r, http.MethodPost, "/residential-projects/"+houseID+"/drawings", `{"title":"Site plan","file_url":"https://plans.example/site.pdf"}`)
	require.Equal(t, http.StatusCreated, code)
	d := out["drawing"].(map[string]any)
	assert.Equal(t, houseID, d["residential_project_id"])
	assert.Equal(t, "https://plans.example/site.pdf", d["file_url"])
	assert.NotContains(t, d, "upload_url")

	code, out = call(r, http.MethodPost, "/residential-projects/"+houseID+"/drawings", `{"revision":"A"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "title is required", out["error"])

	code, _ = call(r, http.MethodGet, "/projects/"+houseID+"/drawings", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDrawings_PresignFailureStoresNothing(t *testing.T) {
	projectID := uuid.NewString()
	store := &memStore{parents: map[string]board.Table{projectID: board.Projects}, items: map[string]*Drawing{}}
	r := setup(store, &fakeFiles{failUpload: true})

	code, _ := call(r, http.MethodPost, "/projects/"+projectID+"/drawings",
		`{"title":"A-101 Floor plan","file_name":"A-101.pdf","content_type":"application/pdf"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Empty(t, store.items)

	code, out := call(r, http.MethodGet, "/projects/"+projectID+"/drawings", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out["drawings"])
}
