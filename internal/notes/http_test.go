package notes

import (
	"context"
	"encoding/json"
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
	"github.com/buildboard/buildboard-backend/internal/auth"
	"github.com/buildboard/buildboard-backend/internal/board"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type memStore struct {
	parents map[string]board.Table
	items   map[string]*Note
}

func (m *memStore) List(_ context.Context, t board.Table, parentID string, _ postgres.Page) ([]Note, error) {
	if m.parents[parentID] != t {
		return nil, apperr.NotFound(t.Noun() + " not found")
	}
	out := []Note{}
	for _, n := range m.items {
		if (n.ProjectID != nil && *n.ProjectID == parentID) || (n.ResidentialProjectID != nil && *n.ResidentialProjectID == parentID) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (*Note, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("note not found")
	}
	cp := *n
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, t board.Table, parentID, authorID, body string) (*Note, error) {
	if m.parents[parentID] != t {
		return nil, apperr.NotFound(t.Noun() + " not found")
	}
	now := time.Now()
	n := &Note{ID: uuid.NewString(), AuthorID: &authorID, Body: body, CreatedAt: now, UpdatedAt: now}
	if t == board.ResidentialProjects {
		n.ResidentialProjectID = &parentID
	} else {
		n.ProjectID = &parentID
	}
	m.items[n.ID] = n
	cp := *n
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, id, body string) (*Note, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("note not found")
	}
	n.Body = body
	cp := *n
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("note not found")
	}
	delete(m.items, id)
	return nil
}

type caller struct {
	id   string
	role auth.Role
}

func setup(store *memStore, who *caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetPrincipal(c, auth.Principal{UserID: who.id, Role: who.role})
		c.Next()
	})
	h.RegisterParent(r.Group("/projects"), board.Projects)
	h.RegisterParent(r.Group("/residential-projects"), board.ResidentialProjects)
	h.Register(r.Group("/notes"))
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

func TestNotes_CreateAndList(t *testing.T) {
	projectID, houseID := uuid.NewString(), uuid.NewString()
	store := &memStore{
		parents: map[string]board.Table{projectID: board.Projects, houseID: board.ResidentialProjects},
		items:   map[string]*Note{},
	}
	who := &caller{id: uuid.NewString(), role: auth.RoleMember}
	r := setup(store, who)

	code, out := call(r, http.MethodPost, "/projects/"+projectID+"/notes", `{"body":"Framing inspection passed"}`)
	require.Equal(t, http.StatusCreated, code)
	n := out["note"].(map[string]any)
	assert.Equal(t, projectID, n["project_id"])
	assert.Equal(t, who.id, n["author_id"])

	code, out = call(r, http.MethodPost, "/residential-projects/"+houseID+"/notes", `{"body":"Client picked tile"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, houseID, out["note"].(map[string]any)["residential_project_id"])

	code, out = call(r, http.MethodGet, "/projects/"+projectID+"/notes", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["notes"], 1)

	code, _ = call(r, http.MethodGet, "/residential-projects/"+projectID+"/notes", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, out = call(r, http.MethodPost, "/projects/"+projectID+"/notes", `{"body":"   "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "body is required", out["error"])

	code, _ = call(r, http.MethodPost, "/projects/"+uuid.NewString()+"/notes", `{"body":"orphan"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNotes_AuthorOrManager(t *testing.T) {
	projectID := uuid.NewString()
	store := &memStore{parents: map[string]board.Table{projectID: board.Projects}, items: map[string]*Note{}}
	author := uuid.NewString()
	who := &caller{id: author, role: auth.RoleMember}
	r := setup(store, who)

	code, out := call(r, http.MethodPost, "/projects/"+projectID+"/notes", `{"body":"first"}`)
	require.Equal(t, http.StatusCreated, code)
	noteID := out["note"].(map[string]any)["id"].(string)

	code, out = call(r, http.MethodPut, "/notes/"+noteID, `{"body":"edited by author"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "edited by author", out["note"].(map[string]any)["body"])

	*who = caller{id: uuid.NewString(), role: auth.RoleMember}
	code, _ = call(r, http.MethodPut, "/notes/"+noteID, `{"body":"hijack"}`)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = call(r, http.MethodDelete, "/notes/"+noteID, "")
	assert.Equal(t, http.StatusForbidden, code)

	*who = caller{id: uuid.NewString(), role: auth.RoleManager}
	code, _ = call(r, http.MethodDelete, "/notes/"+noteID, "")
	require.Equal(t, http.StatusOK, code)

	code, _ = call(r, http.MethodGet, "/notes/"+noteID, "")
	assert.Equal(t, http.StatusNotFound, code)
}
