package positions

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
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type memStore struct {
	items map[string]*Position
}

func (m *memStore) List(_ context.Context, _ postgres.Page) ([]Position, error) {
	out := []Position{}
	for _, p := range m.items {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (*Position, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("position not found")
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, name, description string) (*Position, error) {
	for _, p := range m.items {
		if p.Name == name {
			return nil, apperr.Conflict("position name already exists")
		}
	}
	p := &Position{ID: uuid.NewString(), Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.items[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, id string, patch Patch) (*Position, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("position not found")
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("position not found")
	}
	delete(m.items, id)
	return nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r.Group("/positions"), &memStore{items: map[string]*Position{}})
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

func TestPositionsLifecycle(t *testing.T) {
	r := newRouter()

	code, out := call(r, http.MethodPost, "/positions", `{"name":" Estimator ","description":"Prices jobs"}`)
	require.Equal(t, http.StatusCreated, code)
	created := out["position"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "Estimator", created["name"])

	code, out = call(r, http.MethodGet, "/positions/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Prices jobs", out["position"].(map[string]any)["description"])

	code, out = call(r, http.MethodPut, "/positions/"+id, `{"description":"Prices every job"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Estimator", out["position"].(map[string]any)["name"])
	assert.Equal(t, "Prices every job", out["position"].(map[string]any)["description"])

	code, _ = call(r, http.MethodPost, "/positions", `{"name":"Estimator"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = call(r, http.MethodDelete, "/positions/"+id, "")
	require.Equal(t, http.StatusOK, code)

	code, _ = call(r, http.MethodGet, "/positions/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPositionsValidation(t *testing.T) {
	r := newRouter()

	code, out := call(r, http.MethodPost, "/positions", `{"description":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "name is required", out["error"])

	code, _ = call(r, http.MethodPost, "/positions", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(r, http.MethodGet, "/positions/42", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(r, http.MethodPut, "/positions/"+uuid.NewString(), `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
