package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildboard/buildboard-backend/internal/apperr"
)

type fakeAccounts struct {
	mu     sync.Mutex
	byID   map[string]*Account
	logins []string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[string]*Account{}}
}

func (f *fakeAccounts) add(t *testing.T, id, email, password string, role Role, active bool) {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	f.byID[id] = &Account{ID: id, Email: email, Role: role, Active: active, PasswordHash: hash}
}

func (f *fakeAccounts) AccountByEmail(_ context.Context, email string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeAccounts) AccountByID(_ context.Context, id string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) CreateAccount(_ context.Context, in NewAccount) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == in.Email {
			return nil, apperr.Conflict("email already exists")
		}
	}
	a := &Account{
		ID:           "new-user",
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		Active:       true,
		PasswordHash: in.PasswordHash,
	}
	f.byID[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) RecordLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, id)
	return nil
}

type authFixture struct {
	router   *gin.Engine
	accounts *fakeAccounts
	tokens   *TokenService
}

func newAuthFixture(t *testing.T, allowSignup bool) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := newFakeAccounts()
	tokens := NewTokenService(testSecret, "buildboard", time.Hour)
	revoker := NewMemoryRevoker()
	h := NewHandler(accounts, tokens, revoker, Options{CookieName: "access_token", AllowSignup: allowSignup})

	r := gin.New()
	g := r.Group("/auth")
	h.RegisterPublic(g)
	h.RegisterPrivate(g.Group("", RequireAuth(tokens, revoker, "access_token")))

	return &authFixture{router: r, accounts: accounts, tokens: tokens}
}

func (f *authFixture) do(method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	var out map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr, out
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t, false)
	f.accounts.add(t, "u-1", "ana@example.com", "s3cret-pass", RoleManager, true)
	f.accounts.add(t, "u-2", "off@example.com", "s3cret-pass", RoleMember, false)

	t.Run("success", func(t *testing.T) {
		rr, out := f.do(http.MethodPost, "/auth/login", `{"email":"Ana@Example.com","password":"s3cret-pass"}`, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, out["ok"])
		assert.NotEmpty(t, out["token"])

		user := out["user"].(map[string]any)
		assert.Equal(t, "u-1", user["id"])
		assert.NotContains(t, user, "password_hash")
		assert.Contains(t, rr.Header().Get("Set-Cookie"), "access_token=")
		assert.Contains(t, rr.Header().Get("Set-Cookie"), "HttpOnly")
		assert.Equal(t, []string{"u-1"}, f.accounts.logins)
	})

	t.Run("missing password", func(t *testing.T) {
		rr, out := f.do(http.MethodPost, "/auth/login", `{"email":"ana@example.com"}`, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "password is required", out["error"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rr, out := f.do(http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"nope-nope"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "invalid email or password", out["error"])
	})

	t.Run("unknown email", func(t *testing.T) {
		rr, out := f.do(http.MethodPost, "/auth/login", `{"email":"ghost@example.com","password":"whatever1"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "invalid email or password", out["error"])
	})

	t.Run("inactive user", func(t *testing.T) {
		rr, _ := f.do(http.MethodPost, "/auth/login", `{"email":"off@example.com","password":"s3cret-pass"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRegister(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newAuthFixture(t, false)
		rr, _ := f.do(http.MethodPost, "/auth/register", `{"email":"a@example.com","password":"longenough","first_name":"A"}`, "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("creates member", func(t *testing.T) {
		f := newAuthFixture(t, true)
		rr, out := f.do(http.MethodPost, "/auth/register", `{"email":"A@example.com","password":"longenough","first_name":"A"}`, "")
		require.Equal(t, http.StatusCreated, rr.Code)
		user := out["user"].(map[string]any)
		assert.Equal(t, "a@example.com", user["email"])
		assert.Equal(t, "member", user["role"])
	})

	t.Run("duplicate", func(t *testing.T) {
		f := newAuthFixture(t, true)
		f.accounts.add(t, "u-1", "a@example.com", "longenough", RoleMember, true)
		rr, _ := f.do(http.MethodPost, "/auth/register", `{"email":"a@example.com","password":"longenough","first_name":"A"}`, "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("short password", func(t *testing.T) {
		f := newAuthFixture(t, true)
		rr, out := f.do(http.MethodPost, "/auth/register", `{"email":"a@example.com","password":"short","first_name":"A"}`, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "password must be at least 8 characters", out["error"])
	})
}

func TestMeAndLogout(t *testing.T) {
	f := newAuthFixture(t, false)
	f.accounts.add(t, "u-1", "ana@example.com", "s3cret-pass", RoleMember, true)

	issued, err := f.tokens.Issue(Identity{UserID: "u-1", Email: "ana@example.com", Role: RoleMember})
	require.NoError(t, err)

	rr, out := f.do(http.MethodGet, "/auth/me", "", issued.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ana@example.com", out["user"].(map[string]any)["email"])

	rr, _ = f.do(http.MethodPost, "/auth/logout", "", issued.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Set-Cookie"), "Max-Age=0")

	rr, out = f.do(http.MethodGet, "/auth/me", "", issued.Token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "token revoked", out["error"])
}

func TestMe_WithoutToken(t *testing.T) {
	f := newAuthFixture(t, false)
	rr, _ := f.do(http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
