package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/buildboard/buildboard-backend/internal/api/http"
	"github.com/buildboard/buildboard-backend/internal/api/http/middleware"
	"github.com/buildboard/buildboard-backend/internal/auth"
	"github.com/buildboard/buildboard-backend/internal/board"
	"github.com/buildboard/buildboard-backend/internal/builders"
	"github.com/buildboard/buildboard-backend/internal/contacts"
	"github.com/buildboard/buildboard-backend/internal/drawings"
	"github.com/buildboard/buildboard-backend/internal/notes"
	"github.com/buildboard/buildboard-backend/internal/positions"
	"github.com/buildboard/buildboard-backend/internal/projects"
	"github.com/buildboard/buildboard-backend/internal/residential"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
	"github.com/buildboard/buildboard-backend/internal/users"
)

// Database is what the router needs from the pool: the repository contract
// plus a health ping.
type Database interface {
	postgres.DB
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	// TrustedProxies may set X-Forwarded-For; nil trusts none.
	TrustedProxies []string

	DB    Database
	Redis *redis.Client       // optional
	Files drawings.FileStore // optional

	Tokens       *auth.TokenService
	Revoker      auth.Revoker
	Enforcer     *auth.Enforcer
	LoginLimiter *middleware.IPRateLimiter
	AuthOptions  auth.Options
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(dep.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(middleware.RequestID(), middleware.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var rdb httpapi.RedisPinger
	if dep.Redis != nil {
		rdb = dep.Redis
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, rdb)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	requireAuth := auth.RequireAuth(dep.Tokens, dep.Revoker, dep.AuthOptions.CookieName)
	gate := func(path, resource string) *gin.RouterGroup {
		return api.Group(path, requireAuth, dep.Enforcer.Authorize(resource))
	}

	userRepo := users.NewRepo(dep.DB)

	authHandler := auth.NewHandler(userRepo, dep.Tokens, dep.Revoker, dep.AuthOptions)
	authHandler.RegisterPublic(api.Group("/auth", dep.LoginLimiter.Middleware()))
	authHandler.RegisterPrivate(api.Group("/auth", requireAuth))

	userHandler := users.NewHandler(userRepo)
	userHandler.RegisterSelf(api.Group("/users", requireAuth))
	userHandler.Register(gate("/users", auth.ResourceUsers))

	positions.Register(gate("/positions", auth.ResourcePositions), positions.NewRepo(dep.DB))

	contactHandler := contacts.NewHandler(contacts.NewRepo(dep.DB))
	builders.Register(gate("/builders", auth.ResourceBuilders), builders.NewRepo(dep.DB))
	contactHandler.RegisterBuilderContacts(gate("/builders", auth.ResourceContacts))
	contactHandler.Register(gate("/contacts", auth.ResourceContacts))

	projects.Register(gate("/projects", auth.ResourceProjects), projects.NewRepo(dep.DB))
	residential.Register(gate("/residential-projects", auth.ResourceResidentialProjects), residential.NewRepo(dep.DB))

	parents := map[board.Table]string{
		board.Projects:            "/projects",
		board.ResidentialProjects: "/residential-projects",
	}

	noteHandler := notes.NewHandler(notes.NewRepo(dep.DB))
	drawingHandler := drawings.NewHandler(drawings.NewRepo(dep.DB), dep.Files)
	for t, path := range parents {
		noteHandler.RegisterParent(gate(path, auth.ResourceNotes), t)
		drawingHandler.RegisterParent(gate(path, auth.ResourceDrawings), t)
	}
	noteHandler.Register(gate("/notes", auth.ResourceNotes))
	drawingHandler.Register(gate("/drawings", auth.ResourceDrawings))

	return r, nil
}
