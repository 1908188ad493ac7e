package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/buildboard/buildboard-backend/internal/api/http/middleware"
	"github.com/buildboard/buildboard-backend/internal/auth"
	"github.com/buildboard/buildboard-backend/internal/bootstrap"
	"github.com/buildboard/buildboard-backend/internal/cronjob"
	"github.com/buildboard/buildboard-backend/internal/drawings"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	bootstrap.SetGinMode(cfg.App.Environment)

	if cfg.Database.AutoMigrate {
		if err := applySchema(ctx); err != nil {
			return err
		}
	}

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN, MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info().Msg("connected to database")

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if rdb != nil {
		defer rdb.Close()
		revoker = auth.NewRedisRevoker(rdb)
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("REDIS_URL not set; token revocation is kept in memory")
	}

	s3Client, err := bootstrap.OpenS3(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	var files drawings.FileStore
	var objects cronjob.ObjectDeleter
	if s3Client != nil {
		store := drawings.NewS3Store(s3Client, cfg.Storage.S3Bucket, cfg.Storage.PresignTTL)
		files, objects = store, store
		log.Info().Str("bucket", cfg.Storage.S3Bucket).Msg("drawing uploads enabled")
	}

	enforcer, err := auth.NewEnforcer()
	if err != nil {
		return err
	}
	limiter := middleware.NewIPRateLimiter(cfg.Auth.LoginRatePerMin, cfg.Auth.LoginRateBurst)

	scheduler := cronjob.NewScheduler(cfg.Jobs.JobTimeout)
	if err := scheduler.AddPurge(cfg.Jobs.PurgeSchedule, cronjob.NewPurger(pool, objects, cfg.Jobs.PurgeRetention)); err != nil {
		return err
	}
	err = scheduler.Add("login-limiter-sweep", "@every 5m", func(ctx context.Context) error {
		if n := limiter.Sweep(); n > 0 {
			log.Ctx(ctx).Debug().Int("removed", n).Msg("swept idle login limiters")
		}
		return nil
	})
	if err != nil {
		return err
	}
	scheduler.Start()

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		DB:             pool,
		Redis:          rdb,
		Files:          files,
		Tokens:         auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Revoker:        revoker,
		Enforcer:       enforcer,
		LoginLimiter:   limiter,
		AuthOptions: auth.Options{
			CookieName:   cfg.Auth.CookieName,
			CookieDomain: cfg.Auth.CookieDomain,
			CookieSecure: cfg.Auth.CookieSecure,
			AllowSignup:  cfg.Auth.AllowSignup,
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Environment).Msg("server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down gracefully")
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop(sctx)
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func applySchema(ctx context.Context) error {
	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("database schema is up to date")
	return nil
}
