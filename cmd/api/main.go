package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/folio-dash/folio-backend/config"
	"github.com/folio-dash/folio-backend/internal/api/http/middleware"
	"github.com/folio-dash/folio-backend/internal/api/http/routes"
	"github.com/folio-dash/folio-backend/internal/auth"
	authhttp "github.com/folio-dash/folio-backend/internal/auth/http"
	authmw "github.com/folio-dash/folio-backend/internal/auth/middleware"
	"github.com/folio-dash/folio-backend/internal/bootstrap"
	"github.com/folio-dash/folio-backend/internal/docs"
	docshttp "github.com/folio-dash/folio-backend/internal/docs/http"
	"github.com/folio-dash/folio-backend/internal/logging"
	"github.com/folio-dash/folio-backend/internal/projects/cache"
	"github.com/folio-dash/folio-backend/internal/projects/form"
	projectshttp "github.com/folio-dash/folio-backend/internal/projects/http"
	"github.com/folio-dash/folio-backend/internal/projects/repository"
	"github.com/folio-dash/folio-backend/internal/projects/service"
	"github.com/folio-dash/folio-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	slog.SetDefault(logger)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Error("failed to open database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			logger.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		logger.Info("schema applied")
	}

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	authMW, err := authMiddleware(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize auth", "error", err)
		os.Exit(1)
	}

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	var (
		listCache *cache.ListCache
		svcCache  service.ListCache
	)
	if rdb != nil {
		defer rdb.Close()
		listCache = cache.NewListCache(rdb, cfg.Redis.CacheTTL)
		svcCache = listCache
	} else {
		logger.Warn("REDIS_ADDR not set; project list cache and change stream disabled")
	}

	var uploader form.Uploader
	if cfg.StorageEnabled() {
		store, err := bootstrap.OpenStorage(ctx, &cfg.Storage)
		if err != nil {
			logger.Error("failed to initialize image storage", "error", err)
			os.Exit(1)
		}
		uploader = store
	} else {
		logger.Warn("STORAGE_BUCKET not set; image uploads disabled")
	}

	lib := docs.NewLibrary(cfg.Docs.Dir, logger)
	watcher, err := docs.NewWatcher(lib, cfg.Docs.SettleDelay, logger)
	if err != nil {
		logger.Error("failed to create docs watcher", "error", err)
		os.Exit(1)
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Error("failed to start docs watcher", "error", err)
		os.Exit(1)
	}
	defer watcher.Stop()

	resync, err := docs.NewResync(lib, cfg.Docs.ResyncSchedule, logger)
	if err != nil {
		logger.Error("failed to schedule docs resync", "error", err)
		os.Exit(1)
	}
	if resync != nil {
		resync.Start()
		defer resync.Stop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	projectSvc := service.NewProjectService(repository.NewProjectRepository(db), svcCache)
	projectsHandler := projectshttp.New(projectSvc, uploader, listCache, cfg.Upload.MaxBytes)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
		DB:             pool,
		Redis:          rdb,
		Registry:       registry,
		V1: routes.V1Deps{
			Auth:        authMW,
			UploadLimit: middleware.NewRateLimiter(cfg.Upload.RatePerMinute, cfg.Upload.Burst).Middleware(),
			Projects:    projectsHandler,
			Session:     authhttp.New(),
			Docs:        docshttp.New(lib),
		},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.App.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(logger, server, cancel)
}

func authMiddleware(ctx context.Context, cfg *config.Config) (gin.HandlerFunc, error) {
	if cfg.Auth.Mode == config.AuthModeDev {
		slog.Warn("AUTH_MODE=dev: trusting X-User-Id header")
		return authmw.DevHeaderAuth(), nil
	}
	client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		return nil, err
	}
	return authmw.FirebaseAuthMiddleware(client), nil
}

// waitForShutdown blocks until SIGINT or SIGTERM, then drains open requests.
// Cancelling the base context first ends the long-lived SSE streams, which
// Shutdown would otherwise wait on until its deadline.
func waitForShutdown(logger *slog.Logger, server *http.Server, cancelBase context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
