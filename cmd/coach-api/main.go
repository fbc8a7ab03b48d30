package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lumafit/coach-api/api/swagger"
	"github.com/lumafit/coach-api/internal/handler"
	"github.com/lumafit/coach-api/internal/middleware"
	"github.com/lumafit/coach-api/internal/models"
	"github.com/lumafit/coach-api/internal/planner"
	"github.com/lumafit/coach-api/internal/repository"
	"github.com/lumafit/coach-api/internal/service"
	"github.com/lumafit/coach-api/pkg/cache"
	"github.com/lumafit/coach-api/pkg/config"
	"github.com/lumafit/coach-api/pkg/database"
	"github.com/lumafit/coach-api/pkg/jobs"
	"github.com/lumafit/coach-api/pkg/logger"
	corsmiddleware "github.com/lumafit/coach-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lumafit/coach-api/pkg/middleware/requestid"
	"github.com/lumafit/coach-api/pkg/storage"
)

// @title Lumafit Coach API
// @version 1.0.0
// @description Catalog-driven training program matching, plan activation and progression tracking
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("postgres connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled && redisClient != nil)

	catalogRepo := repository.NewCatalogRepository()
	catalogSvc := service.NewCatalogService(catalogRepo, cacheSvc, logr, service.CatalogConfig{
		CacheEnabled: cfg.Catalog.CacheEnabled,
		CacheTTL:     cfg.Catalog.CacheTTL,
	})
	if _, err := catalogSvc.List(context.Background()); err != nil {
		logr.Sugar().Fatalw("catalog load failed", "error", err)
	}

	matchSvc := service.NewMatchService(catalogSvc, logr)

	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "coach-api",
	})

	profileRepo := repository.NewProfileRepository(db)
	workoutRepo := repository.NewWorkoutLogRepository(db)

	planWorker := service.NewPlanDetailWorker(catalogSvc, profileRepo, logr)
	planQueue := jobs.NewQueue("plan_detail", planWorker.Handle, jobs.QueueConfig{
		Workers: 1,
		Logger:  logr,
	})

	plannerClient := planner.NewClient(cfg.Planner)
	activationSvc := service.NewActivationService(catalogSvc, plannerClient, profileRepo, planQueue, metricsSvc, logr)
	progressionSvc := service.NewProgressionService(catalogSvc, profileRepo, workoutRepo, metricsSvc, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc, matchSvc)
	planHandler := handler.NewPlanHandler(activationSvc)
	progressHandler := handler.NewProgressHandler(progressionSvc)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	programs := api.Group("/programs")
	programs.GET("", catalogHandler.List)
	programs.POST("/match", catalogHandler.Match)
	programs.GET("/:id", catalogHandler.Get)

	// Plan and progression routes take an optional token so the services can
	// answer anonymous callers with a sign-in-required error instead of a 401.
	plans := api.Group("/plans", middleware.OptionalJWT(authSvc))
	plans.POST("/activate", middleware.Audit(userRepo, models.AuditActionActivatePlan, "plans"), planHandler.Activate)
	plans.GET("/current", planHandler.Current)

	progress := api.Group("/progress", middleware.OptionalJWT(authSvc))
	progress.GET("/next", progressHandler.Next)
	progress.POST("/complete-day", progressHandler.CompleteDay)
	progress.GET("/history", progressHandler.History)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	planQueue.Start(ctx)
	defer planQueue.Stop()

	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("export storage init failed", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

		exportJobRepo := repository.NewExportJobRepository(db)
		exportSvc := service.NewExportService(catalogSvc, workoutRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)

		exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
		exportQueue = jobs.NewQueue("exports", exportWorker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})

		exportJobSvc := service.NewExportJobService(exportJobRepo, catalogSvc, exportQueue, exportSvc, logr, service.ExportJobServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})

		exportHandler := handler.NewExportHandler(exportJobSvc)
		exports := api.Group("/exports")
		exports.GET("/download/:token", exportHandler.Download)
		exports.POST("", middleware.JWT(authSvc), middleware.Audit(userRepo, models.AuditActionCreateExport, "exports"), exportHandler.Create)
		exports.GET("/:id", middleware.JWT(authSvc), exportHandler.Status)

		exportQueue.Start(ctx)
		defer exportQueue.Stop()

		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)
	}

	ops := api.Group("/ops", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	ops.GET("/metrics", metricsHandler.Snapshot)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
