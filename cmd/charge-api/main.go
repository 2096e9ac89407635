package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lyceo/charge-api/api/swagger"
	"github.com/lyceo/charge-api/internal/handler"
	"github.com/lyceo/charge-api/internal/middleware"
	"github.com/lyceo/charge-api/internal/repository"
	"github.com/lyceo/charge-api/internal/service"
	"github.com/lyceo/charge-api/pkg/cache"
	"github.com/lyceo/charge-api/pkg/config"
	"github.com/lyceo/charge-api/pkg/database"
	"github.com/lyceo/charge-api/pkg/jobs"
	"github.com/lyceo/charge-api/pkg/logger"
	corsmiddleware "github.com/lyceo/charge-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lyceo/charge-api/pkg/middleware/requestid"
	"github.com/lyceo/charge-api/pkg/storage"
)

// @title Charge Scolaire API
// @version 1.0.0
// @description Workload aggregation and DST schedule-conflict engine
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	var summaries *cache.SummaryCache
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, summaries will be recomputed per request", "error", err)
		} else {
			defer client.Close()
			summaries = cache.NewSummaryCache(client, cfg.Cache.TTL)
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	assignmentRepo := repository.NewAssignmentRepository(db)
	dstRepo := repository.NewDSTRepository(db)
	accountRepo := repository.NewTeacherAccountRepository(db)

	workloadSvc := service.NewWorkloadService(cfg.Workload, logr)
	scheduleSvc := service.NewDSTScheduleService(cfg.DST, workloadSvc, logr)
	parserSvc := service.NewDSTParserService(logr, time.Now)
	authSvc := service.NewAuthService(accountRepo, validate, logr, cfg.JWT)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, workloadSvc, summaries, metrics, validate, logr)

	dstSvc := service.NewDSTService(dstRepo, scheduleSvc, parserSvc, nil, summaries, metrics, validate, logr)
	if cfg.Export.Enabled {
		store, err := storage.NewLocalStorage(cfg.Export.StorageDir)
		if err != nil {
			logr.Sugar().Warnw("export archive unavailable", "error", err)
		} else {
			dstSvc.AttachArchive(store)
		}
	}
	if cfg.Audit.Enabled {
		auditQueue := jobs.NewQueue("schedule-audit", dstSvc.RunAuditJob, jobs.QueueConfig{
			Workers:    cfg.Audit.Workers,
			MaxRetries: cfg.Audit.Retries,
			Logger:     logr,
		})
		dstSvc.AttachQueue(auditQueue)
		auditQueue.Start(context.Background())
		defer auditQueue.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	workloadHandler := handler.NewWorkloadHandler(assignmentSvc)
	dstHandler := handler.NewDSTHandler(dstSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	api.GET("/assignments", workloadHandler.ListAssignments)
	api.GET("/workload/daily", workloadHandler.Daily)
	api.GET("/workload/weekly", workloadHandler.Weekly)
	api.GET("/workload/stats", workloadHandler.Stats)
	api.POST("/workload/conflicts", workloadHandler.CheckConflicts)

	api.GET("/dsts", dstHandler.List)
	api.GET("/dsts/audit", dstHandler.Audit)
	api.GET("/dsts/suggestions", dstHandler.Suggestions)
	api.GET("/dsts/export", dstHandler.Export)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.POST("/assignments", workloadHandler.CreateAssignment)
	protected.PATCH("/assignments/:id/done", workloadHandler.SetDone)
	protected.POST("/dsts", dstHandler.Create)
	protected.POST("/dsts/import", dstHandler.Import)
	protected.DELETE("/dsts/:id", dstHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}
