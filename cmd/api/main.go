package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/proavijit/projectpulse-api/api/swagger"
	"github.com/proavijit/projectpulse-api/internal/handler"
	"github.com/proavijit/projectpulse-api/internal/middleware"
	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/repository"
	"github.com/proavijit/projectpulse-api/internal/service"
	"github.com/proavijit/projectpulse-api/internal/store"
	"github.com/proavijit/projectpulse-api/pkg/cache"
	"github.com/proavijit/projectpulse-api/pkg/config"
	"github.com/proavijit/projectpulse-api/pkg/database"
	"github.com/proavijit/projectpulse-api/pkg/logger"
	corsmiddleware "github.com/proavijit/projectpulse-api/pkg/middleware/cors"
	reqidmiddleware "github.com/proavijit/projectpulse-api/pkg/middleware/requestid"
)

// @title ProjectPulse API
// @version 1.0.0
// @description Role-based project health tracking
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

	readyChecks := []handler.ReadyCheck{}

	var backend store.Backend
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck

		pg := store.NewPostgresBackend(db, cfg.Store.Key)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			logr.Sugar().Fatalw("failed to prepare store schema", "error", err)
		}
		backend = pg
		readyChecks = append(readyChecks, handler.ReadyCheck{
			Name:  "postgres",
			Probe: func(ctx context.Context) error { return db.PingContext(ctx) },
		})
	case config.StoreBackendFile:
		fb, err := store.NewFileBackend(cfg.Store.Path, cfg.Store.Key)
		if err != nil {
			logr.Sugar().Fatalw("failed to init file backend", "error", err)
		}
		backend = fb
		readyChecks = append(readyChecks, handler.ReadyCheck{
			Name: "store",
			Probe: func(ctx context.Context) error {
				_, _, err := fb.Load(ctx)
				return err
			},
		})
	default:
		logr.Sugar().Fatalw("unknown store backend", "backend", cfg.Store.Backend)
	}

	st := store.New(store.Options{
		Backend: backend,
		Seed:    store.DefaultSeed,
		Logger:  logr,
	})

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck

		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, true)
		readyChecks = append(readyChecks, handler.ReadyCheck{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	userRepo := repository.NewUserRepository(st)
	projectRepo := repository.NewProjectRepository(st)
	checkInRepo := repository.NewCheckInRepository(st)
	feedbackRepo := repository.NewFeedbackRepository(st)
	riskRepo := repository.NewRiskRepository(st)
	activityRepo := repository.NewActivityRepository(st)

	validate := validator.New()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	healthService := service.NewHealthService(projectRepo, checkInRepo, feedbackRepo, riskRepo, activityRepo, logr, service.HealthOptions{
		SignalWindow:      cfg.Health.SignalWindow,
		StaleAfter:        cfg.Health.StaleAfter,
		MaxStalePenalty:   cfg.Health.MaxStalePenalty,
		HighRiskPenalty:   cfg.Health.HighRiskPenalty,
		MediumRiskPenalty: cfg.Health.MediumRiskPenalty,
		LowRiskPenalty:    cfg.Health.LowRiskPenalty,
	})
	projectService := service.NewProjectService(projectRepo, userRepo, activityRepo, cacheService, validate, logr)
	checkInService := service.NewCheckInService(checkInRepo, projectRepo, activityRepo, healthService, cacheService, validate, logr)
	feedbackService := service.NewFeedbackService(feedbackRepo, projectRepo, activityRepo, healthService, cacheService, validate, logr)
	riskService := service.NewRiskService(riskRepo, projectRepo, activityRepo, healthService, cacheService, validate, logr)
	activityService := service.NewActivityService(activityRepo, projectRepo, logr)
	dashboardService := service.NewDashboardService(projectRepo, checkInRepo, feedbackRepo, riskRepo, cacheService, logr, service.DashboardOptions{
		TopRiskLimit: cfg.Dashboard.TopRiskLimit,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	})
	reportService := service.NewReportService(projectRepo, riskRepo, logr)
	userService := service.NewUserService(userRepo, logr)

	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	checkInHandler := handler.NewCheckInHandler(checkInService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	riskHandler := handler.NewRiskHandler(riskService)
	activityHandler := handler.NewActivityHandler(activityService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	reportHandler := handler.NewReportHandler(reportService)
	userHandler := handler.NewUserHandler(userService)
	metricsHandler := handler.NewMetricsHandler(metricsService, readyChecks...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.GET("/users", middleware.RequireRoles(models.RoleAdmin), userHandler.List)

	projects := protected.Group("/projects")
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.Get)
	projects.POST("", middleware.RequireRoles(models.RoleAdmin), projectHandler.Create)
	projects.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), projectHandler.Update)
	projects.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), projectHandler.Delete)

	checkins := protected.Group("/checkins")
	checkins.POST("", middleware.RequireRoles(models.RoleEmployee), checkInHandler.Create)
	checkins.GET("/pending", middleware.RequireRoles(models.RoleEmployee), checkInHandler.Pending)
	checkins.GET("/project/:projectId", checkInHandler.ByProject)

	feedback := protected.Group("/feedback")
	feedback.POST("", middleware.RequireRoles(models.RoleClient), feedbackHandler.Create)
	feedback.GET("/pending", middleware.RequireRoles(models.RoleClient), feedbackHandler.Pending)
	feedback.GET("/project/:projectId", feedbackHandler.ByProject)

	risks := protected.Group("/risks")
	risks.GET("", middleware.RequireRoles(models.RoleAdmin), riskHandler.List)
	risks.GET("/high-priority", middleware.RequireRoles(models.RoleAdmin), riskHandler.HighPriority)
	risks.GET("/project/:projectId", riskHandler.ByProject)
	risks.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleEmployee), riskHandler.Create)
	risks.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleEmployee), riskHandler.Update)

	protected.GET("/activities/project/:projectId", activityHandler.ByProject)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/admin", middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Admin)
	dashboard.GET("/employee", middleware.RequireRoles(models.RoleEmployee), dashboardHandler.Employee)
	dashboard.GET("/client", middleware.RequireRoles(models.RoleClient), dashboardHandler.Client)

	if cfg.Reports.Enabled {
		protected.GET("/reports/projects", middleware.RequireRoles(models.RoleAdmin), reportHandler.Portfolio)
	}

	// Touch the store once so the seed is written before traffic arrives.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := st.All(ctx, store.Users); err != nil {
		logr.Sugar().Fatalw("failed to initialise store", "error", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Backend)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
