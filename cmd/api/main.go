package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "removaltracker/api/swagger" // swagger docs
	"removaltracker/internal/cache"
	"removaltracker/internal/config"
	"removaltracker/internal/database"
	"removaltracker/internal/handler"
	"removaltracker/internal/middleware"
	"removaltracker/internal/repository"
	"removaltracker/internal/service"
	"removaltracker/internal/websocket"
	"removaltracker/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Asset Removal API
// @version         1.0
// @description     Approval workflow for moving company assets off-site.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := logrus.StandardLogger()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("No configs/.env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.IsDevelopment() {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	if err := workflow.Validate(); err != nil {
		logger.Fatalf("Workflow definition is inconsistent: %v", err)
	}

	db, err := database.NewConnection(cfg.DSN(), cfg.IsDevelopment())
	if err != nil {
		logger.Fatalf("Database connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatalf("Database migration failed: %v", err)
	}
	logger.Info("Connected to PostgreSQL successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	refRepo := repository.NewReferenceRepository(db)
	removalRepo := repository.NewRemovalRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)

	actorCache := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ActorCacheTTL)
	defer actorCache.Close()

	seedCtx, cancelSeed := context.WithTimeout(ctx, 30*time.Second)
	err = service.NewSeedService(roleRepo, refRepo, userRepo, txManager).Seed(seedCtx, service.SeedOptions{
		DemoUsers:    cfg.SeedDemoUsers,
		DemoPassword: cfg.DemoUserPassword,
	})
	if err != nil {
		cancelSeed()
		logger.Fatalf("Seeding failed: %v", err)
	}
	// Role grants may have changed since the snapshots were taken.
	if err := actorCache.InvalidateAll(seedCtx); err != nil {
		logger.Warnf("Failed to invalidate cached actors: %v", err)
	}
	cancelSeed()

	wsHub := websocket.NewHub(cfg.CORSOrigins)
	go wsHub.Run(ctx)

	secret := []byte(cfg.JWTSecret)
	userService := service.NewUserService(userRepo, roleRepo, refRepo, txManager, auditRepo, actorCache, service.TokenConfig{
		Secret: secret,
		TTL:    cfg.JWTTTL,
	})
	removalService := service.NewRemovalService(removalRepo, refRepo, txManager, auditRepo, wsHub, clock.WallClock)
	reportService := service.NewReportService(removalRepo, nil, auditRepo)
	auditService := service.NewAuditService(auditRepo)
	roleService := service.NewRoleService(roleRepo)
	statisticsService := service.NewStatisticsService(statisticsRepo, clock.WallClock)

	retry := handler.ConflictRetry{
		Attempts: cfg.ConflictRetryAttempts,
		Delay:    cfg.ConflictRetryDelay,
		Clock:    clock.WallClock,
	}
	userHandler := handler.NewUserHandler(userService, handler.CookieConfig{Secure: !cfg.IsDevelopment()})
	removalHandler := handler.NewRemovalHandler(removalService, retry)
	reportHandler := handler.NewReportHandler(reportService)
	workflowHandler := handler.NewWorkflowHandler(removalService)
	referenceHandler := handler.NewReferenceHandler(refRepo)
	auditHandler := handler.NewAuditHandler(auditService)
	roleHandler := handler.NewRoleHandler(roleService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/ws", func(c *gin.Context) {
		wsHub.ServeWs(c, secret, userService)
	})

	authenticated := []gin.HandlerFunc{middleware.RequireAuth(secret), middleware.LoadActor(userService)}
	userHandler.RegisterRoutes(router.Group(""), router.Group("", authenticated...))

	api := router.Group("/api", authenticated...)
	removalHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	workflowHandler.RegisterRoutes(api)
	referenceHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)
	roleHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}
	logger.Info("Server exited")
}
