package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alanlujan91/DemARK/internal/config"
	"github.com/alanlujan91/DemARK/internal/database"
	"github.com/alanlujan91/DemARK/internal/eventbus"
	"github.com/alanlujan91/DemARK/internal/fred"
	"github.com/alanlujan91/DemARK/internal/handlers"
	"github.com/alanlujan91/DemARK/internal/metrics"
	"github.com/alanlujan91/DemARK/internal/middleware"
	"github.com/alanlujan91/DemARK/internal/orchestration"
	"github.com/alanlujan91/DemARK/internal/telemetry"
	"github.com/alanlujan91/DemARK/internal/theory"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	_ "github.com/alanlujan91/DemARK/docs" // Swagger docs
)

// @title DemARK API
// @version 0.1.0
// @description Consumption theory lab: perfect-foresight consumer solutions and macro regressions against FRED data.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	ctx := context.Background()

	// Initialize logger with stdout sync
	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("DemARK API starting...",
		zap.String("version", "0.1.0"),
		zap.String("environment", os.Getenv("GO_ENV")),
	)

	cfg := config.Load()

	logger.Info("Initializing telemetry...")
	shutdownTelemetry, err := telemetry.InitTracer(ctx, "demark-api", cfg.OTLPEndpoint)
	if err != nil {
		// Log but don't fail, as collector might be down
		logger.Error("failed to initialize telemetry", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTelemetry(ctx); err != nil {
				logger.Error("failed to shutdown telemetry", zap.Error(err))
			}
		}()
	}

	logger.Info("Initializing NATS...")
	_, err = eventbus.InitNATSClient(cfg.NATSURL)
	if err != nil {
		logger.Error("failed to connect to NATS", zap.Error(err))
	} else {
		defer eventbus.CloseNATSClient()
		logger.Info("connected to NATS")

		if _, err := eventbus.NewJetStreamStore(); err != nil {
			logger.Error("failed to init JetStream store", zap.Error(err))
		} else {
			logger.Info("JetStream event store initialized")
		}
	}

	var temporalClient client.Client
	if cfg.TemporalAddress != "" {
		logger.Info("Initializing Temporal...")
		temporalClient, err = orchestration.InitTemporalClient(cfg.TemporalAddress)
		if err != nil {
			logger.Error("failed to connect to temporal", zap.Error(err))
			// Analyses fall back to in-process execution
			temporalClient = nil
		} else {
			defer orchestration.CloseTemporalClient()
			logger.Info("connected to temporal")
		}
	}

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	fredClient := fred.NewClient(cfg.FREDBaseURL, cfg.FREDAPIKey, logger)
	theoryService := theory.NewService(db, rdb, fredClient, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus metrics
	router.GET("/metrics", metrics.Handler())

	// Health check handlers
	healthHandler := handlers.NewHealthHandler(db, rdb, fredClient)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/deep", healthHandler.DeepHealth)

	logger.Info("Router initialized, setting up handlers...")

	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret, logger)
	consumerHandler := handlers.NewConsumerHandler(logger)
	seriesHandler := handlers.NewSeriesHandler(theoryService, logger)
	analysisHandler := handlers.NewAnalysisHandler(theoryService, temporalClient, logger)
	chartsHandler := handlers.NewChartsHandler(theoryService, logger)
	rbac := middleware.NewRBACMiddleware(logger)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes with default rate limiting
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		protected.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimiter)) // 100 req/min
		{
			// Consumer model routes
			consumer := protected.Group("/consumer")
			{
				consumer.POST("/solve", rbac.RequirePermission(middleware.PermSolveModel), consumerHandler.Solve)
			}

			// Series routes - stricter rate limit + circuit breaker around FRED
			series := protected.Group("/series")
			series.Use(middleware.RateLimitMiddleware(middleware.StrictRateLimiter)) // 20 req/min
			series.Use(middleware.CircuitBreakerMiddleware(middleware.FREDCircuitBreaker))
			{
				series.GET("/:code", rbac.RequirePermission(middleware.PermReadSeries), seriesHandler.Get)
			}

			// Analysis routes
			analysis := protected.Group("/analysis")
			{
				analysis.POST("", rbac.RequirePermission(middleware.PermRunAnalysis), analysisHandler.Run)
				analysis.GET("/:id", rbac.RequirePermission(middleware.PermReadSeries), analysisHandler.Get)
			}

			// Chart routes
			chartGroup := protected.Group("/charts")
			{
				chartGroup.GET("/consumption", chartsHandler.ConsumptionFunction)
				chartGroup.GET("/analysis/:id", chartsHandler.AnalysisScatter)
			}

			// User routes
			user := protected.Group("/user")
			{
				user.GET("/me", authHandler.GetCurrentUser)
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}
