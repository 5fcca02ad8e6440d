package main

import (
	"fieldpro-service/internal/handler"
	mid "fieldpro-service/internal/middleware"
	"fieldpro-service/internal/repository"
	"fieldpro-service/pkg/config"
	"fieldpro-service/pkg/database"
	"fieldpro-service/pkg/logger"
	"fieldpro-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env when present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting fieldpro-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	repo := repository.NewRepository(database.GetDB())
	jobHandler := handler.NewJobHandler(repo.Job, appConfig.Pagination)
	technicianHandler := handler.NewTechnicianHandler(repo.Technician)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Technician API routes - tenant middleware resolves X-Tenant for every call
	technicianAPI := e.Group("/technicians", mid.TenantMiddleware)
	technicianAPI.GET("", technicianHandler.ListTechnicians)
	technicianAPI.POST("", technicianHandler.CreateTechnician)

	// Job API routes
	jobAPI := e.Group("/jobs", mid.TenantMiddleware)
	jobAPI.GET("", jobHandler.ListJobs)
	jobAPI.GET("/:id", jobHandler.GetJob)
	jobAPI.POST("", jobHandler.CreateJob)
	jobAPI.PUT("/:id", jobHandler.UpdateJobStatus)
	jobAPI.PATCH("/:id", jobHandler.PatchJob)
	jobAPI.DELETE("/:id", jobHandler.DeleteJob)
	jobAPI.DELETE("/:id/hard", jobHandler.HardDeleteJob)
	jobAPI.POST("/bulk-delete", jobHandler.BulkDeleteJobs)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
