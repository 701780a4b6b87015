package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	leasingapp "github.com/propman/backend/internal/application/leasing"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/infrastructure/buildium"
	"github.com/propman/backend/internal/infrastructure/cache"
	"github.com/propman/backend/internal/infrastructure/config"
	"github.com/propman/backend/internal/infrastructure/logger"
	"github.com/propman/backend/internal/infrastructure/persistence"
	"github.com/propman/backend/internal/infrastructure/storage"
	"github.com/propman/backend/internal/interfaces/http/handler"
	"github.com/propman/backend/internal/interfaces/http/middleware"
	"github.com/propman/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Propman Backend API
//	@version		1.0
//	@description	Lease origination backend for property management

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Propman Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	glAccountRepo := persistence.NewGormGLAccountRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)

	// Submission guard store (Redis when enabled, in-memory otherwise)
	guardFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	guardStore, err := guardFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create submission guard store", zap.Error(err))
	}
	defer func() {
		if err := guardStore.Close(); err != nil {
			log.Error("Error closing submission guard store", zap.Error(err))
		}
	}()

	// Document archive (optional)
	var docStorage leasing.DocumentStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3DocumentStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize document storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure document bucket", zap.Error(err))
		}
		docStorage = s3Storage
		log.Info("Document archive enabled", zap.String("bucket", s3Storage.GetBucket()))
	} else {
		log.Info("Document archive disabled; lease documents are only sent to the platform")
	}

	// Platform client
	platform, err := buildium.NewClient(&cfg.Buildium, buildium.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize platform client", zap.Error(err))
	}

	// Initialize application services
	sessionRegistry := leasingapp.NewSessionRegistry(cfg.Session.TTL)
	originationService := leasingapp.NewOriginationService(
		sessionRegistry,
		platform,
		glAccountRepo,
		propertyRepo,
		tenantRepo,
		leaseRepo,
		docStorage,
		guardStore,
		log,
	)

	// Initialize HTTP handlers
	originationHandler := handler.NewOriginationHandler(originationService)
	referenceHandler := handler.NewReferenceHandler(originationService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(originationHandler).
		Register(referenceHandler).
		Register(systemHandler)
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
