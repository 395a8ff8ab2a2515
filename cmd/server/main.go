package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apprequisition "github.com/buildflow/backend/internal/application/requisition"
	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/buildflow/backend/internal/infrastructure/auth"
	"github.com/buildflow/backend/internal/infrastructure/cache"
	"github.com/buildflow/backend/internal/infrastructure/config"
	"github.com/buildflow/backend/internal/infrastructure/logger"
	"github.com/buildflow/backend/internal/infrastructure/persistence"
	"github.com/buildflow/backend/internal/infrastructure/storage"
	"github.com/buildflow/backend/internal/interfaces/http/handler"
	"github.com/buildflow/backend/internal/interfaces/http/middleware"
	"github.com/buildflow/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting BuildFlow Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to run schema migration", zap.Error(err))
	}

	// Warning-confirmation token store. Production requires Redis so that
	// confirmation tokens survive restarts and are shared across replicas.
	var tokenStore apprequisition.ConfirmationTokenStore
	redisStore, err := cache.NewRedisTokenStore(cache.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Warn("Redis unavailable, using in-memory token store", zap.Error(err))
		tokenStore = apprequisition.NewInMemoryTokenStore()
	} else {
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		tokenStore = redisStore
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	// Document object storage. Without credentials outside production the
	// stub keeps the document endpoints functional for local development.
	var objectStorage apprequisition.ObjectStorageService
	if cfg.Storage.AccessKeyID == "" && cfg.App.Env != "production" {
		log.Warn("Object storage credentials missing, using stub storage")
		objectStorage = storage.NewStubObjectStorage()
	} else {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Failed to ensure storage bucket", zap.Error(err),
				zap.String("bucket", cfg.Storage.Bucket))
		}
		cancel()
		objectStorage = s3Storage
		log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Initialize repositories
	requisitionRepo := persistence.NewGormRequisitionRepository(db.DB)

	// Event bus for workflow domain events. Handlers receive events after
	// the aggregate has been persisted.
	eventBus := shared.NewInMemoryEventBus()
	eventBus.Subscribe(shared.EventHandlerFunc(func(ctx context.Context, event shared.DomainEvent) error {
		logger.FromContext(ctx).Info("Domain event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
		)
		return nil
	}))

	// Initialize application services
	workflowService := apprequisition.NewWorkflowService(requisitionRepo, tokenStore)
	workflowService.SetEventPublisher(eventBus)
	workflowService.SetConfig(apprequisition.WorkflowServiceConfig{
		WarningTokenTTL: cfg.Workflow.WarningTokenTTL,
		AutosaveDelay:   cfg.Workflow.AutosaveDelay,
	})

	documentService := apprequisition.NewDocumentService(requisitionRepo, objectStorage)
	documentConfig := apprequisition.DefaultDocumentServiceConfig()
	if cfg.Workflow.UploadURLExpiry > 0 {
		documentConfig.UploadURLExpiry = cfg.Workflow.UploadURLExpiry
	}
	if cfg.Workflow.MaxUploadBytes > 0 {
		documentConfig.MaxSizeBytes = cfg.Workflow.MaxUploadBytes
	}
	documentService.SetConfig(documentConfig)

	// Actor authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	requisitionHandler := handler.NewRequisitionHandler(workflowService)
	documentHandler := handler.NewDocumentHandler(documentService)
	systemHandler := handler.NewSystemHandler()
	systemHandler.AddCheck("database", db.Ping)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging, CORS,
	// then actor authentication for everything except health endpoints.
	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.ActorAuthWithConfig(middleware.ActorAuthConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/api/v1/system/info",
		},
	}))

	// Health endpoints live outside API versioning
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(requisitionHandler).
		Register(documentHandler).
		Register(systemHandler).
		Setup()

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
