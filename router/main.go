package router

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/finassist/finchat-api/config"
	"github.com/finassist/finchat-api/database"
	admin_handlers "github.com/finassist/finchat-api/handlers/admin"
	auth_handlers "github.com/finassist/finchat-api/handlers/auth"
	chat_handlers "github.com/finassist/finchat-api/handlers/chat"
	document_handlers "github.com/finassist/finchat-api/handlers/document"
	health_handlers "github.com/finassist/finchat-api/handlers/health"
	"github.com/finassist/finchat-api/services"
	"github.com/finassist/finchat-api/services/llm"
	"github.com/finassist/finchat-api/services/objectstore"
	"github.com/finassist/finchat-api/utils/auth"
	"github.com/finassist/finchat-api/utils/cache"
	"github.com/finassist/finchat-api/utils/middleware"
)

// Runtime holds the long-lived pieces built during route setup that the
// application shell needs after routing: background job inputs and handles
// that must be closed on shutdown.
type Runtime struct {
	Sessions *services.SessionManager
	Monitor  *services.SystemMonitorService
	Config   *services.ConfigManager

	redis   *cache.RedisCache
	gemini  *llm.GeminiClient
	metrics *middleware.MetricsRecorder
}

// Close drains buffered metric samples and releases external connections
func (r *Runtime) Close() {
	if r.metrics != nil {
		r.metrics.Close()
	}
	if r.gemini != nil {
		r.gemini.Close()
	}
	if r.redis != nil {
		r.redis.Close()
	}
}

// SetupRoutes builds every service and handler and registers all routes
func SetupRoutes(app *fiber.App, store *database.GORMStore, getEnv *config.EnvironmentVariable) (*Runtime, error) {
	db := store.DB()

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "finchat-api"
	}
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: getEnv.JWT_SECRET,
		Issuer: jwtIssuer,
	})

	// Redis is optional. Without it the empty-index hint falls back to an
	// in-process cache.
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		rc, err := cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Falling back to in-memory caches.", err)
		} else {
			redisCache = rc
		}
	}

	var hints cache.HintCache
	if redisCache != nil {
		hints = cache.NewRedisHintCache(redisCache)
	} else {
		hints = cache.NewMemoryHintCache()
	}

	gemini, err := llm.NewGeminiClient(context.Background(), getEnv.GEMINI_API_KEY)
	if err != nil {
		return nil, err
	}

	// Spaces archival is optional; uploads are only kept in the index when
	// it is not configured.
	var spaces *objectstore.SpacesClient
	if getEnv.SpacesConfigured() {
		sc, err := objectstore.NewSpacesClient(objectstore.SpacesConfig{
			AccessKey: getEnv.DO_SPACES_KEY,
			SecretKey: getEnv.DO_SPACES_SECRET,
			Bucket:    getEnv.DO_SPACES_BUCKET,
			Region:    getEnv.DO_SPACES_REGION,
			Endpoint:  getEnv.DO_SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize Spaces client: %v. Upload archival is disabled.", err)
		} else {
			spaces = sc
		}
	}

	// Services
	activityLogger := services.NewActivityLogger(db)

	configManager, err := services.NewConfigManager(db, activityLogger)
	if err != nil {
		return nil, err
	}

	vectorStore := services.NewVectorStore(db, hints)
	sessionManager := services.NewSessionManager(db)

	documentProcessor := services.NewDocumentProcessor(db, configManager, gemini, vectorStore, spaces)
	documentService := services.NewDocumentService(db, vectorStore, spaces)
	ragEngine := services.NewRAGEngine(configManager, sessionManager, vectorStore, gemini, gemini)

	authService := services.NewAuthService(db, jwtManager, configManager)
	adminUserService := services.NewAdminUserService(db, activityLogger)
	adminDocumentService := services.NewAdminDocumentService(db, documentService, activityLogger)
	monitorService := services.NewSystemMonitorService(db, vectorStore, redisCache)
	analyticsService := services.NewAnalyticsService(db)

	// Middleware & handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(db, authService, getEnv)
	chatHandler := chat_handlers.NewChatHandler(ragEngine)
	documentHandler := document_handlers.NewDocumentHandler(documentProcessor, documentService)
	healthHandler := health_handlers.NewHealthHandler(monitorService)
	adminHandler := admin_handlers.NewAdminHandler(
		adminUserService,
		adminDocumentService,
		monitorService,
		analyticsService,
		configManager,
		activityLogger,
	)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Request metrics feed the admin usage and log endpoints
	metricsRecorder := middleware.NewMetricsRecorder(db)
	app.Use(metricsRecorder.Handler())

	// API v1 group
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", healthHandler.Check)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Document routes (authenticated so uploads carry uploader attribution)
	documents := api.Group("/documents", authMiddleware.Required())
	documents.Post("/upload", documentHandler.Upload)
	documents.Get("/", documentHandler.List)
	documents.Get("/stats", documentHandler.Stats)
	documents.Delete("/:id", documentHandler.Delete)

	// Chat route
	api.Post("/chat", authMiddleware.Required(), chatHandler.Query)

	// Admin control plane
	admin := api.Group("/admin", authMiddleware.RequireAdmin())

	users := admin.Group("/users")
	users.Get("/", adminHandler.ListUsers)
	users.Get("/:id", adminHandler.GetUser)
	users.Put("/:id/status", adminHandler.UpdateUserStatus)
	users.Post("/:id/reset-password", adminHandler.ForceResetPassword)
	users.Post("/:id/promote", adminHandler.PromoteUser)
	users.Get("/:id/activity", adminHandler.UserActivity)

	adminDocs := admin.Group("/documents")
	adminDocs.Get("/", adminHandler.ListDocuments)
	adminDocs.Get("/stats", adminHandler.DocumentStats)
	adminDocs.Delete("/:id", adminHandler.DeleteDocument)

	system := admin.Group("/system")
	system.Get("/health", adminHandler.SystemHealth)
	system.Get("/metrics", adminHandler.SystemMetrics)
	system.Get("/storage", adminHandler.SystemStorage)
	system.Get("/api-usage", adminHandler.APIUsage)
	system.Get("/logs", adminHandler.SystemLogs)

	admin.Get("/activity", adminHandler.ActivityLogs)

	analytics := admin.Group("/analytics")
	analytics.Get("/users", adminHandler.UserAnalytics)
	analytics.Get("/sessions", adminHandler.SessionAnalytics)
	analytics.Get("/documents", adminHandler.DocumentAnalytics)

	configGroup := admin.Group("/config")
	configGroup.Get("/", adminHandler.ListConfig)
	configGroup.Get("/:name", adminHandler.GetConfig)
	configGroup.Put("/:name", adminHandler.UpdateConfig)
	configGroup.Post("/:name/reset", adminHandler.ResetConfig)

	return &Runtime{
		Sessions: sessionManager,
		Monitor:  monitorService,
		Config:   configManager,
		redis:    redisCache,
		gemini:   gemini,
		metrics:  metricsRecorder,
	}, nil
}
