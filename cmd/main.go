package main

import (
	"os"
	"strings"

	"catalog-sync-service/internal/clients/partsws"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/database"
	"catalog-sync-service/internal/handlers"
	"catalog-sync-service/internal/middleware"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"catalog-sync-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.ProductMapping{},
		&models.Device{},
		&models.DeviceBrand{},
		&models.DeviceSeries{},
		&models.DeviceType{},
		&models.DeviceProductLink{},
		&models.ProductRelationship{},
		&models.CrossSellingGroup{},
		&models.CrossSellingAssignment{},
		&models.CategoryImportSetting{},
		&models.SyncRun{},
		&models.SyncRunLog{},
	); err != nil {
		logrus.WithError(err).Warn("Auto-migration failed")
	}
	logrus.Info("Database models migrated")

	// Redis client for the mapping cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Remote catalog client
	client := partsws.NewClient(cfg.PartsWSBaseURL, cfg.PartsWSAPIKey, cfg.PartsWSRateLimit)

	// Initialize repositories
	mappingRepo := repository.NewMappingRepository(db)
	cacheRepo := repository.NewMappingCacheRepository(rdb)
	productRepo := repository.NewProductRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)
	runRepo := repository.NewRunRepository(db)

	// Initialize services
	resolver := services.NewImportSettingsResolver(cfg, productRepo, settingsRepo)
	deviceSync := services.NewDeviceSyncService(cfg, mappingRepo, deviceRepo, client)
	relationshipSync := services.NewRelationshipSyncService(cfg, mappingRepo, relationshipRepo, resolver, client)
	syncService := services.NewSyncService(cfg, runRepo, mappingRepo, productRepo, cacheRepo, deviceSync, relationshipSync, client)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	syncHandler := handlers.NewSyncHandler(syncService)

	// Setup router
	router := setupRouter(cfg, db, healthHandler, syncHandler)

	// Start server
	logrus.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
	}).Info("Catalog Sync Service starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	syncHandler *handlers.SyncHandler,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Security headers middleware
	router.Use(middleware.SecurityHeaders())

	// CORS middleware
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
		}
	}
	router.Use(middleware.CORS(origins))

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		// Sync runs
		sync := v1.Group("/sync")
		{
			sync.POST("/runs", syncHandler.StartRun)
			sync.GET("/runs", syncHandler.ListRuns)
			sync.GET("/runs/:id", syncHandler.GetRun)
			sync.GET("/runs/:id/logs", syncHandler.GetRunLogs)
		}

		// Mapping table
		mappings := v1.Group("/mappings")
		{
			mappings.GET("/stats", syncHandler.GetMappingStats)
			mappings.POST("/cache/purge", syncHandler.PurgeMappingCache)
		}
	}

	return router
}
