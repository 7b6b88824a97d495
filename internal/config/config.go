package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the catalog sync service
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Redis (mapping cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Parts web service
	PartsWSBaseURL   string
	PartsWSAPIKey    string
	PartsWSRateLimit int // requests per second

	// Run settings
	Strategy   models.MappingStrategy
	Algorithm  models.SyncAlgorithm
	RunTimeout time.Duration

	// Chunk sizes
	MappingInsertBatchSize int // mapping table bulk inserts
	LinkInsertBatchSize    int // device link / relationship inserts
	LookupChunkSize        int // external-id chunks for remote lookups
	EnableBatchSize        int // v2 differential product-id chunks

	// Identifier sources
	EANSource         repository.IdentifierSource
	OEMSource         repository.IdentifierSource
	PCDSource         repository.IdentifierSource
	OrderNumberSource repository.IdentifierSource

	// Relationship import defaults (global fallback when no category
	// override applies)
	ImportDefaults map[models.RelationshipCategory]bool

	// Cross-selling
	CrossSellingCategories []models.RelationshipCategory
	CrossSellingLimit      int
}

// Load loads configuration from environment variables, honoring a local .env
// file in development.
func Load() *Config {
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" {
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbUser := getEnv("DB_USER", "postgres")
		dbPassword := getEnv("DB_PASSWORD", "postgres")
		dbName := getEnv("DB_NAME", "catalog_sync")
		dbSSLMode := getEnv("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)
	}

	config := &Config{
		Port:        getEnv("PORT", "8097"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: databaseURL,

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		PartsWSBaseURL:   getEnv("PARTS_WS_BASE_URL", ""),
		PartsWSAPIKey:    getEnv("PARTS_WS_API_KEY", ""),
		PartsWSRateLimit: getEnvAsInt("PARTS_WS_RATE_LIMIT", 10),

		Strategy:   models.MappingStrategy(getEnv("MAPPING_STRATEGY", string(models.StrategyEanOem))),
		Algorithm:  models.SyncAlgorithm(getEnv("SYNC_ALGORITHM", string(models.AlgorithmDifferential))),
		RunTimeout: getEnvAsDuration("RUN_TIMEOUT", 2*time.Hour),

		MappingInsertBatchSize: getEnvAsInt("MAPPING_INSERT_BATCH_SIZE", 500),
		LinkInsertBatchSize:    getEnvAsInt("LINK_INSERT_BATCH_SIZE", 30),
		LookupChunkSize:        getEnvAsInt("LOOKUP_CHUNK_SIZE", 100),
		EnableBatchSize:        getEnvAsInt("ENABLE_BATCH_SIZE", 50),

		EANSource:         identifierSource("EAN_SOURCE", "column", "ean"),
		OEMSource:         identifierSource("OEM_SOURCE", "column", "manufacturer_number"),
		PCDSource:         identifierSource("PCD_SOURCE", "custom_field", "catalog_sync_pcd"),
		OrderNumberSource: identifierSource("ORDER_NUMBER_SOURCE", "column", "product_number"),

		ImportDefaults:         importDefaults(),
		CrossSellingCategories: crossSellingCategories(),
		CrossSellingLimit:      getEnvAsInt("CROSS_SELLING_LIMIT", 24),
	}

	if config.PartsWSBaseURL == "" {
		log.Println("Warning: PARTS_WS_BASE_URL not set, remote catalog calls will fail")
	}

	return config
}

// identifierSource reads an identifier source from <PREFIX>_KIND /
// <PREFIX>_NAME with defaults.
func identifierSource(prefix, defaultKind, defaultName string) repository.IdentifierSource {
	return repository.IdentifierSource{
		Kind: repository.IdentifierSourceKind(getEnv(prefix+"_KIND", defaultKind)),
		Name: getEnv(prefix+"_NAME", defaultName),
	}
}

// importDefaults reads the per-category global import switches.
func importDefaults() map[models.RelationshipCategory]bool {
	defaults := make(map[models.RelationshipCategory]bool, len(models.AllRelationshipCategories))
	for _, category := range models.AllRelationshipCategories {
		key := "IMPORT_" + strings.ToUpper(string(category))
		defaults[category] = getEnvAsBool(key, true)
	}
	return defaults
}

// crossSellingCategories reads the comma-separated category list mirrored
// into storefront cross-selling groups.
func crossSellingCategories() []models.RelationshipCategory {
	raw := getEnv("CROSS_SELLING_CATEGORIES", "similar,alternate,related,bundled")
	parts := strings.Split(raw, ",")
	categories := make([]models.RelationshipCategory, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			categories = append(categories, models.RelationshipCategory(p))
		}
	}
	return categories
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
