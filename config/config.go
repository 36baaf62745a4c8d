// Package config provides configuration management for the application.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultBodySizeLimit is the maximum request body size in bytes (10MB).
// Requests name local paths and URLs rather than carrying file bytes, so the
// limit only needs to cover large cache-creation payloads.
const DefaultBodySizeLimit int64 = 10 * 1024 * 1024

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	Gemini    GeminiConfig
	Inventory InventoryConfig
	Storage   StorageConfig
	Usage     UsageConfig
	Staging   StagingConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port the server listens on
	Port string
	// MasterKey protects the API. Empty disables authentication, which is
	// only acceptable on a loopback deployment.
	MasterKey string
	// MetricsEnabled exposes Prometheus metrics on /metrics
	MetricsEnabled bool
}

// GeminiConfig holds Google Gemini-specific configuration
type GeminiConfig struct {
	APIKey string
}

// InventoryConfig holds the listing snapshot store configuration
type InventoryConfig struct {
	// Backend is "local" or "redis"
	Backend string
	// Dir is the snapshot directory for the local backend
	Dir string
	// RedisURL is the connection URL for the redis backend
	RedisURL string
	// Freshness is how long a snapshot is served before refreshing
	Freshness time.Duration
}

// StorageConfig holds database backend configuration
type StorageConfig struct {
	// Type is "sqlite" or "postgresql"
	Type string
	// SQLitePath is the database file path for the sqlite backend
	SQLitePath string
	// PostgresURL is the connection string for the postgresql backend
	PostgresURL string
	// PostgresMaxConns is the maximum connection pool size
	PostgresMaxConns int
}

// UsageConfig holds usage tracking configuration
type UsageConfig struct {
	Enabled bool
	// BufferSize is the number of entries buffered before flushing
	BufferSize int
	// FlushInterval is how often buffered entries are flushed, in seconds
	FlushInterval int
	// RetentionDays is how long to keep usage data (0 = forever)
	RetentionDays int
}

// StagingConfig holds the staged-download configuration
type StagingConfig struct {
	// Dir is where URL-staged documents are written before upload
	Dir string
	// SkipExisting reuses an already-staged file instead of re-downloading
	SkipExisting bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	// Pretty switches from JSON to colorized console output
	Pretty bool
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	// Load .env file using Viper (optional, won't fail if not found)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if .env file doesn't exist

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("INVENTORY_CACHE", "local")
	viper.SetDefault("INVENTORY_DIR", ".cache/inventory")
	viper.SetDefault("INVENTORY_FRESHNESS", 60)
	viper.SetDefault("STORAGE_TYPE", "sqlite")
	viper.SetDefault("SQLITE_PATH", "data/gemcache.db")
	viper.SetDefault("POSTGRES_MAX_CONNS", 10)
	viper.SetDefault("USAGE_ENABLED", true)
	viper.SetDefault("USAGE_BUFFER_SIZE", 1000)
	viper.SetDefault("USAGE_FLUSH_INTERVAL", 5)
	viper.SetDefault("USAGE_RETENTION_DAYS", 90)
	viper.SetDefault("STAGING_DIR", ".cache/staging")
	viper.SetDefault("STAGING_SKIP_EXISTING", false)
	viper.SetDefault("LOG_PRETTY", false)

	// Enable automatic environment variable reading
	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           viper.GetString("PORT"),
			MasterKey:      viper.GetString("GEMCACHE_MASTER_KEY"),
			MetricsEnabled: viper.GetBool("METRICS_ENABLED"),
		},
		Gemini: GeminiConfig{
			APIKey: viper.GetString("GEMINI_API_KEY"),
		},
		Inventory: InventoryConfig{
			Backend:   viper.GetString("INVENTORY_CACHE"),
			Dir:       viper.GetString("INVENTORY_DIR"),
			RedisURL:  viper.GetString("REDIS_URL"),
			Freshness: time.Duration(viper.GetInt("INVENTORY_FRESHNESS")) * time.Second,
		},
		Storage: StorageConfig{
			Type:             viper.GetString("STORAGE_TYPE"),
			SQLitePath:       viper.GetString("SQLITE_PATH"),
			PostgresURL:      viper.GetString("POSTGRES_URL"),
			PostgresMaxConns: viper.GetInt("POSTGRES_MAX_CONNS"),
		},
		Usage: UsageConfig{
			Enabled:       viper.GetBool("USAGE_ENABLED"),
			BufferSize:    viper.GetInt("USAGE_BUFFER_SIZE"),
			FlushInterval: viper.GetInt("USAGE_FLUSH_INTERVAL"),
			RetentionDays: viper.GetInt("USAGE_RETENTION_DAYS"),
		},
		Staging: StagingConfig{
			Dir:          viper.GetString("STAGING_DIR"),
			SkipExisting: viper.GetBool("STAGING_SKIP_EXISTING"),
		},
		Log: LogConfig{
			Pretty: viper.GetBool("LOG_PRETTY"),
		},
	}

	return cfg, nil
}
