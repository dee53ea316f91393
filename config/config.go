package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Kroger    KrogerConfig
	Cache     CacheConfig
	Sync      SyncConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// KrogerConfig holds Kroger catalog API configuration
type KrogerConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	BaseURL      string `mapstructure:"base_url"`
	LocationID   string `mapstructure:"location_id"`
}

// CacheConfig holds product cache configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// SyncConfig holds sync orchestrator configuration
type SyncConfig struct {
	Secret             string        `mapstructure:"secret"`
	PageSize           int           `mapstructure:"page_size"`
	MinConfidence      float64       `mapstructure:"min_confidence"`
	StalenessThreshold time.Duration `mapstructure:"staleness_threshold"`
	RecipeDelay        time.Duration `mapstructure:"recipe_delay"`
	DatabasePath       string        `mapstructure:"database_path"`
	HistoryErrorCap    int           `mapstructure:"history_error_cap"`
}

// RateLimitConfig holds sync endpoint rate limiting configuration
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/homeplate/")

	// Environment variable settings
	v.SetEnvPrefix("HOMEPLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Kroger defaults. Secrets default to empty so AutomaticEnv can bind
	// them; validation rejects the empty values.
	v.SetDefault("kroger.base_url", "https://api.kroger.com")
	v.SetDefault("kroger.client_id", "")
	v.SetDefault("kroger.client_secret", "")
	v.SetDefault("kroger.location_id", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.max_entries", 10000)

	// Sync defaults
	v.SetDefault("sync.secret", "")
	v.SetDefault("sync.page_size", 50)
	v.SetDefault("sync.min_confidence", 0.5)
	v.SetDefault("sync.staleness_threshold", "168h") // 7 days
	v.SetDefault("sync.recipe_delay", "250ms")
	v.SetDefault("sync.database_path", "homeplate.db")
	v.SetDefault("sync.history_error_cap", 10)

	// Rate limit defaults: 5 sync triggers per hour per client
	v.SetDefault("ratelimit.requests", 5)
	v.SetDefault("ratelimit.window", "1h")

	// Log defaults
	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Sync.Secret == "" {
		return fmt.Errorf("sync secret is required (set HOMEPLATE_SYNC_SECRET)")
	}

	if config.Kroger.ClientID == "" || config.Kroger.ClientSecret == "" {
		return fmt.Errorf("Kroger credentials are required (set HOMEPLATE_KROGER_CLIENT_ID and HOMEPLATE_KROGER_CLIENT_SECRET)")
	}

	if config.Kroger.LocationID == "" {
		return fmt.Errorf("default Kroger location is required (set HOMEPLATE_KROGER_LOCATION_ID)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Sync.MinConfidence < 0 || config.Sync.MinConfidence > 1 {
		return fmt.Errorf("sync min_confidence must be in [0,1], got: %v", config.Sync.MinConfidence)
	}

	return nil
}
