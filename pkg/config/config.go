package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all settings read from the environment.
type Config struct {
	Port        string `mapstructure:"PORT"`
	GinMode     string `mapstructure:"GIN_MODE"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DataPath    string `mapstructure:"DATA_PATH"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	APIMasterSecret string `mapstructure:"API_MASTER_SECRET"`
	AdminUsername   string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword   string `mapstructure:"ADMIN_PASSWORD"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Empty RedisAddr disables the schedule cache.
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int           `mapstructure:"REDIS_DB"`
	ScheduleCacheTTL time.Duration `mapstructure:"SCHEDULE_CACHE_TTL"`

	DefaultGranularity int `mapstructure:"DEFAULT_GRANULARITY"`
	BatchConcurrency   int `mapstructure:"BATCH_CONCURRENCY"`
	DefaultRateLimit   int `mapstructure:"DEFAULT_RATE_LIMIT"`
}

var keys = []string{
	"PORT", "GIN_MODE", "DATABASE_URL", "DATA_PATH",
	"JWT_SECRET", "API_MASTER_SECRET", "ADMIN_USERNAME", "ADMIN_PASSWORD",
	"LOG_LEVEL", "LOG_FORMAT",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SCHEDULE_CACHE_TTL",
	"DEFAULT_GRANULARITY", "BATCH_CONCURRENCY", "DEFAULT_RATE_LIMIT",
}

// LoadEnvFiles loads the first .env found in the working directory or its parents.
func LoadEnvFiles(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env", "../.env", "../../.env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("DATA_PATH", "agenda.db")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SCHEDULE_CACHE_TTL", 5*time.Minute)
	v.SetDefault("DEFAULT_GRANULARITY", 15)
	v.SetDefault("BATCH_CONCURRENCY", 8)
	v.SetDefault("DEFAULT_RATE_LIMIT", 10000)

	// AutomaticEnv only resolves keys viper already knows about.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DefaultGranularity <= 0 {
		return nil, fmt.Errorf("DEFAULT_GRANULARITY must be positive, got %d", cfg.DefaultGranularity)
	}
	return &cfg, nil
}
