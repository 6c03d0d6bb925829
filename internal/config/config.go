// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port                          string  `mapstructure:"PORT"`
	Env                           string  `mapstructure:"APP_ENV"`
	DBDriver                      string  `mapstructure:"DB_DRIVER"`
	DatabaseURL                   string  `mapstructure:"DATABASE_URL"`
	DBHost                        string  `mapstructure:"DB_HOST"`
	DBPort                        string  `mapstructure:"DB_PORT"`
	DBUser                        string  `mapstructure:"DB_USER"`
	DBPassword                    string  `mapstructure:"DB_PASSWORD"`
	DBName                        string  `mapstructure:"DB_NAME"`
	DBSSLMode                     string  `mapstructure:"DB_SSLMODE"`
	DBReadHost                    string  `mapstructure:"DB_READ_HOST"`
	DBReadPort                    string  `mapstructure:"DB_READ_PORT"`
	DBReadUser                    string  `mapstructure:"DB_READ_USER"`
	DBReadPassword                string  `mapstructure:"DB_READ_PASSWORD"`
	DBMaxOpenConns                int     `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int     `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int     `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSchemaMode                  string  `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool    `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`
	SQLitePath                    string  `mapstructure:"SQLITE_PATH"`
	RedisURL                      string  `mapstructure:"REDIS_URL"`
	AllowedOrigins                string  `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags                  string  `mapstructure:"FEATURE_FLAGS"`
	RateLimitMax                  int     `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindowSeconds        int     `mapstructure:"RATE_LIMIT_WINDOW_SECONDS"`
	TracingEnabled                bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter               string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint                  string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio            float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
	SeedOnStart                   bool    `mapstructure:"SEED_ON_START"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadConfig loads application configuration from .env, file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_DRIVER", DriverPostgres)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "socialvim")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "postgres")
	viper.SetDefault("DB_READ_PASSWORD", "postgres")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("SQLITE_PATH", "socialvim.db")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("RATE_LIMIT_MAX", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	viper.SetDefault("SEED_ON_START", false)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.TracingExporter = strings.ToLower(strings.TrimSpace(c.TracingExporter))
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.DBMaxOpenConns <= 0 {
		return errors.New("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		return errors.New("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if c.DBConnMaxLifetimeMinutes <= 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must be positive")
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindowSeconds <= 0 {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.IsProduction() {
		if c.DBDriver == DriverSQLite {
			return errors.New("DB_DRIVER=sqlite is not allowed in production")
		}
		if c.DatabaseURL == "" && (c.DBPassword == "postgres" || c.DBPassword == "") {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DatabaseURL == "" && (c.DBSSLMode == "disable" || c.DBSSLMode == "") {
			return errors.New("DB_SSLMODE must not be 'disable' in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
