// Package config provides configuration management for the cube engine's
// demo server.
//
// Configuration is loaded from multiple sources in this order:
// 1. Configuration file (YAML)
// 2. Environment variables
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete demo-server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Schema  SchemaConfig  `mapstructure:"schema"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	EnableCORS         bool          `mapstructure:"enable_cors"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig contains the result cache's capacity and per-entry TTL.
type CacheConfig struct {
	Max   int   `mapstructure:"max"`
	TTLMs int64 `mapstructure:"ttl_ms"`
}

// SchemaConfig points at the directory of cube schema files registered at
// startup.
type SchemaConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig contains logger configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks structural invariants beyond what viper's defaults cover.
func (c *Config) Validate() error {
	if c.Cache.Max <= 0 {
		return fmt.Errorf("cache.max must be positive, got %d", c.Cache.Max)
	}
	if c.Cache.TTLMs <= 0 {
		return fmt.Errorf("cache.ttl_ms must be positive, got %d", c.Cache.TTLMs)
	}
	return nil
}

// Load loads configuration from an optional config file and environment
// variables: file values first, then environment overrides, then defaults
// for anything still unset.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only errors with invalid args, safe with string literals
	viper.BindEnv("server.port", "PORT")
	//nolint:errcheck
	viper.BindEnv("server.host", "HOST")
	//nolint:errcheck
	viper.BindEnv("cache.max", "CACHE_MAX")
	//nolint:errcheck
	viper.BindEnv("cache.ttl_ms", "CACHE_TTL_MS")
	//nolint:errcheck
	viper.BindEnv("schema.dir", "SCHEMA_DIR")
	//nolint:errcheck
	viper.BindEnv("logging.level", "LOG_LEVEL")
	//nolint:errcheck
	viper.BindEnv("logging.format", "LOG_FORMAT")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.enable_cors", true)
	viper.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000"})
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("cache.max", 200)
	viper.SetDefault("cache.ttl_ms", 30_000)

	viper.SetDefault("schema.dir", "./configs/cubes")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}
