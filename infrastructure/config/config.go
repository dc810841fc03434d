// Package config loads application configuration from an optional YAML
// file overridden by environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// AWS / document store configuration
	AWSRegion    string `yaml:"aws_region"`
	PromptsTable string `yaml:"prompts_table"`
	ToolsTable   string `yaml:"tools_table"`

	// Redis / cache store configuration; an empty address selects the
	// in-memory cache store (single-instance development mode)
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Cache tuning
	SnapshotStalenessHours  int `yaml:"snapshot_staleness_hours"`
	ResultCacheTTLSeconds   int `yaml:"result_cache_ttl_seconds"`
	DocumentCacheTTLSeconds int `yaml:"document_cache_ttl_seconds"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Logging and features
	LogLevel   string `yaml:"log_level"`
	EnableCORS bool   `yaml:"enable_cors"`
}

// LoadConfig loads configuration: defaults, then the YAML file named
// by CONFIG_FILE (if any), then environment variable overrides.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:           ":8080",
		Environment:             "development",
		AWSRegion:               "us-west-2",
		PromptsTable:            "promptbay-prompts",
		ToolsTable:              "promptbay-tools",
		SnapshotStalenessHours:  24,
		ResultCacheTTLSeconds:   300,
		DocumentCacheTTLSeconds: 600,
		JWTIssuer:               "promptbay-backend",
		LogLevel:                "info",
		EnableCORS:              true,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.PromptsTable = getEnv("PROMPTS_TABLE", cfg.PromptsTable)
	cfg.ToolsTable = getEnv("TOOLS_TABLE", cfg.ToolsTable)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.SnapshotStalenessHours = getEnvInt("SNAPSHOT_STALENESS_HOURS", cfg.SnapshotStalenessHours)
	cfg.ResultCacheTTLSeconds = getEnvInt("RESULT_CACHE_TTL_SECONDS", cfg.ResultCacheTTLSeconds)
	cfg.DocumentCacheTTLSeconds = getEnvInt("DOCUMENT_CACHE_TTL_SECONDS", cfg.DocumentCacheTTLSeconds)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required in production")
		}
	}
	if c.SnapshotStalenessHours <= 0 {
		return fmt.Errorf("snapshot staleness must be positive")
	}
	return nil
}

// SnapshotStaleness returns the staleness budget as a duration.
func (c *Config) SnapshotStaleness() time.Duration {
	return time.Duration(c.SnapshotStalenessHours) * time.Hour
}

// ResultCacheTTL returns the result cache TTL as a duration.
func (c *Config) ResultCacheTTL() time.Duration {
	return time.Duration(c.ResultCacheTTLSeconds) * time.Second
}

// DocumentCacheTTL returns the document cache TTL as a duration.
func (c *Config) DocumentCacheTTL() time.Duration {
	return time.Duration(c.DocumentCacheTTLSeconds) * time.Second
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
