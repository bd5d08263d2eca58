package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Annotator AnnotatorConfig `mapstructure:"annotator"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Matching  MatchingConfig  `mapstructure:"matching"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// AnnotatorConfig holds the annotation service (OpenRouter) configuration.
// An empty APIKey disables the service.
type AnnotatorConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Retry             RetryConfig   `mapstructure:"retry"`
}

// RetryConfig holds retry settings for annotation requests
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// CatalogConfig holds the product catalog source configuration
type CatalogConfig struct {
	Source         string        `mapstructure:"source"` // "api" or "file"
	BaseURL        string        `mapstructure:"base_url"`
	PublishableKey string        `mapstructure:"publishable_key"`
	File           string        `mapstructure:"file"`
	Limit          int           `mapstructure:"limit"`
	PageSize       int           `mapstructure:"page_size"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// MatchingConfig holds the recommendation pipeline tuning
type MatchingConfig struct {
	ClassificationBatchSize int           `mapstructure:"classification_batch_size"`
	BatchDelay              time.Duration `mapstructure:"batch_delay"`
	MaxProducts             int           `mapstructure:"max_products"`
	MinGroupRatio           float64       `mapstructure:"min_group_ratio"`
	LowConfidence           float64       `mapstructure:"low_confidence"`
	AnnotatedConfidence     float64       `mapstructure:"annotated_confidence"`
	MaxGroupNames           int           `mapstructure:"max_group_names"`
	MinWordScore            int           `mapstructure:"min_word_score"`
	MaxRecipeProducts       int           `mapstructure:"max_recipe_products"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/recipematch/")

	// RECIPEMATCH_ANNOTATOR_API_KEY -> annotator.api_key
	v.SetEnvPrefix("RECIPEMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key needs a default,
// even an empty one, for AutomaticEnv to reach it through Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("log.level", "info")

	v.SetDefault("annotator.api_key", "")
	v.SetDefault("annotator.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("annotator.model", "openai/gpt-4o-mini")
	v.SetDefault("annotator.max_tokens", 2048)
	v.SetDefault("annotator.timeout", "30s")
	v.SetDefault("annotator.requests_per_second", 2)
	v.SetDefault("annotator.burst", 1)
	v.SetDefault("annotator.retry.max_attempts", 3)
	v.SetDefault("annotator.retry.initial_backoff", "500ms")
	v.SetDefault("annotator.retry.max_backoff", "4s")

	v.SetDefault("catalog.source", "api")
	v.SetDefault("catalog.base_url", "http://localhost:9000")
	v.SetDefault("catalog.publishable_key", "")
	v.SetDefault("catalog.file", "")
	v.SetDefault("catalog.limit", 500)
	v.SetDefault("catalog.page_size", 100)
	v.SetDefault("catalog.timeout", "30s")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("ratelimit.per_ip", 60)

	v.SetDefault("matching.classification_batch_size", 20)
	v.SetDefault("matching.batch_delay", "500ms")
	v.SetDefault("matching.max_products", 4)
	v.SetDefault("matching.min_group_ratio", 0.5)
	v.SetDefault("matching.low_confidence", 0.7)
	v.SetDefault("matching.annotated_confidence", 0.8)
	v.SetDefault("matching.max_group_names", 30)
	v.SetDefault("matching.min_word_score", 3)
	v.SetDefault("matching.max_recipe_products", 4)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	switch config.Catalog.Source {
	case "api":
		if config.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog base URL is required when catalog source is 'api'")
		}
	case "file":
		if config.Catalog.File == "" {
			return fmt.Errorf("catalog file is required when catalog source is 'file'")
		}
	default:
		return fmt.Errorf("catalog source must be 'api' or 'file', got: %s", config.Catalog.Source)
	}

	if config.Matching.ClassificationBatchSize <= 0 {
		return fmt.Errorf("matching classification batch size must be positive, got: %d", config.Matching.ClassificationBatchSize)
	}

	if config.Matching.MinGroupRatio < 0 || config.Matching.MinGroupRatio > 1 {
		return fmt.Errorf("matching min group ratio must be within [0, 1], got: %v", config.Matching.MinGroupRatio)
	}

	return nil
}

// AnnotatorEnabled reports whether annotation service credentials are set
func (c *Config) AnnotatorEnabled() bool {
	return strings.TrimSpace(c.Annotator.APIKey) != ""
}
