package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// chdirTemp moves the test into an empty directory so no .env or config file
// from the repository is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	originalDir, _ := os.Getwd()
	tempDir := t.TempDir()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalDir) })
	return tempDir
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		chdirTemp(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
		}
		if cfg.AnnotatorEnabled() {
			t.Errorf("AnnotatorEnabled() = true with no API key, want false")
		}
		if cfg.Annotator.Retry.MaxAttempts != 3 {
			t.Errorf("Annotator.Retry.MaxAttempts = %d, want 3", cfg.Annotator.Retry.MaxAttempts)
		}
		if cfg.Annotator.Retry.InitialBackoff != 500*time.Millisecond {
			t.Errorf("Annotator.Retry.InitialBackoff = %v, want 500ms", cfg.Annotator.Retry.InitialBackoff)
		}
		if cfg.Catalog.Source != "api" {
			t.Errorf("Catalog.Source = %s, want api", cfg.Catalog.Source)
		}
		if cfg.Catalog.Limit != 500 {
			t.Errorf("Catalog.Limit = %d, want 500", cfg.Catalog.Limit)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 5*time.Minute {
			t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 60 {
			t.Errorf("RateLimit.PerIP = %d, want 60", cfg.RateLimit.PerIP)
		}
		if cfg.Matching.ClassificationBatchSize != 20 {
			t.Errorf("Matching.ClassificationBatchSize = %d, want 20", cfg.Matching.ClassificationBatchSize)
		}
		if cfg.Matching.BatchDelay != 500*time.Millisecond {
			t.Errorf("Matching.BatchDelay = %v, want 500ms", cfg.Matching.BatchDelay)
		}
		if cfg.Matching.MinGroupRatio != 0.5 {
			t.Errorf("Matching.MinGroupRatio = %v, want 0.5", cfg.Matching.MinGroupRatio)
		}
		if cfg.Matching.MaxProducts != 4 {
			t.Errorf("Matching.MaxProducts = %d, want 4", cfg.Matching.MaxProducts)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("RECIPEMATCH_SERVER_PORT", "9090")
		t.Setenv("RECIPEMATCH_SERVER_ENVIRONMENT", "production")
		t.Setenv("RECIPEMATCH_SERVER_ALLOWED_ORIGINS", "https://shop.example.com,https://*.example.com")
		t.Setenv("RECIPEMATCH_ANNOTATOR_API_KEY", "sk-test")
		t.Setenv("RECIPEMATCH_ANNOTATOR_RETRY_MAX_ATTEMPTS", "5")
		t.Setenv("RECIPEMATCH_CATALOG_SOURCE", "file")
		t.Setenv("RECIPEMATCH_CATALOG_FILE", "/data/catalog.xlsx")
		t.Setenv("RECIPEMATCH_CACHE_TYPE", "redis")
		t.Setenv("RECIPEMATCH_CACHE_REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("RECIPEMATCH_CACHE_TTL", "1h")
		t.Setenv("RECIPEMATCH_RATELIMIT_PER_IP", "200")
		t.Setenv("RECIPEMATCH_MATCHING_BATCH_DELAY", "0s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://*.example.com" {
			t.Errorf("Server.AllowedOrigins = %v, want two origins", cfg.Server.AllowedOrigins)
		}
		if !cfg.AnnotatorEnabled() {
			t.Errorf("AnnotatorEnabled() = false, want true")
		}
		if cfg.Annotator.Retry.MaxAttempts != 5 {
			t.Errorf("Annotator.Retry.MaxAttempts = %d, want 5", cfg.Annotator.Retry.MaxAttempts)
		}
		if cfg.Catalog.Source != "file" || cfg.Catalog.File != "/data/catalog.xlsx" {
			t.Errorf("Catalog = %+v, want file source /data/catalog.xlsx", cfg.Catalog)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379/0", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Matching.BatchDelay != 0 {
			t.Errorf("Matching.BatchDelay = %v, want 0", cfg.Matching.BatchDelay)
		}
	})

	t.Run("reads variables from .env file", func(t *testing.T) {
		dir := chdirTemp(t)
		t.Setenv("RECIPEMATCH_LOG_LEVEL", "")
		os.Unsetenv("RECIPEMATCH_LOG_LEVEL")

		envContent := "# local overrides\nRECIPEMATCH_LOG_LEVEL=debug\n"
		if err := os.WriteFile(dir+"/.env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
		}
	})

	t.Run(".env does not override existing environment variables", func(t *testing.T) {
		dir := chdirTemp(t)
		t.Setenv("RECIPEMATCH_SERVER_PORT", "7070")

		if err := os.WriteFile(dir+"/.env", []byte("RECIPEMATCH_SERVER_PORT=6060"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070 (should not override)", cfg.Server.Port)
		}
	})

	t.Run("reads config file", func(t *testing.T) {
		dir := chdirTemp(t)

		yaml := "catalog:\n  limit: 50\nmatching:\n  min_word_score: 2\n"
		if err := os.WriteFile(dir+"/config.yaml", []byte(yaml), 0644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Catalog.Limit != 50 {
			t.Errorf("Catalog.Limit = %d, want 50", cfg.Catalog.Limit)
		}
		if cfg.Matching.MinWordScore != 2 {
			t.Errorf("Matching.MinWordScore = %d, want 2", cfg.Matching.MinWordScore)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("RECIPEMATCH_CACHE_TYPE", "invalid")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for invalid cache type")
		}
		if !strings.HasPrefix(err.Error(), "invalid configuration:") {
			t.Errorf("Load() error = %v, want invalid configuration prefix", err)
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("RECIPEMATCH_CACHE_TYPE", "redis")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Catalog:  CatalogConfig{Source: "api", BaseURL: "http://localhost:9000"},
			Cache:    CacheConfig{Type: "memory"},
			Matching: MatchingConfig{ClassificationBatchSize: 20, MinGroupRatio: 0.5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults", mutate: func(c *Config) {}},
		{name: "invalid cache type", mutate: func(c *Config) { c.Cache.Type = "disk" }, wantErr: true},
		{name: "redis with URL", mutate: func(c *Config) {
			c.Cache.Type = "redis"
			c.Cache.RedisURL = "redis://localhost:6379"
		}},
		{name: "redis without URL", mutate: func(c *Config) { c.Cache.Type = "redis" }, wantErr: true},
		{name: "api source without base URL", mutate: func(c *Config) { c.Catalog.BaseURL = "" }, wantErr: true},
		{name: "file source with path", mutate: func(c *Config) {
			c.Catalog.Source = "file"
			c.Catalog.File = "catalog.json"
		}},
		{name: "file source without path", mutate: func(c *Config) { c.Catalog.Source = "file" }, wantErr: true},
		{name: "unknown source", mutate: func(c *Config) { c.Catalog.Source = "ftp" }, wantErr: true},
		{name: "zero batch size", mutate: func(c *Config) { c.Matching.ClassificationBatchSize = 0 }, wantErr: true},
		{name: "ratio above one", mutate: func(c *Config) { c.Matching.MinGroupRatio = 1.5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
