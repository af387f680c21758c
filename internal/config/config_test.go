package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/JaimeStill/school-feed/internal/config"
)

func TestLoad_BaseConfig(t *testing.T) {
	t.Chdir("../..")
	t.Setenv(config.EnvServiceEnv, "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("API.BasePath = %q, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("DefaultPageSize = %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Storage.MaxUploadSizeBytes() <= 0 {
		t.Error("MaxUploadSizeBytes() not resolved")
	}
	if cfg.Media.ImagesBucket != "posts" || cfg.Media.DocumentsBucket != "documents" {
		t.Errorf("media buckets = %q, %q", cfg.Media.ImagesBucket, cfg.Media.DocumentsBucket)
	}
	if cfg.API.OpenAPI.Title != "School Feed API" {
		t.Errorf("OpenAPI.Title = %q", cfg.API.OpenAPI.Title)
	}
}

func TestLoad_WithOverlay(t *testing.T) {
	t.Chdir("../..")

	overlay := `shutdown_timeout = "60s"

[server]
port = 9090

[cache]
enabled = true
ttl = "1m"
`
	if err := os.WriteFile("config.overlaytest.toml", []byte(overlay), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Cleanup(func() { os.Remove("config.overlaytest.toml") })

	t.Setenv(config.EnvServiceEnv, "overlaytest")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ShutdownTimeout != "60s" {
		t.Errorf("ShutdownTimeout = %q, want 60s", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTLDuration() != time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, base value should survive overlay", cfg.Server.Host)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir("../..")
	t.Setenv(config.EnvServiceEnv, "")
	t.Setenv(config.EnvServiceShutdownTimeout, "45s")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOGGING_LEVEL", "DEBUG")
	t.Setenv("AUTH_SECRET", "override-secret-abcdef")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ShutdownTimeout != "45s" {
		t.Errorf("ShutdownTimeout = %q, want 45s", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Auth.Secret != "override-secret-abcdef" {
		t.Errorf("Auth.Secret = %q", cfg.Auth.Secret)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := config.Load(); err == nil {
		t.Error("Load() without config.toml should fail")
	}
}

func TestLoad_InvalidSection(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvServiceEnv, "")
	t.Setenv("AUTH_SECRET", "")

	content := `[auth]
secret = "short"
`
	if err := os.WriteFile(config.BaseConfigFile, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := config.Load(); err == nil {
		t.Error("Load() with short auth secret should fail")
	}
}
