package config_test

import (
	"testing"

	"github.com/softdev-labs/learnsite/internal/platform/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Content.Dir != "./content" {
		t.Errorf("Content.Dir = %q, want ./content", cfg.Content.Dir)
	}
	if cfg.State.Dir != "./state" {
		t.Errorf("State.Dir = %q, want ./state", cfg.State.Dir)
	}
	if cfg.State.QuizPersist {
		t.Error("State.QuizPersist = true, want false by default")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LEARNSITE_SERVER_PORT", "9090")
	t.Setenv("LEARNSITE_CONTENT_DIR", "/srv/lessons")
	t.Setenv("LEARNSITE_STATE_REDIS_URL", "redis://localhost:6379")
	t.Setenv("LEARNSITE_QUIZ_PERSIST", "true")
	t.Setenv("LEARNSITE_LOG_FORMAT", "text")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Content.Dir != "/srv/lessons" {
		t.Errorf("Content.Dir = %q, want /srv/lessons", cfg.Content.Dir)
	}
	if cfg.State.RedisURL != "redis://localhost:6379" {
		t.Errorf("State.RedisURL = %q, want the configured URL", cfg.State.RedisURL)
	}
	if !cfg.State.QuizPersist {
		t.Error("State.QuizPersist = false, want true")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("LEARNSITE_SERVER_PORT", "not-a-number")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want fallback 8080", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for defaults", err)
	}
}

func TestValidate_BadLogFormat(t *testing.T) {
	t.Setenv("LEARNSITE_LOG_FORMAT", "xml")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for unknown log format")
	}
}

func TestValidate_MissingContentDir(t *testing.T) {
	t.Setenv("LEARNSITE_CONTENT_DIR", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// Empty env falls back to the default, so blank it explicitly.
	cfg.Content.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing content dir")
	}
}
