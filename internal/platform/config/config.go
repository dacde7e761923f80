// Package config loads application configuration from environment variables.
// All variables use the LEARNSITE_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Content ContentConfig
	State   StateConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// ContentConfig holds content store settings.
type ContentConfig struct {
	Dir string
}

// StateConfig holds reader-state persistence settings. RedisURL, when set,
// selects the redis backend over the default file store. QuizPersist keeps
// quiz attempts in the durable store instead of the default session-only
// memory; progress is always durable.
type StateConfig struct {
	Dir         string
	RedisURL    string
	QuizPersist bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with LEARNSITE_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("LEARNSITE_SERVER_PORT", 8080),
			Host: envStr("LEARNSITE_SERVER_HOST", "0.0.0.0"),
		},
		Content: ContentConfig{
			Dir: envStr("LEARNSITE_CONTENT_DIR", "./content"),
		},
		State: StateConfig{
			Dir:         envStr("LEARNSITE_STATE_DIR", "./state"),
			RedisURL:    envStr("LEARNSITE_STATE_REDIS_URL", ""),
			QuizPersist: envBool("LEARNSITE_QUIZ_PERSIST", false),
		},
		Log: LogConfig{
			Level:  envStr("LEARNSITE_LOG_LEVEL", "info"),
			Format: envStr("LEARNSITE_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Content.Dir == "" {
		return fmt.Errorf("LEARNSITE_CONTENT_DIR is required")
	}
	if c.State.Dir == "" && c.State.RedisURL == "" {
		return fmt.Errorf("either LEARNSITE_STATE_DIR or LEARNSITE_STATE_REDIS_URL is required")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LEARNSITE_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
