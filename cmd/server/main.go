package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/softdev-labs/learnsite/internal/content"
	"github.com/softdev-labs/learnsite/internal/httpapi"
	"github.com/softdev-labs/learnsite/internal/platform/config"
	"github.com/softdev-labs/learnsite/internal/platform/storage"
	"github.com/softdev-labs/learnsite/internal/progress"
	"github.com/softdev-labs/learnsite/internal/quiz"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	library, err := content.NewLibrary(cfg.Content.Dir)
	if err != nil {
		slog.Error("failed to load content", "error", err)
		os.Exit(1)
	}
	for _, le := range library.LoadErrors() {
		slog.Warn("document excluded", "slug", le.Slug, "error", le.Err)
	}

	store, err := newStateStore(cfg.State)
	if err != nil {
		slog.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	tracker := progress.NewTracker(library, store)

	// Quiz attempts are session-only unless persistence is configured.
	var quizStore storage.Store
	if cfg.State.QuizPersist {
		quizStore = store
	}
	engine := quiz.NewEngine(library, quizStore)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      httpapi.NewServer(library, tracker, engine).Mux(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "documents", len(library.Slugs()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newStateStore picks the durable backend: redis when configured, otherwise
// a file store under the state directory.
func newStateStore(cfg config.StateConfig) (storage.Store, error) {
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewRedisStore(ctx, cfg.RedisURL)
	}
	return storage.NewFileStore(cfg.Dir)
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
