package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"virtualta/internal/app"
	"virtualta/internal/config"
	"virtualta/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting virtual TA",
		"provider", cfg.LLMProvider,
		"embedding_model", cfg.EmbeddingModel,
		"chat_model", cfg.ChatModel,
		"history", cfg.HistoryDatabaseURL != "",
		"events", cfg.NSQDHost != "",
	)
	if cfg.APIKey() == "" {
		log.Warn("no API key configured for provider, backend calls will likely fail", "provider", cfg.LLMProvider)
	}

	lc := app.NewLifecycle()
	deps, err := app.Bootstrap(ctx, cfg, lc, app.NewBackend(cfg))
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Warn("failed to close dependencies", "error", err)
		}
	}()

	a, err := app.New(cfg, deps, lc)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return a.Run(ctx)
}
