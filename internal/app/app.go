package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"virtualta/features/ask"
	"virtualta/features/health"
	"virtualta/features/history"
	"virtualta/features/stats"
	"virtualta/internal/answer"
	"virtualta/internal/config"
	"virtualta/internal/events"
	"virtualta/internal/middleware"
	"virtualta/internal/retrieval"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Handler   http.Handler
	Lifecycle *Lifecycle
	port      int
}

// New wires handlers over bootstrapped dependencies.
func New(cfg *config.Config, deps *Dependencies, lc *Lifecycle) (*App, error) {
	if deps == nil || deps.Knowledge == nil || deps.Embedder == nil || deps.Chat == nil {
		return nil, errors.New("app: incomplete dependencies")
	}

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	retrievalService := retrieval.NewService(deps.Embedder, deps.Knowledge, retrieval.Options{
		TopK:      cfg.TopK,
		Threshold: cfg.SimilarityThreshold,
	}, queryLogger)

	synth := answer.NewSynthesizer(deps.Chat, answer.Options{
		ChatModel:   cfg.ChatModel,
		VisionModel: cfg.VisionModel,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		MaxLinks:    cfg.MaxLinks,
	})

	var historyService *history.Service
	if deps.DB != nil {
		historyService = history.NewService(history.NewPostgresRepo(deps.DB))
	}

	var emitter *events.Emitter
	if deps.NSQProducer != nil {
		emitter = events.NewEmitter(deps.NSQProducer)
	}

	askService := ask.NewService(retrievalService, synth, cfg.TopK, historyService, emitter)
	askHandler := ask.NewHandler(askService)
	healthHandler := health.NewHandler(lc)
	statsHandler := stats.NewHandler(deps.Knowledge, historyService)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/{$}", askHandler.Ask)
	mux.HandleFunc("POST /api", askHandler.Ask)
	mux.HandleFunc("GET /health", healthHandler.Check)
	mux.HandleFunc("GET /stats", statsHandler.GetStats)
	if historyService.Enabled() {
		mux.HandleFunc("GET /history", history.NewHandler(historyService).List)
	}

	return &App{
		Handler:   middleware.CorrelationID(middleware.CORS(middleware.Recover(mux))),
		Lifecycle: lc,
		port:      cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.port),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
