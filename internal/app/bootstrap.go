package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
	"golang.org/x/sync/errgroup"

	"virtualta/internal/adapter/gemini"
	"virtualta/internal/adapter/openai"
	"virtualta/internal/answer"
	"virtualta/internal/config"
	"virtualta/internal/corpus"
	"virtualta/internal/embedding"
	"virtualta/internal/index"
)

// Backend is a provider that can both embed and chat.
type Backend interface {
	embedding.Backend
	answer.ChatModel
}

type Dependencies struct {
	Corpora     corpus.Corpora
	Knowledge   *index.KnowledgeBase
	Embedder    *embedding.Service
	Chat        answer.ChatModel
	DB          *sql.DB
	NSQProducer *nsq.Producer

	closers []func() error
}

// Close releases optional connections in reverse order of acquisition.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// NewBackend builds the provider selected by LLM_PROVIDER.
func NewBackend(cfg *config.Config) Backend {
	if cfg.LLMProvider == config.ProviderGemini {
		return gemini.NewClient(cfg.GeminiAPIKey, cfg.EmbeddingModel)
	}
	return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.BackendTimeout())
}

// Bootstrap loads the corpora, embeds them and connects the optional
// integrations. The lifecycle is Ready when it returns without error.
func Bootstrap(ctx context.Context, cfg *config.Config, lc *Lifecycle, backend Backend) (*Dependencies, error) {
	lc.BeginLoading()

	deps := &Dependencies{Chat: backend}
	if c, ok := backend.(interface{ Close() error }); ok {
		deps.closers = append(deps.closers, c.Close)
	}

	if cfg.HistoryDatabaseURL != "" {
		db, err := OpenHistoryDB(ctx, cfg)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.DB = db
		deps.closers = append(deps.closers, db.Close)
	}

	if cfg.NSQDHost != "" {
		producer, err := NewProducer(ctx, cfg)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.NSQProducer = producer
		deps.closers = append(deps.closers, func() error { producer.Stop(); return nil })
	}

	deps.Corpora = corpus.Load(ctx, cfg.CourseDataPath, cfg.DiscourseDataPath)
	lc.SetLoaded(deps.Corpora.Total())

	deps.Embedder = embedding.NewService(backend, embedding.Options{
		BatchSize:  cfg.EmbeddingBatchSize,
		Dimensions: cfg.EmbeddingDimensions,
		RateLimit:  cfg.EmbeddingRateLimit,
	})

	kb, err := BuildKnowledge(ctx, deps.Embedder, deps.Corpora, cfg.EmbeddingBatchSize)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Knowledge = kb

	lc.MarkReady()
	slog.InfoContext(ctx, "knowledge base ready",
		"course_records", kb.Course.Len(),
		"discourse_records", kb.Discourse.Len(),
	)
	return deps, nil
}

// BuildKnowledge embeds both corpora concurrently.
func BuildKnowledge(ctx context.Context, emb *embedding.Service, c corpus.Corpora, batchSize int) (*index.KnowledgeBase, error) {
	var courseVecs, discourseVecs [][]float32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.InfoContext(gctx, "embedding corpus", "source", corpus.SourceCourse, "records", len(c.Course))
		courseVecs = emb.Embed(gctx, corpus.Texts(c.Course), batchSize)
		return gctx.Err()
	})
	g.Go(func() error {
		slog.InfoContext(gctx, "embedding corpus", "source", corpus.SourceDiscourse, "records", len(c.Discourse))
		discourseVecs = emb.Embed(gctx, corpus.Texts(c.Discourse), batchSize)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("embedding interrupted: %w", err)
	}

	return index.NewKnowledgeBase(c, courseVecs, discourseVecs), nil
}

// OpenHistoryDB connects with retry and applies migrations.
func OpenHistoryDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.HistoryDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	err = Retry(ctx, cfg.BootstrapRetryAttempts, cfg.BootstrapRetryDelay(), func() error {
		return db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration driver error: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration instance error: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("migration up error: %w", err)
	}
	slog.InfoContext(ctx, "history database ready")
	return db, nil
}

// NewProducer creates an NSQ producer and waits until nsqd answers.
func NewProducer(ctx context.Context, cfg *config.Config) (*nsq.Producer, error) {
	producer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("nsq producer error: %w", err)
	}
	if err := Retry(ctx, cfg.BootstrapRetryAttempts, cfg.BootstrapRetryDelay(), producer.Ping); err != nil {
		producer.Stop()
		return nil, fmt.Errorf("failed to ping nsqd: %w", err)
	}
	return producer, nil
}

// Retry calls fn up to attempts times, sleeping delay between failures.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		slog.WarnContext(ctx, "dependency not ready, retrying...", "attempt", i+1, "max_attempts", attempts, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
