// Package embedding turns corpus texts into vectors through a batching
// backend. The output is always position-aligned with the input: blank texts
// and texts from failed batches receive zero vectors instead of being dropped.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
)

var (
	ErrEmptyText     = errors.New("empty text")
	ErrCountMismatch = errors.New("embedding count mismatch")
)

const DefaultBatchSize = 100

// Backend is an embedding model reachable over the network.
type Backend interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	BatchSize int
	// Dimensions sizes the zero vectors when no batch succeeded.
	Dimensions int
	// RateLimit caps backend calls per second. Zero disables pacing.
	RateLimit float64
}

type Service struct {
	backend Backend
	opts    Options
	limiter *rate.Limiter
}

func NewService(b Backend, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = 1536
	}
	s := &Service{backend: b, opts: opts}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return s
}

// Embed returns one vector per input text. batchSize <= 0 uses the configured
// default. Failures never shorten the result.
func (s *Service) Embed(ctx context.Context, texts []string, batchSize int) [][]float32 {
	if batchSize <= 0 {
		batchSize = s.opts.BatchSize
	}

	vectors := make([][]float32, len(texts))

	// Positions of texts worth sending; blank ones keep a placeholder slot.
	pending := make([]int, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) != "" {
			pending = append(pending, i)
		}
	}

	dim := 0
	failed := 0
	for start := 0; start < len(pending); start += batchSize {
		end := min(start+batchSize, len(pending))
		idxs := pending[start:end]

		batch := make([]string, len(idxs))
		for j, idx := range idxs {
			batch[j] = texts[idx]
		}

		vecs, err := s.embedBatch(ctx, batch)
		if err != nil {
			slog.ErrorContext(ctx, "embedding batch failed, substituting zero vectors",
				"batch", start/batchSize+1, "size", len(batch), "error", err)
			failed += len(batch)
			continue
		}
		for j, idx := range idxs {
			vectors[idx] = vecs[j]
		}
		if dim == 0 {
			dim = len(vecs[0])
		}
	}

	if dim == 0 {
		dim = s.opts.Dimensions
	}
	for i := range vectors {
		if vectors[i] == nil {
			vectors[i] = make([]float32, dim)
		}
	}

	slog.InfoContext(ctx, "embeddings generated",
		"total", len(texts), "sent", len(pending), "blank", len(texts)-len(pending), "failed", failed, "dimensions", dim)
	return vectors
}

// EmbedQuery embeds a single question.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	vecs, err := s.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *Service) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	vecs, err := s.backend.EmbedBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(batch) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrCountMismatch, len(batch), len(vecs))
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return nil, fmt.Errorf("empty embedding at batch position %d", i)
		}
	}
	return vecs, nil
}
