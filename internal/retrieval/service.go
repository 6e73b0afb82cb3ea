package retrieval

import (
	"context"
	"log/slog"
	"time"

	"virtualta/internal/index"
	"virtualta/internal/middleware"
)

type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type Options struct {
	TopK      int
	Threshold float64
}

func DefaultOptions() Options {
	return Options{TopK: 5, Threshold: 0.7}
}

type Service struct {
	embedder QueryEmbedder
	kb       *index.KnowledgeBase
	opts     Options
	logger   *QueryLogger
}

func NewService(e QueryEmbedder, kb *index.KnowledgeBase, opts Options, l *QueryLogger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	return &Service{embedder: e, kb: kb, opts: opts, logger: l}
}

func (s *Service) Options() Options { return s.opts }

// Retrieve finds the candidates for question in each corpus. Any failure
// degrades to no candidates.
func (s *Service) Retrieve(ctx context.Context, question string) (course, discourse []index.Candidate) {
	start := time.Now()
	entry := QueryLogEntry{Query: question, CorrelationID: middleware.GetCorrelationID(ctx)}
	defer func() {
		if s.logger != nil {
			entry.CourseHits = len(course)
			entry.DiscourseHits = len(discourse)
			entry.NumResults = len(course) + len(discourse)
			entry.Duration = time.Since(start)
			s.logger.Log(entry)
		}
	}()

	if s.kb.Empty() {
		slog.InfoContext(ctx, "knowledge base empty, skipping retrieval")
		return nil, nil
	}

	vec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		slog.ErrorContext(ctx, "failed to embed question", "error", err)
		entry.EmbedFailed = true
		return nil, nil
	}

	course = s.kb.Course.Search(vec, s.opts.TopK, s.opts.Threshold)
	discourse = s.kb.Discourse.Search(vec, s.opts.TopK, s.opts.Threshold)

	slog.DebugContext(ctx, "retrieval done", "course_hits", len(course), "discourse_hits", len(discourse))
	return course, discourse
}
