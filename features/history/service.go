package history

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"virtualta/internal/middleware"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrDisabled = errors.New("interaction history is not configured")

// Service records interactions when a repository is configured. A nil
// Service is valid and records nothing.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record stores an interaction. Failures are logged, never returned.
func (s *Service) Record(ctx context.Context, in Interaction) {
	if !s.Enabled() {
		return
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CorrelationID == "" {
		in.CorrelationID = middleware.GetCorrelationID(ctx)
	}
	if err := s.repo.Save(ctx, &in); err != nil {
		slog.WarnContext(ctx, "failed to record interaction", "id", in.ID, "error", err)
	}
}

// List returns the most recent interactions, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Interaction, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}
	return s.repo.Count(ctx)
}
