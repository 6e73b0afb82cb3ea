package history_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"virtualta/features/history"
	"virtualta/internal/middleware"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) Save(ctx context.Context, in *history.Interaction) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockRepo) List(ctx context.Context, limit int) ([]history.Interaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]history.Interaction), args.Error(1)
}

func (m *MockRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestService_Record(t *testing.T) {
	repo := new(MockRepo)
	ctx := middleware.WithCorrelationID(context.Background(), "corr-9")

	repo.On("Save", ctx, mock.MatchedBy(func(in *history.Interaction) bool {
		return in.ID != "" && in.CorrelationID == "corr-9" && in.Question == "q"
	})).Return(nil).Once()

	history.NewService(repo).Record(ctx, history.Interaction{Question: "q"})
	repo.AssertExpectations(t)
}

func TestService_Record_ErrorSwallowed(t *testing.T) {
	repo := new(MockRepo)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	assert.NotPanics(t, func() {
		history.NewService(repo).Record(context.Background(), history.Interaction{Question: "q"})
	})
	repo.AssertExpectations(t)
}

func TestService_List_Limits(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"Default", 0, history.DefaultLimit},
		{"Explicit", 5, 5},
		{"Clamped", 1000, history.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepo)
			repo.On("List", mock.Anything, tt.want).Return([]history.Interaction{}, nil).Once()

			_, err := history.NewService(repo).List(context.Background(), tt.limit)
			assert.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Disabled(t *testing.T) {
	var nilSvc *history.Service
	assert.False(t, nilSvc.Enabled())
	assert.NotPanics(t, func() { nilSvc.Record(context.Background(), history.Interaction{}) })

	svc := history.NewService(nil)
	_, err := svc.List(context.Background(), 1)
	assert.ErrorIs(t, err, history.ErrDisabled)
	_, err = svc.Count(context.Background())
	assert.ErrorIs(t, err, history.ErrDisabled)
}
