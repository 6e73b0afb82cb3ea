package embedding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"virtualta/internal/embedding"
)

type MockBackend struct{ mock.Mock }

func (m *MockBackend) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func TestService_Embed(t *testing.T) {
	tests := []struct {
		name      string
		texts     []string
		batchSize int
		opts      embedding.Options
		setup     func(*MockBackend)
		check     func(*testing.T, [][]float32)
	}{
		{
			name:      "Single Batch",
			texts:     []string{"a", "b"},
			batchSize: 10,
			setup: func(b *MockBackend) {
				b.On("EmbedBatch", mock.Anything, []string{"a", "b"}).
					Return([][]float32{{1, 0}, {0, 1}}, nil).Once()
			},
			check: func(t *testing.T, got [][]float32) {
				assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, got)
			},
		},
		{
			name:      "Splits Into Batches",
			texts:     []string{"a", "b", "c"},
			batchSize: 2,
			setup: func(b *MockBackend) {
				b.On("EmbedBatch", mock.Anything, []string{"a", "b"}).
					Return([][]float32{{1}, {2}}, nil).Once()
				b.On("EmbedBatch", mock.Anything, []string{"c"}).
					Return([][]float32{{3}}, nil).Once()
			},
			check: func(t *testing.T, got [][]float32) {
				assert.Equal(t, [][]float32{{1}, {2}, {3}}, got)
			},
		},
		{
			name:      "Blank Texts Keep Their Slot",
			texts:     []string{"a", "", "  ", "d"},
			batchSize: 10,
			setup: func(b *MockBackend) {
				b.On("EmbedBatch", mock.Anything, []string{"a", "d"}).
					Return([][]float32{{1, 1}, {2, 2}}, nil).Once()
			},
			check: func(t *testing.T, got [][]float32) {
				require.Len(t, got, 4)
				assert.Equal(t, []float32{1, 1}, got[0])
				assert.Equal(t, []float32{0, 0}, got[1])
				assert.Equal(t, []float32{0, 0}, got[2])
				assert.Equal(t, []float32{2, 2}, got[3])
			},
		},
		{
			name:      "Failed Batch Becomes Zero Vectors Of Learned Dimension",
			texts:     []string{"a", "b", "c"},
			batchSize: 2,
			setup: func(b *MockBackend) {
				b.On("EmbedBatch", mock.Anything, []string{"a", "b"}).
					Return(nil, errors.New("rate limited")).Once()
				b.On("EmbedBatch", mock.Anything, []string{"c"}).
					Return([][]float32{{0.5, 0.5, 0.5}}, nil).Once()
			},
			check: func(t *testing.T, got [][]float32) {
				require.Len(t, got, 3)
				assert.Equal(t, []float32{0, 0, 0}, got[0])
				assert.Equal(t, []float32{0, 0, 0}, got[1])
				assert.Equal(t, []float32{0.5, 0.5, 0.5}, got[2])
			},
		},
		{
			name:      "All Batches Fail Uses Configured Dimension",
			texts:     []string{"a", "b"},
			batchSize: 1,
			opts:      embedding.Options{Dimensions: 4},
			setup: func(b *MockBackend) {
				b.On("EmbedBatch", mock.Anything, mock.Anything).
					Return(nil, errors.New("down")).Twice()
			},
			check: func(t *testing.T, got [][]float32) {
				assert.Equal(t, [][]float32{{0, 0, 0, 0}, {0, 0, 0, 0}}, got)
			},
		},
		{
			name:      "Count Mismatch Is A Batch Failure",
			texts:     []string{"a", "b"},
			batchSize: 5,
			opts:      embedding.Options{Dimensions: 2},
			setup: func(b *MockBackend) {
				b.On("EmbedBatch", mock.Anything, []string{"a", "b"}).
					Return([][]float32{{1, 1}}, nil).Once()
			},
			check: func(t *testing.T, got [][]float32) {
				assert.Equal(t, [][]float32{{0, 0}, {0, 0}}, got)
			},
		},
		{
			name:      "Default Batch Size",
			texts:     []string{"a", "b", "c"},
			batchSize: 0,
			opts:      embedding.Options{BatchSize: 2},
			setup: func(b *MockBackend) {
				b.On("EmbedBatch", mock.Anything, []string{"a", "b"}).
					Return([][]float32{{1}, {2}}, nil).Once()
				b.On("EmbedBatch", mock.Anything, []string{"c"}).
					Return([][]float32{{3}}, nil).Once()
			},
			check: func(t *testing.T, got [][]float32) {
				assert.Len(t, got, 3)
			},
		},
		{
			name:      "No Texts",
			texts:     []string{},
			batchSize: 10,
			setup:     func(b *MockBackend) {},
			check: func(t *testing.T, got [][]float32) {
				assert.NotNil(t, got)
				assert.Empty(t, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := new(MockBackend)
			tt.setup(b)

			svc := embedding.NewService(b, tt.opts)
			got := svc.Embed(context.Background(), tt.texts, tt.batchSize)

			assert.Len(t, got, len(tt.texts))
			tt.check(t, got)
			b.AssertExpectations(t)
		})
	}
}

func TestService_Embed_RateLimited(t *testing.T) {
	b := new(MockBackend)
	b.On("EmbedBatch", mock.Anything, mock.Anything).Return([][]float32{{1}}, nil).Times(3)

	svc := embedding.NewService(b, embedding.Options{RateLimit: 1000})
	got := svc.Embed(context.Background(), []string{"a", "b", "c"}, 1)

	assert.Equal(t, [][]float32{{1}, {1}, {1}}, got)
	b.AssertExpectations(t)
}

func TestService_Embed_CancelledContextDegrades(t *testing.T) {
	b := new(MockBackend)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := embedding.NewService(b, embedding.Options{RateLimit: 0.001, Dimensions: 2})
	got := svc.Embed(ctx, []string{"a"}, 1)

	assert.Equal(t, [][]float32{{0, 0}}, got)
	b.AssertNotCalled(t, "EmbedBatch", mock.Anything, mock.Anything)
}

func TestService_EmbedQuery(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		b := new(MockBackend)
		b.On("EmbedBatch", mock.Anything, []string{"which model?"}).Return([][]float32{{0.1, 0.2}}, nil)

		vec, err := embedding.NewService(b, embedding.Options{}).EmbedQuery(context.Background(), "which model?")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2}, vec)
	})

	t.Run("Backend Error", func(t *testing.T) {
		b := new(MockBackend)
		b.On("EmbedBatch", mock.Anything, []string{"q"}).Return(nil, errors.New("boom"))

		vec, err := embedding.NewService(b, embedding.Options{}).EmbedQuery(context.Background(), "q")
		assert.Error(t, err)
		assert.Nil(t, vec)
	})

	t.Run("Blank Question", func(t *testing.T) {
		b := new(MockBackend)
		_, err := embedding.NewService(b, embedding.Options{}).EmbedQuery(context.Background(), "   ")
		assert.ErrorIs(t, err, embedding.ErrEmptyText)
		b.AssertNotCalled(t, "EmbedBatch", mock.Anything, mock.Anything)
	})

	t.Run("Empty Vector", func(t *testing.T) {
		b := new(MockBackend)
		b.On("EmbedBatch", mock.Anything, []string{"q"}).Return([][]float32{{}}, nil)

		_, err := embedding.NewService(b, embedding.Options{}).EmbedQuery(context.Background(), "q")
		assert.Error(t, err)
	})
}
