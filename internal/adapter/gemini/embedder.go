// Package gemini adapts the Gemini API to the embedding and chat interfaces.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrMissingAPIKey = errors.New("gemini api key not configured")

// Client lazily opens one genai client and shares it between embedding and
// chat calls.
type Client struct {
	apiKey         string
	embeddingModel string
	clientOpts     []option.ClientOption

	mu     sync.Mutex
	client *genai.Client
}

func NewClient(apiKey, embeddingModel string, opts ...option.ClientOption) *Client {
	return &Client{
		apiKey:         apiKey,
		embeddingModel: embeddingModel,
		clientOpts:     opts,
	}
}

func (c *Client) getClient(ctx context.Context) (*genai.Client, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	opts := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.clientOpts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.client = client
	return client, nil
}

// EmbedBatch embeds all texts in a single batchEmbedContents call.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "embedding batch", "model", c.embeddingModel, "count", len(texts))

	em := client.EmbeddingModel(c.embeddingModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		if e != nil {
			vectors[i] = e.Values
		}
	}
	return vectors, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
