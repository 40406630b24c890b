// Package embedding wraps the external text-embedding service behind a
// small client interface. Callers on the ranking path never see a hard
// failure: they substitute Fallback() and degrade to attribute-only
// scoring.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/wandermatch/wandermatch/internal/config"
)

// Client generates a fixed-dimension vector for a text string.
type Client interface {
	// Embed generates a vector for a single text. A returned vector of
	// the wrong length is treated as a failure.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the service's declared vector dimension D.
	Dimensions() int
}

type openaiClient struct {
	client     *openai.Client
	model      string
	dimensions int
	timeout    time.Duration
}

// New creates a Client for any OpenAI-compatible embedding provider.
func New(cfg *config.Config) Client {
	clientConfig := openai.DefaultConfig(cfg.Embedding.APIKey)
	if cfg.Embedding.BaseURL != "" {
		clientConfig.BaseURL = cfg.Embedding.BaseURL
	}

	return &openaiClient{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Embedding.Model,
		dimensions: cfg.Embedding.Dimensions,
		timeout:    cfg.Embedding.Timeout,
	}
}

func (c *openaiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("no text provided for embedding")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: c.dimensions,
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != c.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), c.dimensions)
	}
	return vec, nil
}

func (c *openaiClient) Dimensions() int {
	return c.dimensions
}

// Fallback returns the neutral vector substituted when the embedding
// service is unavailable: all components equal so it prefers nothing.
func Fallback(dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}
