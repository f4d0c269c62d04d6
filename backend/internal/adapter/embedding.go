package adapter

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"faqgraph/backend/pkg/logger"
)

// EmbeddingAdapter is the process's embedding capability: text in, fixed
// length float vector out
type EmbeddingAdapter struct {
	client     *openai.Client
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbeddingAdapter creates a new embedding adapter
func NewEmbeddingAdapter(baseURL, apiKey, model string, dimensions int) *EmbeddingAdapter {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &EmbeddingAdapter{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dimensions,
		logger:     logger.Get(),
	}
}

// Dimensions returns the configured embedding dimensionality
func (a *EmbeddingAdapter) Dimensions() int {
	return a.dimensions
}

// Embed returns the embedding vector for one text
func (a *EmbeddingAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := a.EmbedAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("unexpected embedding result size: got %d want 1", len(vectors))
	}
	return vectors[0], nil
}

// EmbedAll embeds multiple texts in a single request, preserving input order
func (a *EmbeddingAdapter) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(a.model),
		Input:      texts,
		Dimensions: a.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d want %d", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index out of range: %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}

	for i, vec := range vectors {
		if len(vec) != a.dimensions {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(vec), a.dimensions)
		}
	}

	a.logger.Debug("Embeddings generated",
		zap.String("model", a.model),
		zap.Int("count", len(vectors)),
	)
	return vectors, nil
}
