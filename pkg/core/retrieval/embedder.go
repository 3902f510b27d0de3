// Package retrieval implements embedding-backed document search used by
// the retrieval-augmented agent variant.
package retrieval

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/halcyon-ai/halcyon/pkg/core"
)

// DefaultEmbeddingModel is the embedding model used when none is set.
const DefaultEmbeddingModel = "text-embedding-3-small"

// Embedder converts text into dense vectors.
type Embedder interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type openaiEmbedder struct {
	client *goopenai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI embeddings
// endpoint. An optional base URL override supports compatible gateways.
func NewOpenAIEmbedder(apiKey, model, baseURL string) (Embedder, error) {
	if apiKey == "" {
		return nil, core.NewConfigurationError("OpenAI API key is required for embeddings")
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openaiEmbedder{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (e *openaiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (e *openaiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided for embedding")
	}

	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: texts,
		Model: goopenai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = data.Embedding
	}
	return vectors, nil
}
