// Package embed implements the Vector Embedder (C4): a deterministic
// text→fixed-dimension vector call used by the scout pipeline (per-signal
// embeddings) and the situation weaver (narrative/causal embeddings).
package embed

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/fourthplaces/rootsignal/pkg/config"
)

// Embedder is the Go-side interface every caller depends on.
type Embedder interface {
	// Embed returns one dim-D embedding per input text, same order as input.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports D, the configured embedding dimension.
	Dimension() int
}

type openAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

// NewEmbedder builds an Embedder from config.EmbedConfig.
func NewEmbedder(cfg *config.EmbedConfig) (Embedder, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("embed: environment variable %s is not set", cfg.APIKeyEnv)
	}
	return &openAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(cfg.Model),
		dim:    cfg.Dimension,
	}, nil
}

func (e *openAIEmbedder) Dimension() int { return e.dim }

func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      e.model,
		Dimensions: e.dim,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// Cosine returns the cosine similarity of two equal-length embeddings.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
