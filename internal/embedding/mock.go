package embedding

import (
	"context"
	"math"

	"github.com/hyperjump/kotae/internal/vector"
)

// MockEmbedder is a deterministic embedder for tests. It returns a fixed-dimension
// vector derived from the transformed text hash, so the same text always gets the
// same embedding and the passage/query transforms produce distinct vectors.
type MockEmbedder struct {
	dimensions int

	// FailFor makes Embed return an error for these exact texts (pre-transform),
	// used to exercise rebuild failure containment.
	FailFor map[string]error
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a deterministic embedding based on the transformed text hash.
func (e *MockEmbedder) Embed(ctx context.Context, transform Transform, text string) ([]float32, error) {
	if err, ok := e.FailFor[text]; ok {
		return nil, err
	}
	h := HashString(transform.Apply(text))
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	// Unit length so inner product equals cosine similarity.
	return vector.NormalizeL2(emb), nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, transform Transform, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, transform, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelID identifies the mock model.
func (e *MockEmbedder) ModelID() string {
	return "mock-embedder"
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}
