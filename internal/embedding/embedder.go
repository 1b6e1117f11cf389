// Package embedding provides text embedding with passage/query transforms and caching.
package embedding

import "context"

// Transform selects the text transform applied before embedding. Asymmetric
// models (E5 family) embed stored content and search input differently; mixing
// the two degrades similarity scores, so the transform is an explicit argument
// rather than something callers bake into the text.
type Transform string

const (
	// TransformPassage is applied to stored FAQ content.
	TransformPassage Transform = "passage"
	// TransformQuery is applied to user search input.
	TransformQuery Transform = "query"
)

// Apply returns text with the transform's model prefix prepended.
func (t Transform) Apply(text string) string {
	switch t {
	case TransformPassage:
		return "passage: " + text
	case TransformQuery:
		return "query: " + text
	}
	return text
}

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, transform Transform, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, transform Transform, texts []string) ([][]float32, error)
	Dimensions() int
	// ModelID identifies the embedding model; indexes built with one model
	// must not be served with another.
	ModelID() string
	Close() error
}
