package core

import "context"

type EmbeddingProvider interface {
	// EmbedTexts embeds a batch of texts; dim 0 lets the model default apply.
	EmbedTexts(ctx context.Context, texts []string, dim int) ([][]float32, error)
}
