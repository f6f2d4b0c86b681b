package adapter

import "context"

// Embedder converts text into fixed-length embedding vectors. Inputs are
// trimmed before embedding; an empty or malformed provider result yields
// model.ErrEmbeddingFailure.
type Embedder interface {
	// Embed converts a single text to an embedding vector
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts in one provider call, returning
	// one vector per input in order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
