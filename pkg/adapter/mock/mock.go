// Package mock provides a deterministic Embedder for tests. Identical texts
// always map to identical unit vectors, so literal re-writes score 1.0 in
// cosine similarity while unrelated texts land far apart.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

type Embedder struct {
	dimensions int
}

func New() *Embedder {
	return &Embedder{dimensions: 384}
}

func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.vector(strings.TrimSpace(text))
	}
	return vectors, nil
}

// vector derives a pseudo-random unit vector from the text hash via a
// linear congruential generator.
func (m *Embedder) vector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, m.dimensions)
	for i := range embedding {
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding)
}

func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
