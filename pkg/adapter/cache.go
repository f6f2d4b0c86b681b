package adapter

import (
	"context"
	"strings"

	"github.com/dgraph-io/ristretto"
	"github.com/m-mizutani/goerr/v2"
)

// CachedEmbedder wraps an Embedder with a ristretto cache keyed by the
// trimmed input text. Repeat embeddings of the same content (dedup probes,
// re-written memories) skip the provider call.
type CachedEmbedder struct {
	inner Embedder
	cache *ristretto.Cache
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder builds the caching decorator. maxEntries bounds the
// number of cached vectors.
func NewCachedEmbedder(inner Embedder, maxEntries int64) (*CachedEmbedder, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create embedding cache")
	}

	return &CachedEmbedder{
		inner: inner,
		cache: cache,
	}, nil
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		key := strings.TrimSpace(text)
		if cached, ok := c.cache.Get(key); ok {
			vectors[i] = cached.([]float32)
			continue
		}
		missing = append(missing, key)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}

	for i, vec := range fresh {
		vectors[missingIdx[i]] = vec
		c.cache.Set(missing[i], vec, 1)
	}
	c.cache.Wait()

	return vectors, nil
}
