package adapter_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/adapter/mock"
	"github.com/m-mizutani/gt"
)

// countingEmbedder tracks how many texts reach the underlying provider.
type countingEmbedder struct {
	inner adapter.Embedder
	calls atomic.Int64
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(int64(len(texts)))
	return c.inner.EmbedBatch(ctx, texts)
}

func TestCachedEmbedderHit(t *testing.T) {
	ctx := context.Background()
	counter := &countingEmbedder{inner: mock.New()}
	cached := gt.R1(adapter.NewCachedEmbedder(counter, 100)).NoError(t)

	first := gt.R1(cached.Embed(ctx, "user prefers tea")).NoError(t)
	gt.Equal(t, counter.calls.Load(), int64(1))

	second := gt.R1(cached.Embed(ctx, "user prefers tea")).NoError(t)
	gt.Equal(t, counter.calls.Load(), int64(1))
	gt.Equal(t, first, second)

	// Trimming makes padded input hit the same entry
	third := gt.R1(cached.Embed(ctx, "  user prefers tea  ")).NoError(t)
	gt.Equal(t, counter.calls.Load(), int64(1))
	gt.Equal(t, first, third)
}

func TestCachedEmbedderPartialBatch(t *testing.T) {
	ctx := context.Background()
	counter := &countingEmbedder{inner: mock.New()}
	cached := gt.R1(adapter.NewCachedEmbedder(counter, 100)).NoError(t)

	_, err := cached.Embed(ctx, "alpha")
	gt.NoError(t, err)
	gt.Equal(t, counter.calls.Load(), int64(1))

	vectors := gt.R1(cached.EmbedBatch(ctx, []string{"alpha", "beta", "gamma"})).NoError(t)
	gt.A(t, vectors).Length(3)
	for _, vec := range vectors {
		gt.A(t, vec).Longer(0)
	}

	// Only the two uncached texts reach the provider
	gt.Equal(t, counter.calls.Load(), int64(3))
}

func TestMockEmbedderDeterminism(t *testing.T) {
	ctx := context.Background()
	embedder := mock.New()

	a := gt.R1(embedder.Embed(ctx, "same text")).NoError(t)
	b := gt.R1(embedder.Embed(ctx, "same text")).NoError(t)
	gt.Equal(t, a, b)

	c := gt.R1(embedder.Embed(ctx, "different text")).NoError(t)
	gt.NotEqual(t, a, c)

	// Unit vector
	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	gt.Number(t, norm).Greater(0.99)
	gt.Number(t, norm).Less(1.01)
}
