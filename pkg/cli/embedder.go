package cli

import (
	"context"
	"sync"

	"github.com/m-mizutani/engram/pkg/adapter"
)

// lazyEmbedder defers provider construction until the first embedding
// call. Commands that never embed (stats, delete, clear) share the same
// coordinator wiring without requiring Gemini credentials.
type lazyEmbedder struct {
	mu    sync.Mutex
	build func(context.Context) (adapter.Embedder, error)
	inner adapter.Embedder
}

var _ adapter.Embedder = (*lazyEmbedder)(nil)

func (l *lazyEmbedder) provider(ctx context.Context) (adapter.Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inner == nil {
		inner, err := l.build(ctx)
		if err != nil {
			return nil, err
		}
		l.inner = inner
	}
	return l.inner, nil
}

func (l *lazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inner, err := l.provider(ctx)
	if err != nil {
		return nil, err
	}
	return inner.Embed(ctx, text)
}

func (l *lazyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inner, err := l.provider(ctx)
	if err != nil {
		return nil, err
	}
	return inner.EmbedBatch(ctx, texts)
}
