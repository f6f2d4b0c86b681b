package memory_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/adapter/mock"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/repository"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/engram/pkg/vectordb"
)

// fakeClock is a controllable time source shared with the UseCase.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.UnixMilli(time.Now().UnixMilli())}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// stubEmbedder returns fixed vectors per text so similarity between texts
// is fully controlled. Unknown texts are an error to catch typos.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := s.vectors[text]
		if !ok {
			return nil, errors.New("stub embedder has no vector for: " + text)
		}
		out[i] = vec
	}
	return out, nil
}

// brokenEmbedder simulates a provider returning no vectors.
type brokenEmbedder struct{}

func (brokenEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, model.ErrEmbeddingFailure
}

func (brokenEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, model.ErrEmbeddingFailure
}

// faultIndex wraps an Index with switchable fault injection.
type faultIndex struct {
	vectordb.Index
	failInsert bool
	failUpsert bool
}

var errInjected = errors.New("injected vector store failure")

func (f *faultIndex) Insert(ctx context.Context, entries []model.VectorEntry) error {
	if f.failInsert {
		return errInjected
	}
	return f.Index.Insert(ctx, entries)
}

func (f *faultIndex) Upsert(ctx context.Context, entries []model.VectorEntry) error {
	if f.failUpsert {
		return errInjected
	}
	return f.Index.Upsert(ctx, entries)
}

type testEnv struct {
	repo  *repository.MemStore
	index *faultIndex
	clock *fakeClock
	uc    *memory.UseCase
}

func newEnv(embedder adapter.Embedder, opts ...memory.Option) *testEnv {
	env := &testEnv{
		repo:  repository.NewMemStore(),
		index: &faultIndex{Index: vectordb.NewChromem()},
		clock: newFakeClock(),
	}

	opts = append([]memory.Option{memory.WithClock(env.clock.Now)}, opts...)
	env.uc = memory.New(env.repo, env.index, embedder, opts...)
	return env
}

func newMockEnv(opts ...memory.Option) *testEnv {
	return newEnv(mock.New(), opts...)
}
