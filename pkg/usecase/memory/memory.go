// Package memory implements the coordinator that keeps the structured store
// and the vector index consistent for each logical memory. It owns the
// dedup policy on write, the compensation rules on failure, and the
// similarity/recency ranking on search. Callers interact only with this
// package; the stores behind it never see each other.
package memory

import (
	"time"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/ranking"
	"github.com/m-mizutani/engram/pkg/repository"
	"github.com/m-mizutani/engram/pkg/vectordb"
)

// UseCase orchestrates memory operations across the structured store, the
// vector index and the embedding provider. The two stores are not
// transactionally linked; multi-store operations are ordered sequences of
// forward steps with at most one compensating step.
type UseCase struct {
	repo     repository.Repository
	index    vectordb.Index
	embedder adapter.Embedder
	ranking  ranking.Config
	now      func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithRanking overrides the default dedup/retrieval configuration.
func WithRanking(cfg ranking.Config) Option {
	return func(uc *UseCase) {
		uc.ranking = cfg
	}
}

// WithClock replaces the time source. Used by tests to control timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a memory UseCase instance.
func New(repo repository.Repository, index vectordb.Index, embedder adapter.Embedder, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:     repo,
		index:    index,
		embedder: embedder,
		ranking:  ranking.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (u *UseCase) config(override *ranking.Config) ranking.Config {
	if override != nil {
		return *override
	}
	return u.ranking
}
