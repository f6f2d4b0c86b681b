package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/ranking"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/gt"
)

func TestSearchThresholdAndOrdering(t *testing.T) {
	env := newEnv(&stubEmbedder{vectors: map[string][]float32{
		"what do I drink":  {1, 0, 0, 0},
		"drinks coffee":    {1, 0, 0, 0},
		"enjoys tea":       {0.8, 0.6, 0, 0},
		"rides a unicycle": {0, 1, 0, 0},
	}})
	ctx := context.Background()

	for _, content := range []string{"drinks coffee", "enjoys tea", "rides a unicycle"} {
		gt.R1(env.uc.Write(ctx, memory.WriteInput{
			UserID: "u1", Tier: model.TierLong, Content: content,
		})).NoError(t)
	}

	results := gt.R1(env.uc.Search(ctx, memory.SearchInput{
		UserID: "u1", Tier: model.TierLong, Query: "what do I drink",
	})).NoError(t)

	// Similarity 0.0 falls below the 0.65 search threshold.
	gt.A(t, results).Length(2)
	gt.Equal(t, results[0].Content, "drinks coffee")
	gt.Equal(t, results[1].Content, "enjoys tea")
	for i := 1; i < len(results); i++ {
		gt.Number(t, results[i-1].Score).GreaterOrEqual(results[i].Score)
	}
}

func TestSearchRecencyBoost(t *testing.T) {
	env := newEnv(&stubEmbedder{vectors: map[string][]float32{
		"query":      {1, 0, 0, 0},
		"old habit":  {1, 0, 0, 0},
		"new detail": {0.93, 0.36756, 0, 0},
	}})
	ctx := context.Background()

	gt.R1(env.uc.Write(ctx, memory.WriteInput{
		UserID: "u1", Tier: model.TierLong, Content: "old habit",
	})).NoError(t)

	// Ten half-lives later the old memory's recency boost is gone.
	env.clock.Advance(720 * time.Hour)

	// Raise the dedup threshold for this write: the new memory sits at
	// similarity 0.93 to the old one and must be created, not merged.
	loose := ranking.Default()
	loose.DuplicateThreshold = 0.95
	gt.R1(env.uc.Write(ctx, memory.WriteInput{
		UserID: "u1", Tier: model.TierLong, Content: "new detail",
		Ranking: &loose,
	})).NoError(t)

	// With the boost, the fresh 0.93 match outranks the stale exact match.
	boosted := gt.R1(env.uc.Search(ctx, memory.SearchInput{
		UserID: "u1", Tier: model.TierLong, Query: "query",
	})).NoError(t)
	gt.A(t, boosted).Length(2)
	gt.Equal(t, boosted[0].Content, "new detail")

	// With recency disabled, raw similarity wins.
	flat := ranking.Default()
	flat.RecencyWeight = 0
	plain := gt.R1(env.uc.Search(ctx, memory.SearchInput{
		UserID: "u1", Tier: model.TierLong, Query: "query",
		Ranking: &flat,
	})).NoError(t)
	gt.A(t, plain).Length(2)
	gt.Equal(t, plain[0].Content, "old habit")
}

func TestSearchScopedToNamespace(t *testing.T) {
	env := newMockEnv()
	ctx := context.Background()

	gt.R1(env.uc.Write(ctx, memory.WriteInput{
		UserID: "u1", Tier: model.TierLong, Content: "keeps a garden",
	})).NoError(t)

	// Same query against the other tier and another user finds nothing.
	empty := gt.R1(env.uc.Search(ctx, memory.SearchInput{
		UserID: "u1", Tier: model.TierShort, Query: "keeps a garden",
	})).NoError(t)
	gt.A(t, empty).Length(0)

	empty = gt.R1(env.uc.Search(ctx, memory.SearchInput{
		UserID: "u2", Tier: model.TierLong, Query: "keeps a garden",
	})).NoError(t)
	gt.A(t, empty).Length(0)
}

func TestSearchTopK(t *testing.T) {
	env := newEnv(&stubEmbedder{vectors: map[string][]float32{
		"q": {1, 0, 0, 0},
		"a": {1, 0, 0, 0},
		"b": {0.8, 0.6, 0, 0},
		"c": {0.7, 0.71414, 0, 0},
	}})
	ctx := context.Background()

	loose := ranking.Default()
	loose.DuplicateThreshold = 1.01
	for _, content := range []string{"a", "b", "c"} {
		gt.R1(env.uc.Write(ctx, memory.WriteInput{
			UserID: "u1", Tier: model.TierShort, Content: content,
			Ranking: &loose,
		})).NoError(t)
	}

	results := gt.R1(env.uc.Search(ctx, memory.SearchInput{
		UserID: "u1", Tier: model.TierShort, Query: "q", TopK: 2,
	})).NoError(t)
	gt.A(t, results).Length(2)
}

func TestSearchValidation(t *testing.T) {
	env := newMockEnv()
	ctx := context.Background()

	_, err := env.uc.Search(ctx, memory.SearchInput{
		UserID: "u1", Tier: model.Tier("bogus"), Query: "anything",
	})
	gt.Error(t, err)

	_, err = env.uc.Search(ctx, memory.SearchInput{
		UserID: "u1", Tier: model.TierShort, Query: "   ",
	})
	gt.Error(t, err)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	env := newEnv(brokenEmbedder{})
	ctx := context.Background()

	_, err := env.uc.Search(ctx, memory.SearchInput{
		UserID: "u1", Tier: model.TierShort, Query: "anything",
	})
	gt.Error(t, err)
}
