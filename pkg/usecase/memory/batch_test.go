package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/gt"
)

func TestBatchWrite(t *testing.T) {
	env := newMockEnv()
	ctx := context.Background()

	ids := gt.R1(env.uc.BatchWrite(ctx, "u1", []memory.BatchEntry{
		{Tier: model.TierShort, Content: "checked the weather"},
		{Tier: model.TierShort, Content: "sent a report"},
		{Tier: model.TierLong, Content: "works as a data engineer", Importance: 0.9},
	})).NoError(t)
	gt.A(t, ids).Length(3)

	stats := gt.R1(env.uc.Stats(ctx, "u1")).NoError(t)
	gt.Equal(t, stats.Short, 2)
	gt.Equal(t, stats.Long, 1)
	gt.Equal(t, stats.Total, 3)

	// Each entry is retrievable through its own namespace
	results := gt.R1(env.uc.Search(ctx, memory.SearchInput{
		UserID: "u1", Tier: model.TierLong, Query: "works as a data engineer",
	})).NoError(t)
	gt.A(t, results).Length(1)
	gt.Equal(t, results[0].ID, ids[2])
}

func TestBatchWriteSizeLimits(t *testing.T) {
	env := newMockEnv()
	ctx := context.Background()

	_, err := env.uc.BatchWrite(ctx, "u1", nil)
	gt.True(t, errors.Is(err, model.ErrBatchSize))

	oversized := make([]memory.BatchEntry, model.MaxBatchSize+1)
	for i := range oversized {
		oversized[i] = memory.BatchEntry{Tier: model.TierShort, Content: "x"}
	}
	_, err = env.uc.BatchWrite(ctx, "u1", oversized)
	gt.True(t, errors.Is(err, model.ErrBatchSize))
}

func TestBatchWriteValidatesBeforePersisting(t *testing.T) {
	env := newMockEnv()
	ctx := context.Background()

	_, err := env.uc.BatchWrite(ctx, "u1", []memory.BatchEntry{
		{Tier: model.TierShort, Content: "fine"},
		{Tier: model.Tier("bogus"), Content: "broken"},
	})
	gt.True(t, errors.Is(err, model.ErrInvalidTier))

	// The valid entry must not have been committed either
	count := gt.R1(env.repo.CountMemories(ctx, "u1", nil)).NoError(t)
	gt.Equal(t, count, 0)

	// An out-of-range importance is caught up front as well
	_, err = env.uc.BatchWrite(ctx, "u1", []memory.BatchEntry{
		{Tier: model.TierShort, Content: "fine"},
		{Tier: model.TierShort, Content: "overweight", Importance: 2.0},
	})
	gt.Error(t, err)

	count = gt.R1(env.repo.CountMemories(ctx, "u1", nil)).NoError(t)
	gt.Equal(t, count, 0)
}

func TestBatchWritePartialFailure(t *testing.T) {
	env := newEnv(brokenEmbedder{})
	ctx := context.Background()

	// Structured rows commit before the embedding call fails; they stay
	// committed and are reported back with the error.
	ids, err := env.uc.BatchWrite(ctx, "u1", []memory.BatchEntry{
		{Tier: model.TierShort, Content: "first"},
		{Tier: model.TierShort, Content: "second"},
	})
	gt.True(t, errors.Is(err, model.ErrEmbeddingFailure))
	gt.A(t, ids).Length(2)

	count := gt.R1(env.repo.CountMemories(ctx, "u1", nil)).NoError(t)
	gt.Equal(t, count, 2)
}

func TestBatchWriteVectorFailureKeepsRows(t *testing.T) {
	env := newMockEnv()
	ctx := context.Background()
	env.index.failInsert = true

	ids, err := env.uc.BatchWrite(ctx, "u1", []memory.BatchEntry{
		{Tier: model.TierShort, Content: "kept despite vector failure"},
	})
	gt.True(t, errors.Is(err, errInjected))
	gt.A(t, ids).Length(1)

	// Unlike single Write, batch has no compensation: the documented
	// limitation leaves committed rows in place.
	count := gt.R1(env.repo.CountMemories(ctx, "u1", nil)).NoError(t)
	gt.Equal(t, count, 1)
}
