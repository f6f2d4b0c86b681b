package memory

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
)

// Stats is the per-user memory count breakdown.
type Stats struct {
	Short int
	Long  int
	Total int
}

// Stats aggregates over the structured store only; the vector index is
// not consulted.
func (u *UseCase) Stats(ctx context.Context, userID string) (Stats, error) {
	short := model.TierShort
	shortCount, err := u.repo.CountMemories(ctx, userID, &short)
	if err != nil {
		return Stats{}, err
	}

	long := model.TierLong
	longCount, err := u.repo.CountMemories(ctx, userID, &long)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Short: shortCount,
		Long:  longCount,
		Total: shortCount + longCount,
	}, nil
}
