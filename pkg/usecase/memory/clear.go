package memory

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Clear removes all memories of a user, optionally restricted to one tier.
// The reported count is read before any deletion. Confirmation gating
// belongs to the caller, not here.
func (u *UseCase) Clear(ctx context.Context, userID string, tier *model.Tier) (int, error) {
	if tier != nil {
		if err := tier.Validate(); err != nil {
			return 0, err
		}
	}

	count, err := u.repo.CountMemories(ctx, userID, tier)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	records, err := u.repo.ListAllMemories(ctx, userID, tier)
	if err != nil {
		return 0, err
	}

	// A clear across all tiers spans multiple namespaces.
	byNamespace := map[string][]model.MemoryID{}
	for _, record := range records {
		namespace := model.Namespace(record.UserID, record.Tier)
		byNamespace[namespace] = append(byNamespace[namespace], record.ID)
	}

	for namespace, ids := range byNamespace {
		if err := u.index.DeleteByIDs(ctx, namespace, ids); err != nil {
			return 0, goerr.Wrap(err, "failed to clear vector entries",
				goerr.V("namespace", namespace))
		}
	}

	if _, err := u.repo.ClearMemories(ctx, userID, tier); err != nil {
		return 0, goerr.Wrap(err, "structured clear failed after vector clear",
			goerr.V("user", userID))
	}

	logging.From(ctx).Info("cleared memories", "user", userID, "count", count)

	return count, nil
}
