package memory

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Delete removes a memory from both stores: vector entry first, structured
// row second. The returned bool reports whether the structured row was
// actually removed. If the structured delete fails after the vector delete
// succeeded, the memory disappears from search while still counted in
// stats; the error is surfaced, not retried.
func (u *UseCase) Delete(ctx context.Context, id model.MemoryID, userID string) (bool, error) {
	record, err := u.repo.GetMemory(ctx, id, userID)
	if err != nil {
		return false, err
	}

	namespace := model.Namespace(record.UserID, record.Tier)
	if err := u.index.DeleteByIDs(ctx, namespace, []model.MemoryID{record.ID}); err != nil {
		return false, goerr.Wrap(err, "failed to delete vector entry", goerr.V("id", id))
	}

	removed, err := u.repo.DeleteMemory(ctx, record.ID, userID)
	if err != nil {
		return false, goerr.Wrap(err, "structured delete failed after vector delete", goerr.V("id", id))
	}

	return removed, nil
}
