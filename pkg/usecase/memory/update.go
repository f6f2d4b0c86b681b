package memory

import (
	"context"
	"strings"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Update replaces the content of an existing memory. The tier always comes
// from the canonical record, never from the caller, so an update can never
// move a memory across tiers or users.
//
// Ordering: the vector upsert happens before the structured commit, making
// the structured write the final, least-reversible step. If the structured
// update then fails, the vector index briefly holds newer content than the
// canonical record; the error is surfaced and the window is not hidden.
func (u *UseCase) Update(ctx context.Context, id model.MemoryID, userID string, newContent string) error {
	content := strings.TrimSpace(newContent)
	if content == "" {
		return goerr.Wrap(model.ErrEmptyContent, "update requires content", goerr.V("id", id))
	}

	// Fails with ErrNotFound before any mutation when the record is absent
	// or owned by a different user.
	record, err := u.repo.GetMemory(ctx, id, userID)
	if err != nil {
		return err
	}

	embedding, err := u.embedder.Embed(ctx, content)
	if err != nil {
		return err
	}

	now := u.now()
	meta := record.Metadata()
	meta.Content = content
	meta.UpdatedAt = &now

	entry := model.VectorEntry{
		ID:        record.ID,
		Namespace: model.Namespace(record.UserID, record.Tier),
		Embedding: embedding,
		Metadata:  meta,
	}
	if err := u.index.Upsert(ctx, []model.VectorEntry{entry}); err != nil {
		return goerr.Wrap(err, "failed to upsert vector entry", goerr.V("id", id))
	}

	if err := u.repo.UpdateMemory(ctx, record.ID, userID, content, nil, "", now); err != nil {
		return goerr.Wrap(err, "structured update failed after vector upsert", goerr.V("id", id))
	}

	return nil
}
