package memory

import (
	"context"
	"strings"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// BatchEntry is one element of a batch write.
type BatchEntry struct {
	Tier       model.Tier
	Content    string
	Importance float64
}

// BatchWrite persists 1 to model.MaxBatchSize memories for one user: all
// structured rows first, then one batched embedding call, then one batched
// vector insert. There is no cross-entry atomicity and no dedup probe. On a
// mid-flight failure the rows committed so far stay committed; they are
// returned together with the error so the caller can inspect or clean up.
func (u *UseCase) BatchWrite(ctx context.Context, userID string, entries []BatchEntry) ([]model.MemoryID, error) {
	if len(entries) == 0 || len(entries) > model.MaxBatchSize {
		return nil, goerr.Wrap(model.ErrBatchSize, "batch must hold 1-50 entries",
			goerr.V("count", len(entries)))
	}

	// Validate everything up front: a bad entry fails the whole batch
	// before anything is persisted.
	now := u.now()
	records := make([]*model.MemoryRecord, len(entries))
	contents := make([]string, len(entries))
	for i, entry := range entries {
		content := strings.TrimSpace(entry.Content)
		record := &model.MemoryRecord{
			ID:         model.NewMemoryID(userID, entry.Tier),
			UserID:     userID,
			Tier:       entry.Tier,
			Content:    content,
			Importance: entry.Importance,
			CreatedAt:  now,
		}
		if err := record.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid batch entry", goerr.V("index", i))
		}

		records[i] = record
		contents[i] = content
	}

	var committed []model.MemoryID
	for i, record := range records {
		if err := u.repo.PutMemory(ctx, record); err != nil {
			return committed, goerr.Wrap(err, "batch aborted on structured write",
				goerr.V("index", i), goerr.V("id", record.ID))
		}
		committed = append(committed, record.ID)
	}

	embeddings, err := u.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return committed, goerr.Wrap(err, "batch committed structurally but embedding failed")
	}

	vectorEntries := make([]model.VectorEntry, len(records))
	for i, record := range records {
		vectorEntries[i] = model.VectorEntry{
			ID:        record.ID,
			Namespace: model.Namespace(record.UserID, record.Tier),
			Embedding: embeddings[i],
			Metadata:  record.Metadata(),
		}
	}
	if err := u.index.Insert(ctx, vectorEntries); err != nil {
		return committed, goerr.Wrap(err, "batch committed structurally but vector insert failed")
	}

	return committed, nil
}
