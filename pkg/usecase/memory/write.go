package memory

import (
	"context"
	"strings"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/ranking"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// WriteInput describes a single memory write.
type WriteInput struct {
	UserID  string
	Tier    model.Tier
	Content string

	// ID overrides the generated "{userID}:{tier}:{uuid}" convention.
	ID model.MemoryID

	// Importance is optional; nil keeps the default (0) on create and
	// preserves the prior value on a dedup merge.
	Importance *float64

	// Source is an optional origin tag; empty preserves the prior value
	// on a dedup merge.
	Source string

	// Ranking overrides the UseCase configuration for this call.
	Ranking *ranking.Config
}

// Write persists a memory. When the nearest neighbor in the target
// namespace scores at or above the duplicate threshold, the write merges
// into that existing memory and returns its ID instead of creating a new
// record.
//
// The dedup probe and the write are not mutually exclusive: two concurrent
// writes of near-identical content can both miss the neighbor and create
// two records. That duplicate is benign and accepted.
func (u *UseCase) Write(ctx context.Context, input WriteInput) (model.MemoryID, error) {
	if err := input.Tier.Validate(); err != nil {
		return "", err
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return "", goerr.Wrap(model.ErrEmptyContent, "write requires content", goerr.V("user", input.UserID))
	}

	embedding, err := u.embedder.Embed(ctx, content)
	if err != nil {
		return "", err
	}

	cfg := u.config(input.Ranking)
	namespace := model.Namespace(input.UserID, input.Tier)

	matches, err := u.index.Query(ctx, namespace, embedding, 1)
	if err != nil {
		return "", goerr.Wrap(err, "dedup probe failed", goerr.V("namespace", namespace))
	}

	if len(matches) > 0 && matches[0].Score >= cfg.DuplicateThreshold {
		return u.mergeDuplicate(ctx, matches[0], content, embedding, input)
	}

	return u.create(ctx, content, embedding, input)
}

func (u *UseCase) create(ctx context.Context, content string, embedding []float32, input WriteInput) (model.MemoryID, error) {
	now := u.now()

	id := input.ID
	if id == "" {
		id = model.NewMemoryID(input.UserID, input.Tier)
	}

	record := &model.MemoryRecord{
		ID:        id,
		UserID:    input.UserID,
		Tier:      input.Tier,
		Content:   content,
		Source:    input.Source,
		CreatedAt: now,
	}
	if input.Importance != nil {
		record.Importance = *input.Importance
	}

	// Structured store first: it is the source of truth.
	if err := u.repo.PutMemory(ctx, record); err != nil {
		return "", err
	}

	entry := model.VectorEntry{
		ID:        id,
		Namespace: model.Namespace(input.UserID, input.Tier),
		Embedding: embedding,
		Metadata:  record.Metadata(),
	}
	if err := u.index.Insert(ctx, []model.VectorEntry{entry}); err != nil {
		// Roll the structured row back so the net state matches what
		// existed before the call.
		if cerr := u.compensateCreate(ctx, record); cerr != nil {
			logging.From(ctx).Warn("compensation failed, structured row orphaned",
				"id", record.ID, "error", cerr)
		}
		return "", goerr.Wrap(err, "failed to insert vector entry", goerr.V("id", id))
	}

	return id, nil
}

// mergeDuplicate folds a near-identical write into the matched memory:
// created_at stays, updated_at advances, content is replaced, and
// importance/source keep their prior values unless the caller supplied
// new ones. Supplied attributes land in the canonical row and the vector
// snapshot alike, keeping the two in lockstep.
func (u *UseCase) mergeDuplicate(ctx context.Context, match model.VectorMatch, content string, embedding []float32, input WriteInput) (model.MemoryID, error) {
	now := u.now()

	meta := match.Metadata
	meta.Content = content
	meta.UpdatedAt = &now
	if input.Importance != nil {
		meta.Importance = *input.Importance
	}
	if input.Source != "" {
		meta.Source = input.Source
	}

	entry := model.VectorEntry{
		ID:        match.ID,
		Namespace: model.Namespace(input.UserID, input.Tier),
		Embedding: embedding,
		Metadata:  meta,
	}
	if err := u.index.Upsert(ctx, []model.VectorEntry{entry}); err != nil {
		return "", goerr.Wrap(err, "failed to upsert merged vector entry", goerr.V("id", match.ID))
	}

	if err := u.repo.UpdateMemory(ctx, match.ID, input.UserID, content, input.Importance, input.Source, now); err != nil {
		return "", goerr.Wrap(err, "failed to update merged memory", goerr.V("id", match.ID))
	}

	logging.From(ctx).Debug("merged duplicate write",
		"id", match.ID, "score", match.Score, "user", input.UserID)

	return match.ID, nil
}

// compensateCreate is the compensating step of Write: it removes the
// structured row created by a write whose vector insert failed.
func (u *UseCase) compensateCreate(ctx context.Context, record *model.MemoryRecord) error {
	if _, err := u.repo.DeleteMemory(ctx, record.ID, record.UserID); err != nil {
		return goerr.Wrap(err, "failed to delete structured row", goerr.V("id", record.ID))
	}
	return nil
}
