package repository

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const memoryCollection = "memories"

// Firestore implements Repository on Cloud Firestore. Document IDs equal
// memory IDs, so lookup by ID is a direct document read.
type Firestore struct {
	client *firestore.Client
}

var _ Repository = (*Firestore)(nil)

// New creates a Firestore-backed repository.
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client.
func (r *Firestore) Close() error {
	return r.client.Close()
}

// memoryDoc is the Firestore document shape of a MemoryRecord.
type memoryDoc struct {
	ID         string     `firestore:"id"`
	UserID     string     `firestore:"user_id"`
	Tier       string     `firestore:"tier"`
	Content    string     `firestore:"content"`
	Importance float64    `firestore:"importance"`
	Source     string     `firestore:"source,omitempty"`
	CreatedAt  time.Time  `firestore:"created_at"`
	UpdatedAt  *time.Time `firestore:"updated_at,omitempty"`
}

func toDoc(record *model.MemoryRecord) *memoryDoc {
	return &memoryDoc{
		ID:         string(record.ID),
		UserID:     record.UserID,
		Tier:       string(record.Tier),
		Content:    record.Content,
		Importance: record.Importance,
		Source:     record.Source,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func (d *memoryDoc) toRecord() *model.MemoryRecord {
	return &model.MemoryRecord{
		ID:         model.MemoryID(d.ID),
		UserID:     d.UserID,
		Tier:       model.Tier(d.Tier),
		Content:    d.Content,
		Importance: d.Importance,
		Source:     d.Source,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (r *Firestore) PutMemory(ctx context.Context, record *model.MemoryRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	ref := r.client.Collection(memoryCollection).Doc(string(record.ID))
	if _, err := ref.Set(ctx, toDoc(record)); err != nil {
		return goerr.Wrap(err, "failed to put memory", goerr.V("id", record.ID))
	}

	return nil
}

func (r *Firestore) GetMemory(ctx context.Context, id model.MemoryID, userID string) (*model.MemoryRecord, error) {
	snap, err := r.client.Collection(memoryCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "no such memory", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("id", id))
	}

	var doc memoryDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode memory document", goerr.V("id", id))
	}

	// Ownership mismatch is indistinguishable from absence for the caller.
	if doc.UserID != userID {
		return nil, goerr.Wrap(model.ErrNotFound, "no such memory", goerr.V("id", id))
	}

	return doc.toRecord(), nil
}

func (r *Firestore) scopeQuery(userID string, tier *model.Tier) firestore.Query {
	q := r.client.Collection(memoryCollection).Query.Where("user_id", "==", userID)
	if tier != nil {
		q = q.Where("tier", "==", string(*tier))
	}
	return q
}

func (r *Firestore) queryRecords(ctx context.Context, q firestore.Query) ([]*model.MemoryRecord, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var records []*model.MemoryRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories")
		}

		var doc memoryDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory document", goerr.V("doc", snap.Ref.ID))
		}
		records = append(records, doc.toRecord())
	}

	return records, nil
}

func (r *Firestore) ListMemories(ctx context.Context, userID string, tier model.Tier, limit int) ([]*model.MemoryRecord, error) {
	q := r.scopeQuery(userID, &tier).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.queryRecords(ctx, q)
}

func (r *Firestore) ListAllMemories(ctx context.Context, userID string, tier *model.Tier) ([]*model.MemoryRecord, error) {
	return r.queryRecords(ctx, r.scopeQuery(userID, tier))
}

func (r *Firestore) CountMemories(ctx context.Context, userID string, tier *model.Tier) (int, error) {
	// NewAggregationQuery has a pointer receiver, so the query needs a home.
	q := r.scopeQuery(userID, tier)
	aq := q.NewAggregationQuery().WithCount("count")
	results, err := aq.Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count memories", goerr.V("user", userID))
	}

	value, ok := results["count"].(*firestorepb.Value)
	if !ok {
		return 0, goerr.New("unexpected count aggregation result", goerr.V("user", userID))
	}

	return int(value.GetIntegerValue()), nil
}

func (r *Firestore) UpdateMemory(ctx context.Context, id model.MemoryID, userID string, content string, importance *float64, source string, updatedAt time.Time) error {
	// Ownership check first; the update itself is conditional on existence.
	if _, err := r.GetMemory(ctx, id, userID); err != nil {
		return err
	}

	updates := []firestore.Update{
		{Path: "content", Value: content},
		{Path: "updated_at", Value: updatedAt},
	}
	if importance != nil {
		updates = append(updates, firestore.Update{Path: "importance", Value: *importance})
	}
	if source != "" {
		updates = append(updates, firestore.Update{Path: "source", Value: source})
	}

	ref := r.client.Collection(memoryCollection).Doc(string(id))
	_, err := ref.Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "no such memory", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to update memory", goerr.V("id", id))
	}

	return nil
}

func (r *Firestore) DeleteMemory(ctx context.Context, id model.MemoryID, userID string) (bool, error) {
	if _, err := r.GetMemory(ctx, id, userID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	ref := r.client.Collection(memoryCollection).Doc(string(id))
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to delete memory", goerr.V("id", id))
	}

	return true, nil
}

func (r *Firestore) ClearMemories(ctx context.Context, userID string, tier *model.Tier) (int, error) {
	iter := r.scopeQuery(userID, tier).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to iterate memories for clear", goerr.V("user", userID))
		}

		job, err := bw.Delete(snap.Ref)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to enqueue delete", goerr.V("doc", snap.Ref.ID))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	// The enqueue error above only covers admission; whether each delete
	// actually landed is reported through its job.
	count := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return count, goerr.Wrap(err, "bulk delete failed", goerr.V("user", userID))
		}
		count++
	}

	return count, nil
}
