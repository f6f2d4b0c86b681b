package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// MemStore implements Repository with in-process maps. It exists for unit
// tests and local runs without GCP credentials; the semantics mirror the
// Firestore implementation.
type MemStore struct {
	mu      sync.RWMutex
	records map[model.MemoryID]model.MemoryRecord
}

var _ Repository = (*MemStore)(nil)

// NewMemStore returns an empty in-process repository.
func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[model.MemoryID]model.MemoryRecord),
	}
}

func (r *MemStore) PutMemory(ctx context.Context, record *model.MemoryRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = *record
	return nil
}

func (r *MemStore) GetMemory(ctx context.Context, id model.MemoryID, userID string) (*model.MemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok || record.UserID != userID {
		return nil, goerr.Wrap(model.ErrNotFound, "no such memory", goerr.V("id", id))
	}

	out := record
	return &out, nil
}

func (r *MemStore) inScope(record model.MemoryRecord, userID string, tier *model.Tier) bool {
	if record.UserID != userID {
		return false
	}
	return tier == nil || record.Tier == *tier
}

func (r *MemStore) ListMemories(ctx context.Context, userID string, tier model.Tier, limit int) ([]*model.MemoryRecord, error) {
	records, err := r.ListAllMemories(ctx, userID, &tier)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *MemStore) ListAllMemories(ctx context.Context, userID string, tier *model.Tier) ([]*model.MemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.MemoryRecord
	for _, record := range r.records {
		if r.inScope(record, userID, tier) {
			copied := record
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *MemStore) CountMemories(ctx context.Context, userID string, tier *model.Tier) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, record := range r.records {
		if r.inScope(record, userID, tier) {
			count++
		}
	}
	return count, nil
}

func (r *MemStore) UpdateMemory(ctx context.Context, id model.MemoryID, userID string, content string, importance *float64, source string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok || record.UserID != userID {
		return goerr.Wrap(model.ErrNotFound, "no such memory", goerr.V("id", id))
	}

	record.Content = content
	if importance != nil {
		record.Importance = *importance
	}
	if source != "" {
		record.Source = source
	}
	record.UpdatedAt = &updatedAt
	r.records[id] = record
	return nil
}

func (r *MemStore) DeleteMemory(ctx context.Context, id model.MemoryID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok || record.UserID != userID {
		return false, nil
	}

	delete(r.records, id)
	return true, nil
}

func (r *MemStore) ClearMemories(ctx context.Context, userID string, tier *model.Tier) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for id, record := range r.records {
		if r.inScope(record, userID, tier) {
			delete(r.records, id)
			count++
		}
	}
	return count, nil
}
