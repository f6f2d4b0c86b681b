package repository

import (
	"context"
	"time"

	"github.com/m-mizutani/engram/pkg/model"
)

// Repository is the structured store holding the canonical record of each
// memory. It must support efficient lookup by (userID, tier) and by ID.
type Repository interface {
	// PutMemory saves a memory record to the repository
	PutMemory(ctx context.Context, record *model.MemoryRecord) error

	// GetMemory retrieves a memory by ID. Returns model.ErrNotFound when the
	// record is absent or owned by a different user.
	GetMemory(ctx context.Context, id model.MemoryID, userID string) (*model.MemoryRecord, error)

	// ListMemories retrieves up to limit memories of a tier, newest first
	ListMemories(ctx context.Context, userID string, tier model.Tier, limit int) ([]*model.MemoryRecord, error)

	// ListAllMemories retrieves all memories of a user, optionally
	// restricted to a tier
	ListAllMemories(ctx context.Context, userID string, tier *model.Tier) ([]*model.MemoryRecord, error)

	// CountMemories counts memories of a user, optionally restricted to a tier
	CountMemories(ctx context.Context, userID string, tier *model.Tier) (int, error)

	// UpdateMemory replaces the content of a memory and stamps updated_at.
	// A non-nil importance and a non-empty source replace the stored
	// values; otherwise they are left untouched. Returns model.ErrNotFound
	// when no row is affected.
	UpdateMemory(ctx context.Context, id model.MemoryID, userID string, content string, importance *float64, source string, updatedAt time.Time) error

	// DeleteMemory removes a memory. The returned bool reports whether a
	// row was actually removed.
	DeleteMemory(ctx context.Context, id model.MemoryID, userID string) (bool, error)

	// ClearMemories bulk-removes all memories in the scope and returns the
	// number of removed rows
	ClearMemories(ctx context.Context, userID string, tier *model.Tier) (int, error)
}
