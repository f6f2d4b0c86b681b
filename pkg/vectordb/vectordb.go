// Package vectordb provides the nearest-neighbor index holding one vector
// and metadata snapshot per memory. Namespaces ("{userID}:{tier}") are the
// sole isolation boundary between users and tiers.
package vectordb

import (
	"context"

	"github.com/m-mizutani/engram/pkg/model"
)

// Index is the vector index capability surface. The similarity metric and
// index structure are implementation details.
type Index interface {
	// Insert adds entries to their namespaces
	Insert(ctx context.Context, entries []model.VectorEntry) error

	// Upsert adds entries, replacing any existing entry with the same ID
	Upsert(ctx context.Context, entries []model.VectorEntry) error

	// Query returns up to topK nearest neighbors in the namespace with
	// their metadata snapshots, best match first
	Query(ctx context.Context, namespace string, embedding []float32, topK int) ([]model.VectorMatch, error)

	// DeleteByIDs removes entries from the namespace. Unknown IDs are ignored.
	DeleteByIDs(ctx context.Context, namespace string, ids []model.MemoryID) error
}
