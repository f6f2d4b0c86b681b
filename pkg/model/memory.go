package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID in the form
// "{userID}:{tier}:{uuid}".
func NewMemoryID(userID string, tier Tier) MemoryID {
	return MemoryID(fmt.Sprintf("%s:%s:%s", userID, tier, uuid.New().String()))
}

// Tier is the memory partition. It is immutable once a record is created.
type Tier string

const (
	TierShort Tier = "short"
	TierLong  Tier = "long"
)

// Tiers lists all valid tiers.
var Tiers = []Tier{TierShort, TierLong}

func (t Tier) Validate() error {
	switch t {
	case TierShort, TierLong:
		return nil
	}
	return goerr.Wrap(ErrInvalidTier, "unknown tier", goerr.V("tier", string(t)))
}

// Namespace returns the vector index namespace for a user and tier.
// The namespace is the sole isolation boundary between users and tiers.
func Namespace(userID string, tier Tier) string {
	return userID + ":" + string(tier)
}

// MemoryRecord is the canonical structured record of a memory. Exactly one
// row exists per ID; (UserID, Tier) is the primary access path for listing.
type MemoryRecord struct {
	ID         MemoryID
	UserID     string
	Tier       Tier
	Content    string
	Importance float64
	Source     string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Validate checks the invariants required before persisting a record.
func (r *MemoryRecord) Validate() error {
	if r.ID == "" {
		return goerr.New("memory record has no ID")
	}
	if r.UserID == "" {
		return goerr.New("memory record has no user ID")
	}
	if err := r.Tier.Validate(); err != nil {
		return err
	}
	if r.Content == "" {
		return goerr.Wrap(ErrEmptyContent, "memory content is empty", goerr.V("id", r.ID))
	}
	if r.Importance < 0 || r.Importance > 1 {
		return goerr.New("importance out of range [0,1]",
			goerr.V("id", r.ID), goerr.V("importance", r.Importance))
	}
	return nil
}

// Metadata builds the vector-side metadata snapshot of this record.
func (r *MemoryRecord) Metadata() MemoryMetadata {
	return MemoryMetadata{
		UserID:     r.UserID,
		Tier:       r.Tier,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Importance: r.Importance,
		Source:     r.Source,
	}
}

// VectorEntry is the vector-index counterpart of a MemoryRecord. The two
// share an ID, are created and destroyed together, and are kept consistent
// by the coordinator's compensation rules rather than a transaction.
type VectorEntry struct {
	ID        MemoryID
	Namespace string
	Embedding []float32
	Metadata  MemoryMetadata
}

// VectorMatch is a single nearest-neighbor result.
type VectorMatch struct {
	ID       MemoryID
	Score    float64
	Metadata MemoryMetadata
}
