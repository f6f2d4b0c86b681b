// Package ranking implements the retrieval scoring used by the memory
// coordinator: a semantic similarity score blended with an exponential
// recency boost.
package ranking

import (
	"math"
	"time"
)

// Config holds the tunable knobs of the dedup and retrieval behavior.
// All values are overridable per call.
type Config struct {
	// DuplicateThreshold is the similarity score at or above which a new
	// write is merged into an existing memory instead of creating one.
	DuplicateThreshold float64

	// SearchThreshold is the minimum semantic score for a search match to
	// be considered relevant at all.
	SearchThreshold float64

	// RecencyWeight scales the recency boost applied on top of the
	// semantic score.
	RecencyWeight float64

	// RecencyHalfLife is the decay period of the recency boost.
	RecencyHalfLife time.Duration
}

// Default returns the standard configuration: merge at 0.85 similarity,
// drop below 0.65, 10% maximum recency boost decaying over 3 days.
func Default() Config {
	return Config{
		DuplicateThreshold: 0.85,
		SearchThreshold:    0.65,
		RecencyWeight:      0.1,
		RecencyHalfLife:    72 * time.Hour,
	}
}

// Score combines a semantic similarity score with a recency boost:
//
//	recency = exp(-age / RecencyHalfLife)
//	final   = semantic * (1 + RecencyWeight * recency)
//
// Ages in the future (clock skew between stores) are clamped to zero, so a
// freshly written memory gets the full boost and never more.
func Score(semantic float64, createdAt, now time.Time, cfg Config) float64 {
	age := now.Sub(createdAt)
	if age < 0 {
		age = 0
	}

	recency := math.Exp(-float64(age) / float64(cfg.RecencyHalfLife))
	return semantic * (1 + cfg.RecencyWeight*recency)
}
