package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound is returned when a memory does not exist or is owned by a
	// different user. No mutation happens in either store in that case.
	ErrNotFound = goerr.New("memory not found")

	// ErrEmbeddingFailure is returned when the embedding provider returns no
	// vectors or a malformed result. Nothing is persisted.
	ErrEmbeddingFailure = goerr.New("embedding provider returned no vectors")

	// ErrInvalidTier is returned for tiers other than "short" and "long".
	ErrInvalidTier = goerr.New("invalid memory tier")

	// ErrEmptyContent is returned when a write carries no content.
	ErrEmptyContent = goerr.New("empty memory content")

	// ErrBatchSize is returned when a batch write holds no entries or more
	// than MaxBatchSize.
	ErrBatchSize = goerr.New("batch size out of range")
)

// MaxBatchSize is the upper bound of entries accepted by a single batch write.
const MaxBatchSize = 50
