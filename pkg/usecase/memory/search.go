package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/ranking"
	"github.com/m-mizutani/goerr/v2"
)

const defaultTopK = 10

// SearchInput describes a semantic retrieval.
type SearchInput struct {
	UserID string
	Tier   model.Tier
	Query  string

	// TopK caps the candidate set pulled from the vector index (default 10).
	TopK int

	// Ranking overrides the UseCase configuration for this call.
	Ranking *ranking.Config
}

// SearchResult is one retrieval hit. Score is the blended
// similarity/recency value, not the raw cosine similarity.
type SearchResult struct {
	ID      model.MemoryID
	Content string
	Score   float64
}

// Search retrieves memories by semantic similarity within one namespace.
// Candidates below the search threshold or without content are dropped;
// survivors are ordered by similarity blended with a recency boost. An
// empty result is not an error.
//
// Ties on the final score keep the vector index order (stable sort), so
// the more similar of two equally scored memories stays first.
func (u *UseCase) Search(ctx context.Context, input SearchInput) ([]SearchResult, error) {
	if err := input.Tier.Validate(); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, goerr.New("search requires a query", goerr.V("user", input.UserID))
	}

	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	embedding, err := u.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	namespace := model.Namespace(input.UserID, input.Tier)
	matches, err := u.index.Query(ctx, namespace, embedding, topK)
	if err != nil {
		return nil, goerr.Wrap(err, "vector query failed", goerr.V("namespace", namespace))
	}

	cfg := u.config(input.Ranking)
	now := u.now()

	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		if match.Metadata.Content == "" || match.Score < cfg.SearchThreshold {
			continue
		}
		results = append(results, SearchResult{
			ID:      match.ID,
			Content: match.Metadata.Content,
			Score:   ranking.Score(match.Score, match.Metadata.CreatedAt, now, cfg),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}
