package cli

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/adapter/mock"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/ranking"
	"github.com/m-mizutani/engram/pkg/repository"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/engram/pkg/vectordb"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Structured store
	project  string
	database string

	// Embeddings
	geminiProject  string
	geminiLocation string
	embeddingModel string
	mockEmbedder   bool
	cacheSize      int64

	// Vector index
	indexPath string

	// Ranking
	dupThreshold    float64
	searchThreshold float64
	recencyWeight   float64
	recencyHalfLife time.Duration

	logLevel string

	// One-shot initialization guard: several command paths may ask for
	// the use case, but stores and clients are built exactly once.
	initOnce sync.Once
	uc       *memory.UseCase
	initErr  error
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for Firestore",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "index-path",
			Usage:       "Directory for the persistent vector index (in-memory when empty)",
			Sources:     cli.EnvVars("ENGRAM_INDEX_PATH"),
			Destination: &cfg.indexPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ENGRAM_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// embeddingFlags returns flags for the embedding provider with destination config
func embeddingFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Gemini embedding model name",
			Value:       "gemini-embedding-001",
			Sources:     cli.EnvVars("GEMINI_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
		&cli.BoolFlag{
			Name:        "mock-embedder",
			Usage:       "Use the deterministic local embedder instead of Gemini",
			Sources:     cli.EnvVars("ENGRAM_MOCK_EMBEDDER"),
			Destination: &cfg.mockEmbedder,
		},
		&cli.IntFlag{
			Name:        "embedding-cache-size",
			Usage:       "Max cached embeddings (0 disables the cache)",
			Value:       1024,
			Sources:     cli.EnvVars("ENGRAM_EMBEDDING_CACHE_SIZE"),
			Destination: &cfg.cacheSize,
		},
	}
}

// rankingFlags returns flags tuning dedup and retrieval with destination config
func rankingFlags(cfg *config) []cli.Flag {
	defaults := ranking.Default()
	return []cli.Flag{
		&cli.FloatFlag{
			Name:        "duplicate-threshold",
			Usage:       "Similarity at or above which a write merges into an existing memory",
			Value:       defaults.DuplicateThreshold,
			Sources:     cli.EnvVars("ENGRAM_DUPLICATE_THRESHOLD"),
			Destination: &cfg.dupThreshold,
		},
		&cli.FloatFlag{
			Name:        "search-threshold",
			Usage:       "Minimum similarity for a search hit",
			Value:       defaults.SearchThreshold,
			Sources:     cli.EnvVars("ENGRAM_SEARCH_THRESHOLD"),
			Destination: &cfg.searchThreshold,
		},
		&cli.FloatFlag{
			Name:        "recency-weight",
			Usage:       "Weight of the recency boost in the final score",
			Value:       defaults.RecencyWeight,
			Sources:     cli.EnvVars("ENGRAM_RECENCY_WEIGHT"),
			Destination: &cfg.recencyWeight,
		},
		&cli.DurationFlag{
			Name:        "recency-half-life",
			Usage:       "Time constant of the exponential recency decay",
			Value:       defaults.RecencyHalfLife,
			Sources:     cli.EnvVars("ENGRAM_RECENCY_HALF_LIFE"),
			Destination: &cfg.recencyHalfLife,
		},
	}
}

func (cfg *config) rankingConfig() ranking.Config {
	return ranking.Config{
		DuplicateThreshold: cfg.dupThreshold,
		SearchThreshold:    cfg.searchThreshold,
		RecencyWeight:      cfg.recencyWeight,
		RecencyHalfLife:    cfg.recencyHalfLife,
	}
}

// newRepository creates the structured store client
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newEmbedder creates the embedding provider, optionally behind a cache.
// The Gemini client is built lazily on first use, so commands that never
// embed work without Gemini configuration.
func (cfg *config) newEmbedder() (adapter.Embedder, error) {
	var embedder adapter.Embedder
	if cfg.mockEmbedder {
		embedder = mock.New()
	} else {
		embedder = &lazyEmbedder{build: func(ctx context.Context) (adapter.Embedder, error) {
			if cfg.geminiProject == "" {
				return nil, goerr.New("gemini-project is required")
			}
			var opts []adapter.GeminiOption
			if cfg.embeddingModel != "" {
				opts = append(opts, adapter.WithEmbeddingModel(cfg.embeddingModel))
			}
			return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
		}}
	}

	if cfg.cacheSize > 0 {
		cached, err := adapter.NewCachedEmbedder(embedder, cfg.cacheSize)
		if err != nil {
			return nil, err
		}
		embedder = cached
	}

	return embedder, nil
}

// newIndex creates the vector index, persistent when index-path is set
func (cfg *config) newIndex() (vectordb.Index, error) {
	if cfg.indexPath == "" {
		return vectordb.NewChromem(), nil
	}
	index, err := vectordb.NewPersistent(cfg.indexPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open vector index", goerr.V("path", cfg.indexPath))
	}
	return index, nil
}

// useCase builds the memory coordinator on first call and reuses it after.
func (cfg *config) useCase(ctx context.Context) (*memory.UseCase, error) {
	cfg.initOnce.Do(func() {
		logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))

		repo, err := cfg.newRepository(ctx)
		if err != nil {
			cfg.initErr = err
			return
		}

		index, err := cfg.newIndex()
		if err != nil {
			cfg.initErr = err
			return
		}

		embedder, err := cfg.newEmbedder()
		if err != nil {
			cfg.initErr = err
			return
		}

		cfg.uc = memory.New(repo, index, embedder, memory.WithRanking(cfg.rankingConfig()))
	})

	return cfg.uc, cfg.initErr
}

func parseTier(name string) (model.Tier, error) {
	tier := model.Tier(name)
	if err := tier.Validate(); err != nil {
		return "", err
	}
	return tier, nil
}
