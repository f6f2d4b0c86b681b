package vectordb

import (
	"context"
	"sync"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"
)

// Chromem implements Index on chromem-go, a pure Go embedded vector
// database. Each namespace maps to one collection; similarity is cosine.
type Chromem struct {
	db          *chromem.DB
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

var _ Index = (*Chromem)(nil)

// NewChromem returns an in-memory index.
func NewChromem() *Chromem {
	return &Chromem{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// NewPersistent returns an index persisted under dir.
func NewPersistent(dir string) (*Chromem, error) {
	db, err := chromem.NewPersistentDB(dir, true)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open chromem database", goerr.V("dir", dir))
	}

	return &Chromem{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

func (x *Chromem) collection(namespace string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, ok := x.collections[namespace]
	x.mu.RUnlock()
	if ok {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if col, ok := x.collections[namespace]; ok {
		return col, nil
	}

	// Embeddings are always supplied by the caller, so no embedding func.
	col, err := x.db.GetOrCreateCollection(namespace, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create collection", goerr.V("namespace", namespace))
	}

	x.collections[namespace] = col
	return col, nil
}

func (x *Chromem) add(ctx context.Context, entries []model.VectorEntry) error {
	byNamespace := map[string][]chromem.Document{}
	for _, entry := range entries {
		byNamespace[entry.Namespace] = append(byNamespace[entry.Namespace], chromem.Document{
			ID:        string(entry.ID),
			Content:   entry.Metadata.Content,
			Embedding: entry.Embedding,
			Metadata:  entry.Metadata.Encode(),
		})
	}

	for namespace, docs := range byNamespace {
		col, err := x.collection(namespace)
		if err != nil {
			return err
		}
		if err := col.AddDocuments(ctx, docs, 1); err != nil {
			return goerr.Wrap(err, "failed to add documents",
				goerr.V("namespace", namespace), goerr.V("count", len(docs)))
		}
	}

	return nil
}

func (x *Chromem) Insert(ctx context.Context, entries []model.VectorEntry) error {
	return x.add(ctx, entries)
}

// Upsert replaces entries sharing an ID. chromem keys documents by ID, so
// this is the same operation as Insert.
func (x *Chromem) Upsert(ctx context.Context, entries []model.VectorEntry) error {
	return x.add(ctx, entries)
}

func (x *Chromem) Query(ctx context.Context, namespace string, embedding []float32, topK int) ([]model.VectorMatch, error) {
	col, err := x.collection(namespace)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection
	if count := col.Count(); count < topK {
		topK = count
	}
	if topK <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query collection", goerr.V("namespace", namespace))
	}

	matches := make([]model.VectorMatch, 0, len(results))
	for _, result := range results {
		meta, err := model.DecodeMetadata(result.Metadata)
		if err != nil {
			return nil, goerr.Wrap(err, "broken metadata in vector entry", goerr.V("id", result.ID))
		}
		matches = append(matches, model.VectorMatch{
			ID:       model.MemoryID(result.ID),
			Score:    float64(result.Similarity),
			Metadata: meta,
		})
	}

	return matches, nil
}

func (x *Chromem) DeleteByIDs(ctx context.Context, namespace string, ids []model.MemoryID) error {
	if len(ids) == 0 {
		return nil
	}

	col, err := x.collection(namespace)
	if err != nil {
		return err
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	if err := col.Delete(ctx, nil, nil, raw...); err != nil {
		return goerr.Wrap(err, "failed to delete vector entries",
			goerr.V("namespace", namespace), goerr.V("count", len(ids)))
	}

	return nil
}
