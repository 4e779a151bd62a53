// Package chunk implements persistent chunk storage over the FT index backend.
package chunk

import (
	"context"
	"errors"
	"fmt"

	"github.com/meridianwatch/geodex/internal/db"
	"github.com/meridianwatch/geodex/internal/domain"
	domchunk "github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/domain/search/filter"
	"github.com/meridianwatch/geodex/internal/domain/search/result"
)

// KeyPrefix namespaces all geodex keys in the shared database.
const KeyPrefix = "geodex:"

// DefaultCollection is the main document collection name.
const DefaultCollection = "geopolitical_documents"

// maxCascadeKeys bounds a single cascade delete scan.
const maxCascadeKeys = 10000

// store is the consumer interface for chunk storage (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	DropIndex(ctx context.Context, name string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchKeys(ctx context.Context, index, query string, limit int) ([]string, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig holds index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores document chunks and serves filtered KNN queries.
type Repo struct {
	store      store
	collection string
	vectorDim  int
	hnsw       HNSWConfig
}

// New creates a chunk repository for a collection.
func New(s store, collection string, vectorDim int) *Repo {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Repo{store: s, collection: collection, vectorDim: vectorDim}
}

// WithHNSW sets HNSW index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// Name returns the collection name.
func (r *Repo) Name() string { return r.collection }

// EnsureIndex creates the FT index if it does not exist. A concurrent create
// racing to the same index is idempotent: the losing call sees ErrIndexExists
// and treats it as success.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := r.indexName()

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("index exists %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def := r.indexDefinition()
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// Upsert writes chunks with their vectors. Idempotent by chunk ID: a second
// upsert of the same ID overwrites content and metadata in place.
func (r *Repo) Upsert(ctx context.Context, chunks []domchunk.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%d chunks with %d vectors: %w", len(chunks), len(vectors), domain.ErrVectorDimMismatch)
	}
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(chunks))
	for i := range chunks {
		if r.vectorDim > 0 && len(vectors[i]) != r.vectorDim {
			return fmt.Errorf("chunk %s vector has dim %d, want %d: %w",
				chunks[i].ID(), len(vectors[i]), r.vectorDim, domain.ErrVectorDimMismatch)
		}
		items[i] = db.HashSetItem{
			Key:    r.chunkKey(chunks[i].ID()),
			Fields: buildHashFields(&chunks[i], vectors[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d chunks: %w", len(items), err)
	}
	return nil
}

// Query runs a filtered KNN search and derives relevance from cosine distance.
func (r *Repo) Query(ctx context.Context, vector []float32, n int, criteria filter.Criteria) ([]result.IndexHit, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		Criteria:     criteria,
		Vector:       vector,
		K:            n,
		ReturnFields: returnFields(),
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.collection, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	hits := make([]result.IndexHit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, parseEntry(entry, r.keyPrefix()))
	}
	return hits, nil
}

// DeleteDocument removes every chunk of a document by metadata match, not by
// enumerating chunk ids. Returns the number of removed chunks.
func (r *Repo) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, fmt.Errorf("document ID is required: %w", domain.ErrInvalidQuery)
	}

	query := documentQuery(documentID)
	keys, err := r.store.SearchKeys(ctx, r.indexName(), query, maxCascadeKeys)
	if err != nil {
		return 0, fmt.Errorf("find chunks of %s: %w", documentID, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := r.store.DelMulti(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("delete %d chunks of %s: %w", len(keys), documentID, err)
	}
	return n, nil
}

// Count returns the number of stored chunks without any ranking work.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.collection, err)
	}
	return n, nil
}

// Drop removes every stored chunk hash, then the collection index. A missing
// index is not an error.
func (r *Repo) Drop(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("probe index %s: %w", r.collection, err)
	}
	if !exists {
		return nil
	}

	keys, err := r.store.SearchKeys(ctx, r.indexName(), "*", maxCascadeKeys)
	if err != nil {
		return fmt.Errorf("list %s keys: %w", r.collection, err)
	}
	if len(keys) > 0 {
		if _, err := r.store.DelMulti(ctx, keys); err != nil {
			return fmt.Errorf("delete %s chunks: %w", r.collection, err)
		}
	}

	if err := r.store.DropIndex(ctx, r.indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.collection, err)
	}
	return nil
}

func (r *Repo) keyPrefix() string {
	return fmt.Sprintf("%s%s:", KeyPrefix, r.collection)
}

func (r *Repo) chunkKey(chunkID string) string {
	return r.keyPrefix() + chunkID
}

func (r *Repo) indexName() string {
	return fmt.Sprintf("%s%s:idx", KeyPrefix, r.collection)
}

func (r *Repo) indexDefinition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     r.indexName(),
		Prefixes: []string{r.keyPrefix()},
		Fields: []db.IndexField{
			{Name: "source", Type: db.IndexFieldTag},
			{Name: "region", Type: db.IndexFieldTag},
			{Name: "country", Type: db.IndexFieldTag},
			{Name: "document_id", Type: db.IndexFieldTag},
			{Name: "document_type", Type: db.IndexFieldTag},
			{Name: "year", Type: db.IndexFieldNumeric},
			{Name: "month", Type: db.IndexFieldNumeric},
			{Name: "chunk_index", Type: db.IndexFieldNumeric},
			{Name: "__content", Type: db.IndexFieldText},
			{
				Name:              "__vector",
				Type:              db.IndexFieldVector,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
}
