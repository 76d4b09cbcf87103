package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"

	"pdf-rag/internal/models"
)

// Manager wraps one chromem-go collection used as a vector index. Two
// instances exist per corpus: a document-level index for routing and a
// chunk-level index for retrieval. Both are built at ingestion time and
// opened read-only while serving.
type Manager struct {
	db         *chromem.DB
	collection *chromem.Collection
	dim        int
	name       string
}

const (
	DocCollection   = "documents"
	ChunkCollection = "chunks"

	compress = false
)

// NewPersistentManager opens (or creates) the on-disk index at dbPath.
func NewPersistentManager(dbPath, collectionName string, dim int) (*Manager, error) {
	db, err := chromem.NewPersistentDB(dbPath, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	return newManager(db, collectionName, dim)
}

// NewMemoryManager creates an in-memory index. Used for dry runs and tests.
func NewMemoryManager(collectionName string, dim int) (*Manager, error) {
	return newManager(chromem.NewDB(), collectionName, dim)
}

func newManager(db *chromem.DB, collectionName string, dim int) (*Manager, error) {
	c, err := db.GetOrCreateCollection(collectionName, nil, stubEmbeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	return &Manager{db: db, collection: c, dim: dim, name: collectionName}, nil
}

// All vectors are computed upstream; chromem must never embed on its own.
func stubEmbeddingFunc(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("collection requires precomputed embeddings")
}

// Dim is the vector dimension this index was built for.
func (m *Manager) Dim() int { return m.dim }

// Count returns the number of stored vectors.
func (m *Manager) Count() int { return m.collection.Count() }

// Add stores documents with precomputed embeddings.
func (m *Manager) Add(ctx context.Context, docs []chromem.Document) error {
	if len(docs) == 0 {
		return nil
	}
	for _, d := range docs {
		if len(d.Embedding) != m.dim {
			return fmt.Errorf("document %s: embedding dim %d, index dim %d", d.ID, len(d.Embedding), m.dim)
		}
	}
	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// DeleteByDocID drops all vectors belonging to one source document.
func (m *Manager) DeleteByDocID(ctx context.Context, docID string) error {
	err := m.collection.Delete(ctx, map[string]string{models.MetaDocID: docID}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete vectors for %s: %v", docID, err)
	}
	return nil
}

// Search returns the k nearest vectors to queryEmbedding, best first.
// k is clamped to the collection size; an empty collection yields an empty
// result, not an error. Equal similarities are ordered by the ingestion
// sequence number stored in metadata, so results are stable across calls.
func (m *Manager) Search(ctx context.Context, queryEmbedding []float32, k int) ([]chromem.Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}
	if len(queryEmbedding) != m.dim {
		return nil, fmt.Errorf("query embedding dim %d, index dim %d", len(queryEmbedding), m.dim)
	}
	if n := m.collection.Count(); n == 0 {
		return nil, nil
	} else if k > n {
		k = n
	}

	results, err := m.collection.QueryEmbedding(ctx, queryEmbedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return seqOf(results[i]) < seqOf(results[j])
	})
	return results, nil
}

func seqOf(r chromem.Result) int {
	n, err := strconv.Atoi(r.Metadata[models.MetaSeq])
	if err != nil {
		return 0
	}
	return n
}
