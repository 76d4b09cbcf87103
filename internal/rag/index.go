package rag

import (
	"context"

	"pdf-rag/internal/chromemdb"
)

// Hit is one nearest-neighbor result: the stored payload plus its
// similarity to the query (higher is better).
type Hit struct {
	ID         string
	Metadata   map[string]string
	Content    string
	Similarity float32
}

// Index is the vector-similarity-search capability the pipeline consumes.
// Implementations must return results best-first with a stable order for
// equal similarities.
type Index interface {
	// Search returns up to k nearest hits; fewer when the index holds fewer
	// vectors, and none when it is empty.
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]Hit, error)
	// Dim is the vector dimension the index was built with.
	Dim() int
}

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces answer text from a system instruction and user prompt.
type Generator interface {
	GenerateAnswer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// chromemIndex adapts a chromemdb.Manager to the Index interface.
type chromemIndex struct {
	m *chromemdb.Manager
}

// NewChromemIndex wraps a chromem collection manager as a pipeline Index.
func NewChromemIndex(m *chromemdb.Manager) Index {
	return chromemIndex{m: m}
}

func (c chromemIndex) Search(ctx context.Context, queryEmbedding []float32, k int) ([]Hit, error) {
	results, err := c.m.Search(ctx, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			ID:         r.ID,
			Metadata:   r.Metadata,
			Content:    r.Content,
			Similarity: r.Similarity,
		}
	}
	return hits, nil
}

func (c chromemIndex) Dim() int { return c.m.Dim() }
