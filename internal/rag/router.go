package rag

import (
	"context"
	"fmt"
)

// DocumentRouter narrows the corpus to a small candidate set before
// chunk-level retrieval. It searches the document-level index, where each
// vector stands for one whole document.
type DocumentRouter struct {
	index Index
}

func NewDocumentRouter(index Index) *DocumentRouter {
	return &DocumentRouter{index: index}
}

// Route returns the IDs of the topN documents most similar to the query
// vector, best first. An empty corpus routes to an empty set; the caller
// treats that as "insufficient context", not as an error.
func (r *DocumentRouter) Route(ctx context.Context, queryEmbedding []float32, topN int) ([]string, error) {
	if topN < 1 {
		return nil, fmt.Errorf("topN must be >= 1, got %d", topN)
	}
	if d := r.index.Dim(); len(queryEmbedding) != d {
		return nil, fmt.Errorf("route: %w: query dim %d, index dim %d", ErrDimensionMismatch, len(queryEmbedding), d)
	}

	hits, err := r.index.Search(ctx, queryEmbedding, topN)
	if err != nil {
		return nil, fmt.Errorf("route: %w: %v", ErrIndexUnavailable, err)
	}

	docIDs := make([]string, 0, len(hits))
	for _, h := range hits {
		docIDs = append(docIDs, h.ID)
	}
	return docIDs, nil
}
