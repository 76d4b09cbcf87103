package rag

import (
	"context"
	"fmt"
	"strconv"

	"pdf-rag/internal/models"
)

// ChunkRetriever selects the passages that ground the answer. The chunk
// index cannot be queried pre-restricted to a document subset, so it
// over-fetches fetchK results globally, filters them down to the routed
// documents, and truncates to finalK. fetchK must be tuned large enough
// that filtering usually leaves finalK survivors; when it does not, the
// survivors are returned as-is.
type ChunkRetriever struct {
	index Index
}

func NewChunkRetriever(index Index) *ChunkRetriever {
	return &ChunkRetriever{index: index}
}

// Retrieve returns up to finalK candidates whose doc_id is in
// candidateDocIDs, best first, plus the number of post-filter survivors
// before truncation (reported as retrieved_count). An empty candidate set
// short-circuits without touching the index.
func (r *ChunkRetriever) Retrieve(ctx context.Context, queryEmbedding []float32, candidateDocIDs []string, fetchK, finalK int) ([]models.RetrievalCandidate, int, error) {
	if finalK < 1 {
		return nil, 0, fmt.Errorf("finalK must be >= 1, got %d", finalK)
	}
	if fetchK < finalK {
		return nil, 0, fmt.Errorf("fetchK (%d) must be >= finalK (%d)", fetchK, finalK)
	}
	if len(candidateDocIDs) == 0 {
		return nil, 0, nil
	}
	if d := r.index.Dim(); len(queryEmbedding) != d {
		return nil, 0, fmt.Errorf("retrieve: %w: query dim %d, index dim %d", ErrDimensionMismatch, len(queryEmbedding), d)
	}

	hits, err := r.index.Search(ctx, queryEmbedding, fetchK)
	if err != nil {
		return nil, 0, fmt.Errorf("retrieve: %w: %v", ErrIndexUnavailable, err)
	}

	allowed := make(map[string]bool, len(candidateDocIDs))
	for _, id := range candidateDocIDs {
		allowed[id] = true
	}

	var survivors []models.RetrievalCandidate
	for _, h := range hits {
		if !allowed[h.Metadata[models.MetaDocID]] {
			continue
		}
		survivors = append(survivors, models.RetrievalCandidate{
			Chunk:      chunkFromHit(h),
			Similarity: h.Similarity,
		})
	}

	retrieved := len(survivors)
	if len(survivors) > finalK {
		survivors = survivors[:finalK]
	}
	return survivors, retrieved, nil
}

func chunkFromHit(h Hit) models.Chunk {
	return models.Chunk{
		ID:     h.ID,
		DocID:  h.Metadata[models.MetaDocID],
		Title:  h.Metadata[models.MetaTitle],
		Page:   atoi(h.Metadata[models.MetaPage]),
		Offset: atoi(h.Metadata[models.MetaOffset]),
		Text:   h.Content,
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
