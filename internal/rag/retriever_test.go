package rag

import (
	"context"
	"errors"
	"testing"
)

func TestRetrieve_ShortCircuitsOnEmptyCandidates(t *testing.T) {
	index := &fakeIndex{dim: 3, hits: []Hit{chunkHit("c1", "doc-a", 1, "text", 0.9, 0)}}
	retriever := NewChunkRetriever(index)

	got, retrieved, err := retriever.Retrieve(context.Background(), []float32{1, 0, 0}, nil, 40, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || retrieved != 0 {
		t.Errorf("expected empty result, got %d candidates, retrieved=%d", len(got), retrieved)
	}
	if index.calls != 0 {
		t.Errorf("index must not be queried for empty candidate set, got %d calls", index.calls)
	}
}

func TestRetrieve_FiltersToCandidateDocs(t *testing.T) {
	index := &fakeIndex{
		dim: 3,
		hits: []Hit{
			chunkHit("b1", "doc-b", 1, "other doc, best score", 0.99, 3),
			chunkHit("a1", "doc-a", 1, "first", 0.8, 0),
			chunkHit("b2", "doc-b", 2, "other doc again", 0.7, 4),
			chunkHit("a2", "doc-a", 2, "second", 0.6, 1),
		},
	}
	retriever := NewChunkRetriever(index)

	got, retrieved, err := retriever.Retrieve(context.Background(), []float32{1, 0, 0}, []string{"doc-a"}, 40, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retrieved != 2 {
		t.Errorf("expected 2 survivors, got %d", retrieved)
	}
	for _, cand := range got {
		if cand.Chunk.DocID != "doc-a" {
			t.Errorf("chunk %s from non-candidate document %s", cand.Chunk.ID, cand.Chunk.DocID)
		}
	}
	if got[0].Chunk.ID != "a1" || got[1].Chunk.ID != "a2" {
		t.Errorf("similarity order not preserved: %v", got)
	}
}

func TestRetrieve_TruncatesToFinalK(t *testing.T) {
	index := &fakeIndex{
		dim: 3,
		hits: []Hit{
			chunkHit("a1", "doc-a", 1, "one", 0.9, 0),
			chunkHit("a2", "doc-a", 1, "two", 0.8, 1),
			chunkHit("a3", "doc-a", 2, "three", 0.7, 2),
			chunkHit("a4", "doc-a", 2, "four", 0.6, 3),
			chunkHit("a5", "doc-a", 3, "five", 0.5, 4),
		},
	}
	retriever := NewChunkRetriever(index)

	got, retrieved, err := retriever.Retrieve(context.Background(), []float32{1, 0, 0}, []string{"doc-a"}, 40, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected finalK=2 candidates, got %d", len(got))
	}
	if retrieved != 5 {
		t.Errorf("expected retrieved=5 before truncation, got %d", retrieved)
	}
}

func TestRetrieve_FewerSurvivorsThanFinalK(t *testing.T) {
	index := &fakeIndex{
		dim:  3,
		hits: []Hit{chunkHit("a1", "doc-a", 1, "only one", 0.9, 0)},
	}
	retriever := NewChunkRetriever(index)

	got, retrieved, err := retriever.Retrieve(context.Background(), []float32{1, 0, 0}, []string{"doc-a"}, 40, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || retrieved != 1 {
		t.Errorf("expected single survivor without padding, got %d (retrieved=%d)", len(got), retrieved)
	}
}

func TestRetrieve_InvalidK(t *testing.T) {
	retriever := NewChunkRetriever(&fakeIndex{dim: 3})

	if _, _, err := retriever.Retrieve(context.Background(), []float32{1, 0, 0}, []string{"doc-a"}, 40, 0); err == nil {
		t.Error("expected error for finalK=0")
	}
	if _, _, err := retriever.Retrieve(context.Background(), []float32{1, 0, 0}, []string{"doc-a"}, 2, 4); err == nil {
		t.Error("expected error for fetchK < finalK")
	}
}

func TestRetrieve_DimensionMismatch(t *testing.T) {
	retriever := NewChunkRetriever(&fakeIndex{dim: 768})

	_, _, err := retriever.Retrieve(context.Background(), []float32{1, 0, 0}, []string{"doc-a"}, 40, 4)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRetrieve_ParsesChunkMetadata(t *testing.T) {
	hit := chunkHit("a7", "doc-a", 12, "page twelve text", 0.42, 7)
	hit.Metadata["offset"] = "3400"
	index := &fakeIndex{dim: 3, hits: []Hit{hit}}
	retriever := NewChunkRetriever(index)

	got, _, err := retriever.Retrieve(context.Background(), []float32{1, 0, 0}, []string{"doc-a"}, 40, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := got[0].Chunk
	if c.ID != "a7" || c.DocID != "doc-a" || c.Page != 12 || c.Offset != 3400 || c.Text != "page twelve text" {
		t.Errorf("chunk metadata not mapped: %+v", c)
	}
	if got[0].Similarity != 0.42 {
		t.Errorf("expected similarity 0.42, got %f", got[0].Similarity)
	}
}
