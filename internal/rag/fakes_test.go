package rag

import (
	"context"
	"strconv"
)

// fakeIndex returns its hits best-first, truncated to k, like a real index.
type fakeIndex struct {
	hits  []Hit
	dim   int
	err   error
	calls int
}

func (f *fakeIndex) Search(ctx context.Context, queryEmbedding []float32, k int) ([]Hit, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if k > len(f.hits) {
		k = len(f.hits)
	}
	return f.hits[:k], nil
}

func (f *fakeIndex) Dim() int { return f.dim }

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type fakeGenerator struct {
	text       string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeGenerator) GenerateAnswer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func docHit(docID string, sim float32, seq int) Hit {
	return Hit{
		ID:         docID,
		Metadata:   map[string]string{"doc_id": docID, "title": docID, "seq": strconv.Itoa(seq)},
		Similarity: sim,
	}
}

func chunkHit(id, docID string, page int, text string, sim float32, seq int) Hit {
	return Hit{
		ID: id,
		Metadata: map[string]string{
			"doc_id": docID,
			"title":  docID,
			"page":   strconv.Itoa(page),
			"seq":    strconv.Itoa(seq),
			"offset": "0",
		},
		Content:    text,
		Similarity: sim,
	}
}
