package models

// Chunk is the unit of retrieval: a bounded span of one document's text.
type Chunk struct {
	ID     string
	DocID  string
	Title  string
	Page   int // 1-based, 0 when unknown
	Offset int // character offset within the source document text
	Text   string
}

// RetrievalCandidate pairs a chunk with its similarity to the query.
// Produced per query, never persisted.
type RetrievalCandidate struct {
	Chunk      Chunk
	Similarity float32
}

// Citation links answer text back to its source document and location.
type Citation struct {
	DocID   string
	Title   string
	Page    int
	Snippet string
}

// Source is the user-facing shape of a citation's origin.
type Source struct {
	DocumentTitle string `json:"document_title"`
	PageNumber    int    `json:"page_number"`
}

// Answer is the response of a single pipeline invocation.
type Answer struct {
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources"`
	Snippets       []string `json:"snippets"`
	RetrievedCount int      `json:"retrieved_count"`
	UsedCount      int      `json:"used_count"`
}
