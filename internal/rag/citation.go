package rag

import (
	"fmt"
	"strings"

	"pdf-rag/internal/helper"
	"pdf-rag/internal/models"
)

// CitationAssembler turns the final candidate set into the context block
// fed to the model and the citations returned to the caller. Context blocks
// are numbered so the model can cite "[source N]".
type CitationAssembler struct {
	snippetMaxChars int
}

func NewCitationAssembler(snippetMaxChars int) *CitationAssembler {
	return &CitationAssembler{snippetMaxChars: snippetMaxChars}
}

// Assemble builds the prompt context and one citation per distinct chunk,
// preserving descending-similarity order. Duplicate chunks — same document,
// page and text — keep only their first (best ranked) occurrence.
func (a *CitationAssembler) Assemble(candidates []models.RetrievalCandidate) (string, []models.Citation) {
	seen := make(map[string]bool, len(candidates))
	var blocks []string
	var citations []models.Citation

	for _, cand := range candidates {
		c := cand.Chunk
		key := fmt.Sprintf("%s|%d|%s", c.DocID, c.Page, helper.TextHash(c.Text))
		if seen[key] {
			continue
		}
		seen[key] = true

		blocks = append(blocks, fmt.Sprintf("[source %d] (%s p.%s)\n%s",
			len(citations)+1, c.Title, pageLabel(c.Page), c.Text))
		citations = append(citations, models.Citation{
			DocID:   c.DocID,
			Title:   c.Title,
			Page:    c.Page,
			Snippet: helper.Truncate(c.Text, a.snippetMaxChars),
		})
	}

	return strings.Join(blocks, models.ContextSeparator), citations
}

func pageLabel(page int) string {
	if page < 1 {
		return "?"
	}
	return fmt.Sprintf("%d", page)
}
