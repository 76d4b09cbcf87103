package parser

import (
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// Page holds the extracted text of one PDF page.
type Page struct {
	Number int // 1-based
	Text   string
}

// ParsePDF extracts per-page plain text from a PDF file. Pages that yield
// no text are dropped; page numbers are preserved.
func ParsePDF(path string) ([]Page, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Int("page", i).Msg("skipping unreadable page")
			continue
		}
		text = normalize(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// normalize collapses runs of blank lines and trims the page.
func normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
