package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/textsplitter"

	"pdf-rag/internal/catalog"
	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/config"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/models"
	"pdf-rag/internal/parser"
)

// Embedder is the subset of the embedding client ingestion needs.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Ingestor builds the two vector indexes and the document catalog from a
// directory of PDFs. Files whose content hash matches the catalog entry
// are skipped; changed files have their old vectors dropped first.
type Ingestor struct {
	cfg        *config.Config
	embedder   Embedder
	docIndex   *chromemdb.Manager
	chunkIndex *chromemdb.Manager
	catalog    *catalog.Store
	log        zerolog.Logger
}

// Summary reports what one ingestion run did.
type Summary struct {
	Documents int
	Skipped   int
	Chunks    int
}

func New(cfg *config.Config, embedder Embedder, docIndex, chunkIndex *chromemdb.Manager, cat *catalog.Store, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		cfg:        cfg,
		embedder:   embedder,
		docIndex:   docIndex,
		chunkIndex: chunkIndex,
		catalog:    cat,
		log:        log,
	}
}

// Run ingests every *.pdf under dir, in name order. With dryRun set it
// parses and chunks but neither embeds nor writes.
func (in *Ingestor) Run(ctx context.Context, dir string, dryRun bool) (*Summary, error) {
	paths, err := listPDFs(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no pdfs found in %s", dir)
	}

	summary := &Summary{}
	docSeq := 0
	chunkSeq := 0

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := filepath.Base(path)
		docID := helper.DocID(name)
		title := strings.TrimSuffix(name, filepath.Ext(name))

		hash, err := fileHash(path)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", path, err)
		}

		existing, err := in.lookup(ctx, docID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ContentHash == hash {
			in.log.Info().Str("file", name).Str("doc_id", docID).Msg("unchanged, skipping")
			summary.Skipped++
			docSeq++
			chunkSeq += existing.Chunks
			continue
		}

		pages, err := parser.ParsePDF(path)
		if err != nil {
			return nil, err
		}
		if len(pages) == 0 {
			in.log.Warn().Str("file", name).Msg("no extractable text, skipping")
			continue
		}

		chunks, err := buildChunks(docID, title, pages, in.cfg.Chunking.Size, in.cfg.Chunking.Overlap)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", name, err)
		}

		in.log.Info().
			Str("file", name).
			Str("doc_id", docID).
			Int("pages", len(pages)).
			Int("chunks", len(chunks)).
			Msg("parsed document")

		if dryRun {
			summary.Documents++
			summary.Chunks += len(chunks)
			docSeq++
			chunkSeq += len(chunks)
			continue
		}

		if existing != nil {
			// Content changed: replace the document's vectors.
			if err := in.docIndex.DeleteByDocID(ctx, docID); err != nil {
				return nil, err
			}
			if err := in.chunkIndex.DeleteByDocID(ctx, docID); err != nil {
				return nil, err
			}
		}

		if err := in.indexDocument(ctx, docID, title, pages, docSeq); err != nil {
			return nil, fmt.Errorf("index document %s: %w", name, err)
		}
		if err := in.indexChunks(ctx, chunks, chunkSeq); err != nil {
			return nil, fmt.Errorf("index chunks of %s: %w", name, err)
		}

		err = in.catalog.Upsert(ctx, &catalog.Document{
			DocID:       docID,
			Title:       title,
			Path:        path,
			ContentHash: hash,
			Pages:       len(pages),
			Chunks:      len(chunks),
			IngestedAt:  time.Now().UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", name, err)
		}

		summary.Documents++
		summary.Chunks += len(chunks)
		docSeq++
		chunkSeq += len(chunks)
	}

	return summary, nil
}

func (in *Ingestor) lookup(ctx context.Context, docID string) (*catalog.Document, error) {
	if in.catalog == nil {
		return nil, nil
	}
	return in.catalog.Get(ctx, docID)
}

// indexDocument stores one document-level vector for routing. Only the
// first DocTextMaxChars of the document text contribute to the embedding.
func (in *Ingestor) indexDocument(ctx context.Context, docID, title string, pages []parser.Page, seq int) error {
	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Text)
	}
	routeText := helper.Clip(sb.String(), in.cfg.RAG.DocTextMaxChars)

	vec, err := in.embedder.EmbedQuery(ctx, routeText)
	if err != nil {
		return err
	}

	return in.docIndex.Add(ctx, []chromem.Document{{
		ID:      docID,
		Content: routeText,
		Metadata: map[string]string{
			models.MetaDocID: docID,
			models.MetaTitle: title,
			models.MetaSeq:   strconv.Itoa(seq),
		},
		Embedding: vec,
	}})
}

func (in *Ingestor) indexChunks(ctx context.Context, chunks []models.Chunk, baseSeq int) error {
	docs := make([]chromem.Document, 0, len(chunks))
	for i, c := range chunks {
		vec, err := in.embedder.EmbedQuery(ctx, c.Text)
		if err != nil {
			return err
		}
		docs = append(docs, chromem.Document{
			ID:      c.ID,
			Content: c.Text,
			Metadata: map[string]string{
				models.MetaDocID:  c.DocID,
				models.MetaTitle:  c.Title,
				models.MetaPage:   strconv.Itoa(c.Page),
				models.MetaOffset: strconv.Itoa(c.Offset),
				models.MetaSeq:    strconv.Itoa(baseSeq + i),
			},
			Embedding: vec,
		})
	}
	return in.chunkIndex.Add(ctx, docs)
}

// buildChunks splits each page with the recursive character splitter and
// tracks every chunk's offset within the document text. The split is
// deterministic, so chunk IDs are stable for unchanged content.
func buildChunks(docID, title string, pages []parser.Page, size, overlap int) ([]models.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
	)

	var chunks []models.Chunk
	docOffset := 0
	ordinal := 0

	for _, page := range pages {
		pieces, err := splitter.SplitText(page.Text)
		if err != nil {
			return nil, err
		}
		searchFrom := 0
		for _, piece := range pieces {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			offset := docOffset
			if idx := strings.Index(page.Text[searchFrom:], piece); idx >= 0 {
				offset = docOffset + searchFrom + idx
				searchFrom += idx + 1
			}
			chunks = append(chunks, models.Chunk{
				ID:     fmt.Sprintf("%s-%04d", docID, ordinal),
				DocID:  docID,
				Title:  title,
				Page:   page.Number,
				Offset: offset,
				Text:   piece,
			})
			ordinal++
		}
		docOffset += len(page.Text) + 2 // pages joined with "\n\n"
	}
	return chunks, nil
}

func listPDFs(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("pdf directory %s: %w", dir, err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
