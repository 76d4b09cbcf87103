package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"pdf-rag/internal/models"
)

// Options are the retrieval knobs, fixed for the process lifetime.
type Options struct {
	TopK            int // final chunk count fed to the model
	FetchK          int // global over-fetch budget on the chunk index
	DocRouteTopN    int // candidate documents per query
	SnippetMaxChars int // citation snippet budget
}

// Pipeline answers a question in six sequential steps: embed the question,
// route to candidate documents, retrieve chunks scoped to them, assemble
// context and citations, generate the answer, compose the response.
// A Pipeline holds no per-request state; one instance serves concurrent
// requests over the shared read-only indexes.
type Pipeline struct {
	embedder  Embedder
	router    *DocumentRouter
	retriever *ChunkRetriever
	assembler *CitationAssembler
	generator Generator
	opts      Options
	log       zerolog.Logger
}

func NewPipeline(embedder Embedder, docIndex, chunkIndex Index, generator Generator, opts Options, log zerolog.Logger) *Pipeline {
	if opts.SnippetMaxChars <= 0 {
		opts.SnippetMaxChars = 200
	}
	return &Pipeline{
		embedder:  embedder,
		router:    NewDocumentRouter(docIndex),
		retriever: NewChunkRetriever(chunkIndex),
		assembler: NewCitationAssembler(opts.SnippetMaxChars),
		generator: generator,
		opts:      opts,
		log:       log,
	}
}

// Answer runs the full pipeline for one question. Upstream failures are
// returned wrapped in their error kind; an empty routing or retrieval
// result is not an error and yields the insufficient-context response.
func (p *Pipeline) Answer(ctx context.Context, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	// 1. Embed
	queryEmbedding, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w: %v", ErrEmbeddingUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Route
	docIDs, err := p.router.Route(ctx, queryEmbedding, p.opts.DocRouteTopN)
	if err != nil {
		return nil, err
	}
	if len(docIDs) == 0 {
		p.log.Debug().Str("question", question).Msg("no documents routed")
		return insufficientContext(), nil
	}

	// 3. Retrieve
	candidates, retrieved, err := p.retriever.Retrieve(ctx, queryEmbedding, docIDs, p.opts.FetchK, p.opts.TopK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		p.log.Debug().Strs("doc_ids", docIDs).Msg("no chunks survived routing filter")
		return insufficientContext(), nil
	}

	// 4. Assemble
	contextText, citations := p.assembler.Assemble(candidates)

	// Client may already be gone; do not pay for generation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 5. Generate
	userPrompt := fmt.Sprintf(models.UserPromptTemplate, contextText, question)
	answerText, err := p.generator.GenerateAnswer(ctx, models.SystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w: %v", ErrGenerationUnavailable, err)
	}

	// 6. Compose
	sources := make([]models.Source, len(citations))
	snippets := make([]string, len(citations))
	for i, c := range citations {
		sources[i] = models.Source{DocumentTitle: c.Title, PageNumber: c.Page}
		snippets[i] = c.Snippet
	}

	p.log.Info().
		Int("routed_docs", len(docIDs)).
		Int("retrieved", retrieved).
		Int("used", len(citations)).
		Msg("answered question")

	return &models.Answer{
		Answer:         answerText,
		Sources:        sources,
		Snippets:       snippets,
		RetrievedCount: retrieved,
		UsedCount:      len(citations),
	}, nil
}

// insufficientContext is the terminal non-error outcome: a well-formed
// response with a hedged answer and no sources.
func insufficientContext() *models.Answer {
	return &models.Answer{
		Answer:         models.InsufficientContextAnswer,
		Sources:        []models.Source{},
		Snippets:       []string{},
		RetrievedCount: 0,
		UsedCount:      0,
	}
}
