package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/api"
	"pdf-rag/internal/catalog"
	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/config"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/helper"
	"pdf-rag/internal/ingest"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/rag"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// .env is optional; real env always wins.
	_ = godotenv.Load()

	configPath := flag.String("config", "./configs/config.yaml", "Path to the config file")
	ingestDir := flag.String("ingest", "", "Directory of PDFs to ingest")
	query := flag.String("query", "", "Question to answer once on the command line")
	serve := flag.Bool("serve", false, "Run the HTTP server")
	dryRun := flag.Bool("dry-run", false, "Parse and chunk only, do not embed or write")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx := context.Background()

	switch {
	case *ingestDir != "":
		runIngest(ctx, cfg, *ingestDir, *dryRun)
	case *query != "":
		runQuery(ctx, cfg, *query)
	case *serve:
		runServe(cfg)
	default:
		log.Fatal().Msg("Please provide -ingest <dir>, -query <question> or -serve")
	}
}

func runIngest(ctx context.Context, cfg *config.Config, dir string, dryRun bool) {
	docIndex, chunkIndex := openIndexes(cfg, dryRun)

	var cat *catalog.Store
	if !dryRun {
		cat = openCatalog(ctx, cfg)
		defer cat.Close()
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	in := ingest.New(cfg, embedder, docIndex, chunkIndex, cat, log.Logger)
	summary, err := in.Run(ctx, dir, dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting documents")
	}

	log.Info().
		Int("documents", summary.Documents).
		Int("skipped", summary.Skipped).
		Int("chunks", summary.Chunks).
		Bool("dry_run", dryRun).
		Msg("Ingestion complete")
}

func runQuery(ctx context.Context, cfg *config.Config, question string) {
	pipeline := buildPipeline(cfg)

	answer, err := pipeline.Answer(ctx, question)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering question")
	}

	log.Info().Msg("Question: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", question)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	helper.PrettyPrint(answer.Sources)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer.Answer)
}

func runServe(cfg *config.Config) {
	ctx := context.Background()

	pipeline := buildPipeline(cfg)
	cat := openCatalog(ctx, cfg)
	defer cat.Close()

	srv := api.NewServer(pipeline, cat, log.Logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server error")
	}
}

// buildPipeline wires the serving path: read-only indexes, embedder and
// chat model behind the pipeline.
func buildPipeline(cfg *config.Config) *rag.Pipeline {
	docIndex, chunkIndex := openIndexes(cfg, false)

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llmservice.NewClient(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat model")
	}

	return rag.NewPipeline(
		embedder,
		rag.NewChromemIndex(docIndex),
		rag.NewChromemIndex(chunkIndex),
		generator,
		rag.Options{
			TopK:            cfg.RAG.TopK,
			FetchK:          cfg.RAG.FetchK,
			DocRouteTopN:    cfg.RAG.DocRouteTopN,
			SnippetMaxChars: cfg.RAG.SnippetMaxChars,
		},
		log.Logger,
	)
}

func openIndexes(cfg *config.Config, inMemory bool) (*chromemdb.Manager, *chromemdb.Manager) {
	newManager := func(name string) (*chromemdb.Manager, error) {
		if inMemory {
			return chromemdb.NewMemoryManager(name, cfg.RAG.VectorDim)
		}
		return chromemdb.NewPersistentManager(cfg.Paths.IndexDir, name, cfg.RAG.VectorDim)
	}

	docIndex, err := newManager(chromemdb.DocCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening document index")
	}
	chunkIndex, err := newManager(chromemdb.ChunkCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening chunk index")
	}
	return docIndex, chunkIndex
}

func openCatalog(ctx context.Context, cfg *config.Config) *catalog.Store {
	cat, err := catalog.Open(cfg.Paths.CatalogPath, cfg.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening catalog")
	}
	if err := cat.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error initializing catalog")
	}
	return cat
}
