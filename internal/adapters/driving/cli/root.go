// Package cli implements the campusrag command line interface.
//
// Commands are thin adapters over the driving ports: they parse flags,
// wire the driven adapters from configuration and delegate to the core
// services.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/campusrag/campusrag/internal/adapters/driven/config/file"
	ollamaembed "github.com/campusrag/campusrag/internal/adapters/driven/embedding/ollama"
	"github.com/campusrag/campusrag/internal/adapters/driven/embedding/tfidf"
	ollamallm "github.com/campusrag/campusrag/internal/adapters/driven/llm/ollama"
	storagememory "github.com/campusrag/campusrag/internal/adapters/driven/storage/memory"
	vectormemory "github.com/campusrag/campusrag/internal/adapters/driven/vectorstore/memory"
	"github.com/campusrag/campusrag/internal/adapters/driven/vectorstore/qdrant"
	"github.com/campusrag/campusrag/internal/core/ports/driven"
	"github.com/campusrag/campusrag/internal/core/services"
	"github.com/campusrag/campusrag/internal/crawler"
	"github.com/campusrag/campusrag/internal/logger"
	"github.com/campusrag/campusrag/internal/segmenter"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Wired services, populated by initServices before a command runs.
var (
	configStore        driven.ConfigStore
	vectorStore        driven.VectorStore
	llmService         driven.LLMService
	embedder           driven.Embedder
	tfidfModel         *tfidf.Embedder // non-nil when the tfidf backend is active
	modelPath          string
	ingestOrchestrator *services.IngestOrchestrator
	answerService      *services.AnswerService
	searchService      *services.SearchService
)

var rootCmd = &cobra.Command{
	Use:   "campusrag",
	Short: "Question answering over university websites",
	Long: `campusrag crawls institutional websites, indexes their content in a
vector store and answers questions about them with cited sources.

Typical usage:

  campusrag crawl https://www.unizg.hr
  campusrag ask "Kada su ispitni rokovi?"
  campusrag search "upis na diplomski studij"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// servicesWired short-circuits initServices when the services were
// already built, either by an earlier command or by a test.
var servicesWired bool

// initServices wires the driven adapters from configuration and builds
// the core services.
func initServices() error {
	if servicesWired {
		return nil
	}

	cfg, err := file.NewConfigStore(os.Getenv("CAMPUSRAG_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	configStore = cfg
	modelPath = filepath.Join(filepath.Dir(cfg.Path()), "model.json")

	if err := buildEmbedder(cfg); err != nil {
		return err
	}
	if err := buildVectorStore(cfg); err != nil {
		return err
	}
	buildLLM(cfg)

	fetcher := crawler.NewFetcher(crawler.FetcherConfig{
		UserAgent:         cfg.GetString("crawl.user_agent"),
		RequestsPerSecond: cfg.GetFloat("crawl.requests_per_second"),
	})

	segOpts := []segmenter.Option{}
	if n := cfg.GetInt("chunking.size"); n > 0 {
		segOpts = append(segOpts, segmenter.WithChunkSize(n))
	}
	if n := cfg.GetInt("chunking.overlap"); n > 0 {
		segOpts = append(segOpts, segmenter.WithOverlap(n))
	}

	ingestOrchestrator = services.NewIngestOrchestrator(
		crawler.New(fetcher),
		segmenter.New(segOpts...),
		embedder,
		vectorStore,
		storagememory.NewIngestJobStore(),
	)
	answerService = services.NewAnswerService(embedder, vectorStore, llmService)
	searchService = services.NewSearchService(embedder, vectorStore)
	servicesWired = true
	return nil
}

// buildEmbedder selects the embedding backend. The local tfidf model is
// the default; "ollama" switches to a pretrained model served by Ollama.
func buildEmbedder(cfg driven.ConfigStore) error {
	switch backend := cfg.GetString("embedding.backend"); backend {
	case "", "tfidf":
		model := tfidf.New()
		// A model saved by an earlier crawl makes queries embeddable
		// in this process. Absence is fine before the first crawl.
		if _, err := os.Stat(modelPath); err == nil {
			if err := model.Load(modelPath); err != nil {
				return fmt.Errorf("load embedding model: %w", err)
			}
			logger.Debug("Loaded tfidf model from %s (%d dimensions)", modelPath, model.Dimensions())
		}
		tfidfModel = model
		embedder = model
	case "ollama":
		e, err := ollamaembed.New(ollamaembed.Config{
			BaseURL: cfg.GetString("ollama.url"),
			Model:   cfg.GetString("embedding.model"),
		})
		if err != nil {
			return fmt.Errorf("ollama embedder: %w", err)
		}
		embedder = e
	default:
		return fmt.Errorf("unknown embedding backend %q", backend)
	}
	logger.Debug("Embedding backend: %s", embedder.ModelName())
	return nil
}

// buildVectorStore selects the vector store backend. Qdrant is the
// default; "memory" keeps everything in-process for offline use.
func buildVectorStore(cfg driven.ConfigStore) error {
	collection := cfg.GetString("qdrant.collection")
	if collection == "" {
		collection = qdrant.DefaultCollection
	}

	if cfg.GetString("store.backend") == "memory" {
		vectorStore = vectormemory.New(collection)
		return nil
	}

	store, err := qdrant.New(qdrant.Config{
		Addr:       cfg.GetString("qdrant.address"),
		Collection: collection,
	})
	if err != nil {
		return fmt.Errorf("connect qdrant: %w", err)
	}
	vectorStore = store
	return nil
}

func buildLLM(cfg driven.ConfigStore) {
	svc, err := ollamallm.New(ollamallm.Config{
		BaseURL: cfg.GetString("ollama.url"),
		Model:   cfg.GetString("ollama.model"),
	})
	if err != nil {
		// A bad endpoint URL only disables generation; retrieval and
		// the degraded answer path still work.
		logger.Warn("Language model disabled: %v", err)
		return
	}
	llmService = svc
}

func teardown() {
	if vectorStore != nil {
		_ = vectorStore.Close()
	}
	if llmService != nil {
		_ = llmService.Close()
	}
}
