package main

import (
	"context"
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"policyrag/internal/agents"
	"policyrag/internal/chunker"
	"policyrag/internal/config"
	"policyrag/internal/embedding"
	"policyrag/internal/embedding/hashing"
	"policyrag/internal/embedding/openai"
	"policyrag/internal/llm/groq"
	"policyrag/internal/pipeline"
	"policyrag/internal/retrieval"
	"policyrag/internal/selector"
	"policyrag/internal/tui"
	"policyrag/internal/userdir"
	"policyrag/internal/watcher"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/policyrag/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Assemble components
	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "hashing", "":
		emb = hashing.NewEmbedder(cfg.Embedder.Dimension)
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	ch := chunker.NewSectionChunker(chunker.Keywords{
		HeadingExclusion: cfg.Chunker.HeadingExclusionKeywords,
		HeadingCoverage:  cfg.Chunker.HeadingCoverageKeywords,
		BodyExclusion:    cfg.Chunker.BodyExclusionPhrases,
		BodyCoverage:     cfg.Chunker.BodyCoveragePhrases,
	})

	llm, err := groq.NewClient(groq.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("llm client init failed: %v", err)
	}

	var cache retrieval.IndexCache = retrieval.NopCache{}
	if cfg.Retrieval.CacheIndex {
		memCache := retrieval.NewMemoryCache()
		cache = memCache
		if cfg.Retrieval.WatchDir {
			w, err := watcher.New(nil)
			if err != nil {
				log.Fatalf("watcher init failed: %v", err)
			}
			defer w.Stop()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if err := w.Watch(ctx, cfg.PoliciesDir, memCache); err != nil {
				log.Fatalf("failed to watch %s: %v", cfg.PoliciesDir, err)
			}
		}
	}

	source := userdir.NewDirSource(cfg.PoliciesDir)
	engine := retrieval.NewEngine(ch, emb, source, cache)

	sel := selector.New(agents.NewClassifier(llm, cfg.LLM.ClassifierModel))
	interpreter := agents.NewInterpreter(llm, cfg.LLM.InterpreterModel)
	synthesizer := agents.NewSynthesizer(llm, cfg.LLM.SynthesizerModel)
	orchestrator := pipeline.New(interpreter, sel, engine, synthesizer, cfg.Retrieval.TopK)

	directory, err := userdir.Load(cfg.UsersFile)
	if err != nil {
		log.Fatalf("failed to load users file: %v", err)
	}

	m := tui.New(orchestrator, directory)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
