package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension,omitempty"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig carries the clause keyword sets used to categorize chunks.
// The sets are data so new policy wordings can be handled without touching
// the chunking algorithm.
type ChunkerConfig struct {
	HeadingExclusionKeywords []string `yaml:"heading_exclusion_keywords"`
	HeadingCoverageKeywords  []string `yaml:"heading_coverage_keywords"`
	BodyExclusionPhrases     []string `yaml:"body_exclusion_phrases"`
	BodyCoveragePhrases      []string `yaml:"body_coverage_phrases"`
}

// LLMConfig configures the chat-completions endpoint backing the semantic
// agents (classifier, interpreter, synthesizer).
type LLMConfig struct {
	BaseURL          string `yaml:"base_url"`
	APIKeyEnv        string `yaml:"api_key_env"`
	ClassifierModel  string `yaml:"classifier_model"`
	InterpreterModel string `yaml:"interpreter_model"`
	SynthesizerModel string `yaml:"synthesizer_model"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
}

// RetrievalConfig configures the retrieval engine.
type RetrievalConfig struct {
	TopK       int  `yaml:"top_k"`
	CacheIndex bool `yaml:"cache_index"`
	WatchDir   bool `yaml:"watch_dir"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	PoliciesDir string          `yaml:"policies_dir"`
	UsersFile   string          `yaml:"users_file"`
	Embedder    EmbedderConfig  `yaml:"embedder"`
	Chunker     ChunkerConfig   `yaml:"chunker"`
	LLM         LLMConfig       `yaml:"llm"`
	Retrieval   RetrievalConfig `yaml:"retrieval"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/policyrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/policyrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "policyrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		PoliciesDir: "policies",
		UsersFile:   "users.yaml",
		Embedder:    EmbedderConfig{Type: "hashing"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.PoliciesDir == "" {
		cfg.PoliciesDir = "policies"
	}
	if cfg.UsersFile == "" {
		cfg.UsersFile = "users.yaml"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 384
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if len(cfg.Chunker.HeadingExclusionKeywords) == 0 {
		cfg.Chunker.HeadingExclusionKeywords = []string{"exclusion", "not covered"}
	}
	if len(cfg.Chunker.HeadingCoverageKeywords) == 0 {
		cfg.Chunker.HeadingCoverageKeywords = []string{"coverage", "perils insured"}
	}
	if len(cfg.Chunker.BodyExclusionPhrases) == 0 {
		cfg.Chunker.BodyExclusionPhrases = []string{"not covered", "we do not cover", "excluded", "exclusion"}
	}
	if len(cfg.Chunker.BodyCoveragePhrases) == 0 {
		cfg.Chunker.BodyCoveragePhrases = []string{"we will pay", "we cover", "coverage includes"}
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.LLM.ClassifierModel == "" {
		cfg.LLM.ClassifierModel = "llama-3.3-70b-versatile"
	}
	if cfg.LLM.InterpreterModel == "" {
		cfg.LLM.InterpreterModel = "llama-3.3-70b-versatile"
	}
	if cfg.LLM.SynthesizerModel == "" {
		cfg.LLM.SynthesizerModel = "deepseek-r1-distill-llama-70b"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
}
