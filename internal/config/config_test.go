package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "policies", cfg.PoliciesDir)
	assert.Equal(t, "users.yaml", cfg.UsersFile)
	assert.Equal(t, "hashing", cfg.Embedder.Type)
	assert.Equal(t, 384, cfg.Embedder.Dimension)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.ClassifierModel)
	assert.Equal(t, "deepseek-r1-distill-llama-70b", cfg.LLM.SynthesizerModel)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.NotEmpty(t, cfg.Chunker.HeadingExclusionKeywords)
	assert.NotEmpty(t, cfg.Chunker.BodyCoveragePhrases)
}

func TestLoad_PartialFileGetsDefaultsFilledIn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
policies_dir: /data/policies
llm:
  classifier_model: custom-model
retrieval:
  top_k: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/policies", cfg.PoliciesDir)
	assert.Equal(t, "custom-model", cfg.LLM.ClassifierModel)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	// Unset fields still default.
	assert.Equal(t, "users.yaml", cfg.UsersFile)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.InterpreterModel)
	assert.Equal(t, 60, cfg.LLM.TimeoutSecs)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.PoliciesDir = "somewhere"
	cfg.Retrieval.CacheIndex = true

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestOpenAIDefaults(t *testing.T) {
	cfg := &AppConfig{Embedder: EmbedderConfig{Type: "openai", OpenAI: &OpenAIEmbedderConfig{}}}
	applyConfigDefaults(cfg)

	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)
}
