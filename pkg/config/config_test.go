package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.DefaultProvider)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
	assert.Equal(t, 50, cfg.MaxHistoryLen)
	assert.Equal(t, 4000, cfg.MaxContextTokens)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, "./data", cfg.FileReadBaseDir)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
}

func TestLoadVendorKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("OPENAI_API_KEY", "ok")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ak", cfg.AnthropicAPIKey)
	assert.Equal(t, "ok", cfg.OpenAIAPIKey)
	assert.Equal(t, []string{"anthropic", "openai"}, cfg.ConfiguredProviders())
}

func TestLoadPrefixedOverrides(t *testing.T) {
	t.Setenv("HALCYON_DEFAULT_PROVIDER", "gemini")
	t.Setenv("HALCYON_MAX_HISTORY_LEN", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.DefaultProvider)
	assert.Equal(t, 10, cfg.MaxHistoryLen)
}

func TestConfiguredProvidersEmpty(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.ConfiguredProviders())
}
