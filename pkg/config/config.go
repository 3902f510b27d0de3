// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds every tunable the process reads at startup.
type Config struct {
	// Provider credentials. A provider with an empty key is treated as
	// not configured and skipped by the gateway.
	AnthropicAPIKey  string `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey     string `mapstructure:"openai_api_key"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	ElevenLabsAPIKey string `mapstructure:"elevenlabs_api_key"`

	DefaultProvider string `mapstructure:"default_provider"`
	AnthropicModel  string `mapstructure:"anthropic_model"`
	OpenAIModel     string `mapstructure:"openai_model"`
	GeminiModel     string `mapstructure:"gemini_model"`

	SystemPrompt     string  `mapstructure:"system_prompt"`
	Temperature      float64 `mapstructure:"temperature"`
	MaxOutputTokens  int     `mapstructure:"max_output_tokens"`
	MaxHistoryLen    int     `mapstructure:"max_history_len"`
	MaxContextTokens int     `mapstructure:"max_context_tokens"`

	// Voice settings.
	VoiceID     string `mapstructure:"voice_id"`
	VoiceModel  string `mapstructure:"voice_model"`
	AudioFormat string `mapstructure:"audio_format"`

	// Retrieval settings. An empty DSN disables retrieval.
	DatabaseDSN    string  `mapstructure:"database_dsn"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	RetrievalTopK  int     `mapstructure:"retrieval_top_k"`
	RetrievalMin   float64 `mapstructure:"retrieval_min_score"`

	// Tool settings.
	FileReadBaseDir string `mapstructure:"file_read_base_dir"`

	LogLevel string `mapstructure:"log_level"`
}

// DefaultSystemPrompt is used when none is configured.
const DefaultSystemPrompt = "You are a helpful assistant."

// DefaultVoiceSystemPrompt replaces the chat prompt for voice sessions;
// spoken replies need to stay short.
const DefaultVoiceSystemPrompt = "You are a helpful voice assistant. Keep your responses concise and conversational, as they will be spoken aloud."

// Load reads settings from the environment. A .env file in the working
// directory is applied first without overriding existing variables.
func Load() (*Config, error) {
	if err := applyEnvFile(".env"); err != nil {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	v := viper.New()
	v.SetEnvPrefix("halcyon")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Vendor keys are conventionally unprefixed.
	for key, env := range map[string]string{
		"anthropic_api_key":  "ANTHROPIC_API_KEY",
		"openai_api_key":     "OPENAI_API_KEY",
		"gemini_api_key":     "GEMINI_API_KEY",
		"elevenlabs_api_key": "ELEVENLABS_API_KEY",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrap(err, "failed to bind env")
		}
	}

	v.SetDefault("default_provider", "anthropic")
	v.SetDefault("anthropic_model", "")
	v.SetDefault("openai_model", "")
	v.SetDefault("gemini_model", "")
	v.SetDefault("voice_id", "")
	v.SetDefault("voice_model", "")
	v.SetDefault("database_dsn", "")
	v.SetDefault("system_prompt", DefaultSystemPrompt)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_output_tokens", 4096)
	v.SetDefault("max_history_len", 50)
	v.SetDefault("max_context_tokens", 4000)
	v.SetDefault("audio_format", "mp3")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("retrieval_top_k", 3)
	v.SetDefault("retrieval_min_score", 0.3)
	v.SetDefault("file_read_base_dir", "./data")
	v.SetDefault("log_level", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// ConfiguredProviders lists provider names with a credential present.
func (c *Config) ConfiguredProviders() []string {
	var out []string
	if c.AnthropicAPIKey != "" {
		out = append(out, "anthropic")
	}
	if c.OpenAIAPIKey != "" {
		out = append(out, "openai")
	}
	if c.GeminiAPIKey != "" {
		out = append(out, "gemini")
	}
	return out
}
