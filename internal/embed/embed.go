// Package embed implements the engine.Embedder capability: text-to-vector
// backends pluggable by a "provider:model" config string, matching
// embeddings.rs::EmbeddingConfig::from_hivemind_config in the original
// source and internal/embedding/embedder.go's provider-switch shape in the
// teacher.
package embed

import (
	"context"
	"fmt"
	"strings"
)

// Config describes which backend to construct and how to reach it, parsed
// from a single "provider:model" string (e.g. "openai:text-embedding-3-small",
// "ollama:all-minilm", "bedrock:amazon.titan-embed-text-v2:0").
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string // resolved below if empty
}

// ParseModelString splits a "provider:model" string. A bare model name with
// no colon is treated as an OpenAI-compatible model, matching the original
// source's fallback (it only defaults to "local" when compiled with a
// feature this corpus has no equivalent for).
func ParseModelString(spec string) (provider, model string) {
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		return spec[:i], spec[i+1:]
	}
	return "openai", spec
}

// NewFromConfig builds a Config from the embedding_model/embedding_api_key
// flags, resolving base_url by provider keyword the way the original
// source's EmbeddingConfig::from_hivemind_config does.
func NewFromConfig(embeddingModel, apiKey string) Config {
	provider, model := ParseModelString(embeddingModel)
	cfg := Config{Provider: provider, Model: model, APIKey: apiKey}
	switch provider {
	case "openai":
		cfg.BaseURL = "https://api.openai.com/v1"
	case "ollama":
		cfg.BaseURL = "http://localhost:11434"
	case "voyage", "anthropic":
		cfg.BaseURL = "https://api.voyageai.com/v1"
	case "bedrock":
		cfg.BaseURL = "" // resolved by the AWS SDK's region config instead
	default:
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return cfg
}

// New constructs an Embedder for cfg.Provider. An unknown provider is not
// an error: it falls back to a disabled embedder so the engine degrades to
// keyword-only search rather than failing startup (spec.md §7 — embedder
// absence is always tolerated).
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg.BaseURL, cfg.Model), nil
	case "voyage", "anthropic":
		if cfg.APIKey == "" {
			return Disabled{Reason: "voyage/anthropic embedder configured without an API key"}, nil
		}
		return NewVoyage(cfg.APIKey, cfg.Model), nil
	case "bedrock":
		return NewBedrock(cfg.Model)
	case "openai":
		if cfg.APIKey == "" {
			return Disabled{Reason: "openai embedder configured without an API key"}, nil
		}
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return Disabled{Reason: fmt.Sprintf("unknown embedding provider %q", cfg.Provider)}, nil
	}
}

// Embedder mirrors engine.Embedder exactly so backend constructors here
// don't need to import internal/engine just for the interface — any value
// satisfying this also satisfies engine.Embedder structurally, and
// supervisor wiring assigns it directly into engine.Options.Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Available() bool
}
