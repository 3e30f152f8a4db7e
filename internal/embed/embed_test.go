package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelStringOllama(t *testing.T) {
	provider, model := ParseModelString("ollama:all-minilm")
	assert.Equal(t, "ollama", provider)
	assert.Equal(t, "all-minilm", model)
}

func TestParseModelStringBareDefaultsToOpenAI(t *testing.T) {
	provider, model := ParseModelString("text-embedding-3-small")
	assert.Equal(t, "openai", provider)
	assert.Equal(t, "text-embedding-3-small", model)
}

func TestParseModelStringVoyage(t *testing.T) {
	provider, model := ParseModelString("voyage:voyage-3-lite")
	assert.Equal(t, "voyage", provider)
	assert.Equal(t, "voyage-3-lite", model)
}

func TestNewFromConfigResolvesBaseURLByProvider(t *testing.T) {
	cfg := NewFromConfig("ollama:all-minilm", "")
	assert.Equal(t, "http://localhost:11434", cfg.BaseURL)

	cfg = NewFromConfig("voyage:voyage-3", "key")
	assert.Equal(t, "https://api.voyageai.com/v1", cfg.BaseURL)

	cfg = NewFromConfig("bedrock:amazon.titan-embed-text-v2:0", "")
	assert.Equal(t, "", cfg.BaseURL)
}

func TestNewOpenAIWithoutAPIKeyDisables(t *testing.T) {
	e, err := New(Config{Provider: "openai", Model: "text-embedding-3-small"})
	require.NoError(t, err)
	assert.False(t, e.Available())

	_, err = e.Embed(context.Background(), "hello")
	assert.Error(t, err)
}

func TestNewVoyageWithoutAPIKeyDisables(t *testing.T) {
	e, err := New(Config{Provider: "voyage", Model: "voyage-3"})
	require.NoError(t, err)
	assert.False(t, e.Available())
}

func TestNewOllamaAlwaysAvailable(t *testing.T) {
	e, err := New(Config{Provider: "ollama", Model: "all-minilm"})
	require.NoError(t, err)
	assert.True(t, e.Available())
}

func TestNewUnknownProviderDisables(t *testing.T) {
	e, err := New(Config{Provider: "carrier-pigeon"})
	require.NoError(t, err)
	assert.False(t, e.Available())
	_, ok := e.(Disabled)
	assert.True(t, ok)
}

func TestDisabledEmbedAlwaysErrors(t *testing.T) {
	d := Disabled{Reason: "no key"}
	assert.False(t, d.Available())
	_, err := d.Embed(context.Background(), "x")
	assert.Error(t, err)
}
