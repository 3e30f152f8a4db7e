package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultOllamaModel matches the teacher's own default embedding model.
const DefaultOllamaModel = "all-minilm:l6-v2"

// Ollama embeds text against a local Ollama server's /api/embed endpoint.
// Uses bare net/http rather than the ollama/ollama API client: that client
// is imported throughout the teacher's internal/embedding package but is
// absent from the teacher's own go.mod (same unresolvable-dependency
// situation as the MCP SDK — see DESIGN.md), so a hand-rolled HTTP call is
// the faithful substitute here, matching the teacher's own Voyage backend's
// style (internal/embedding/anthropic.go), which also hand-rolls its HTTP
// call rather than reach for a client library.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &Ollama{baseURL: baseURL, model: model, client: &http.Client{Timeout: 30 * time.Second}}
}

func (o *Ollama) Available() bool { return true }

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama embed: status %d: %s", resp.StatusCode, string(data))
	}

	var parsed ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama returned no embeddings")
	}
	return parsed.Embeddings[0], nil
}
