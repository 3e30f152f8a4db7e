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

// DefaultVoyageModel matches the teacher's internal/embedding/anthropic.go
// default (Anthropic has no native embedding API; Voyage AI is its
// recommended partner).
const DefaultVoyageModel = "voyage-3"

// VoyageEndpoint is the Voyage AI embeddings endpoint.
const VoyageEndpoint = "https://api.voyageai.com/v1/embeddings"

// Voyage embeds text via Voyage AI's API, adapted directly from the
// teacher's internal/embedding/anthropic.go AnthropicClient.
type Voyage struct {
	apiKey string
	model  string
	client *http.Client
}

func NewVoyage(apiKey, model string) *Voyage {
	if model == "" {
		model = DefaultVoyageModel
	}
	return &Voyage{apiKey: apiKey, model: model, client: &http.Client{Timeout: 30 * time.Second}}
}

func (v *Voyage) Available() bool { return v.apiKey != "" }

type voyageRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (v *Voyage) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(voyageRequest{Input: []string{text}, Model: v.model})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, VoyageEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voyage embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("voyage embed: status %d: %s", resp.StatusCode, string(data))
	}

	var parsed voyageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("voyage returned no embeddings")
	}
	return parsed.Data[0].Embedding, nil
}
