package embed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// DefaultBedrockModel is Amazon's Titan text embedding model, picked because
// it needs no extra model-access request in a fresh AWS account.
const DefaultBedrockModel = "amazon.titan-embed-text-v2:0"

// Bedrock embeds text via AWS Bedrock's InvokeModel API. Region and
// credentials come from the standard AWS SDK chain (env vars, shared config,
// instance role), matching the aws-sdk-go-v2/config loader the rest of this
// module's domain stack already depends on.
type Bedrock struct {
	model  string
	client *bedrockruntime.Client
}

// NewBedrock loads the default AWS config and constructs a Bedrock backend.
// Errors here (e.g. no region resolvable) are returned rather than degraded
// to Disabled: unlike a missing API key, a broken AWS SDK environment is a
// configuration mistake worth surfacing at startup.
func NewBedrock(model string) (Embedder, error) {
	if model == "" {
		model = DefaultBedrockModel
	}
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Bedrock{model: model, client: bedrockruntime.NewFromConfig(cfg)}, nil
}

func (b *Bedrock) Available() bool { return true }

type titanEmbedRequest struct {
	InputText string `json:"inputText"`
}

type titanEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (b *Bedrock) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanEmbedRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &b.model,
		ContentType: strPtr("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke: %w", err)
	}

	var parsed titanEmbedResponse
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("bedrock returned no embedding")
	}
	return parsed.Embedding, nil
}

func strPtr(s string) *string { return &s }
