// Package extract implements the engine.Extractor capability: an LLM turns
// a conversation into proposed memories, entities, and relationships, with
// a conflict-resolution verdict per fact against the agent's existing
// memories. Grounded on the teacher's internal/llm/model.go (langchaingo
// provider wiring) and crates/core/src/extraction.rs's ExtractionPipeline
// (JSON schema, conflict-aware prompt shape).
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config selects and configures the LLM backend used for extraction.
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	OllamaHost string
}

// Extractor runs conversation text through an LLM and parses its structured
// response into facts/entities/relationships.
type Extractor struct {
	llm   llms.Model
	model string
}

// New constructs an Extractor for cfg.Provider. Unlike embed.New, a missing
// API key here is returned as an error rather than degraded: callers
// (supervisor wiring) are expected to fall back to Disabled themselves when
// cfg is incomplete, mirroring the teacher's llm.NewModel, which also
// errors rather than silently disabling.
func New(cfg Config) (*Extractor, error) {
	var model llms.Model
	var err error

	switch cfg.Provider {
	case ProviderOllama:
		host := cfg.OllamaHost
		if host == "" {
			host = "http://localhost:11434"
		}
		model, err = ollama.New(ollama.WithModel(cfg.Model), ollama.WithServerURL(host))
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key required")
		}
		model, err = openai.New(openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model))
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key required")
		}
		model, err = anthropic.New(anthropic.WithToken(cfg.APIKey), anthropic.WithModel(cfg.Model))
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	return &Extractor{llm: model, model: cfg.Model}, nil
}

func (e *Extractor) Available() bool { return e != nil && e.llm != nil }

// rawExtraction is the JSON shape the system prompt below asks the model to
// emit, matching extraction.rs's ExtractionResponse wire format.
type rawExtraction struct {
	Facts []struct {
		Content         string   `json:"content"`
		Kind            string   `json:"kind"`
		Confidence      float32  `json:"confidence"`
		Tags            []string `json:"tags"`
		Verdict         string   `json:"verdict"`
		UpdatesMemoryID *uint64  `json:"updates_memory_id,omitempty"`
	} `json:"facts"`
	Entities []struct {
		Name        string `json:"name"`
		EntityType  string `json:"entity_type"`
		Description string `json:"description"`
	} `json:"entities"`
	Relationships []struct {
		SourceEntity string `json:"source_entity"`
		TargetEntity string `json:"target_entity"`
		RelationType string `json:"relation_type"`
		Description  string `json:"description"`
	} `json:"relationships"`
}

const systemPrompt = `You are a memory extraction specialist for a multi-agent memory system.
Given a conversation and the agent's existing memories, extract durable facts, knowledge-graph
entities, and relationships worth remembering.

For each fact, decide a verdict:
- "add": a genuinely new fact, unrelated to any existing memory
- "update": a fact that supersedes an existing memory (set updates_memory_id to that memory's id)
- "noop": nothing worth storing (skip transient, already-known, or trivial content)

Entity types: person, service, concept, project, task, document.

Respond with ONLY a JSON object of this exact shape, no prose, no markdown fences:
{
  "facts": [{"content": "...", "kind": "fact|episodic|procedural|semantic", "confidence": 0.0,
             "tags": ["..."], "verdict": "add|update|noop", "updates_memory_id": 0}],
  "entities": [{"name": "...", "entity_type": "...", "description": "..."}],
  "relationships": [{"source_entity": "...", "target_entity": "...", "relation_type": "...", "description": "..."}]
}`

// Extract runs the conversation + existing-memory context through the LLM
// and parses its JSON response.
func (e *Extractor) Extract(ctx context.Context, messages []engine.ExtractionMessage, existing []engine.Memory) (engine.ExtractionResult, error) {
	if !e.Available() {
		return engine.ExtractionResult{}, fmt.Errorf("extractor not available")
	}

	userPrompt := buildUserPrompt(messages, existing)
	chatMessages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := e.llm.GenerateContent(ctx, chatMessages)
	if err != nil {
		return engine.ExtractionResult{}, fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return engine.ExtractionResult{}, fmt.Errorf("no response choices")
	}

	return parseExtraction(resp.Choices[0].Content)
}

func buildUserPrompt(messages []engine.ExtractionMessage, existing []engine.Memory) string {
	var sb strings.Builder
	sb.WriteString("Conversation:\n")
	for _, m := range messages {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}

	if len(existing) > 0 {
		sb.WriteString("\nExisting memories (id: content):\n")
		for _, m := range existing {
			fmt.Fprintf(&sb, "%d: %s\n", m.ID, m.Content)
		}
	}
	return sb.String()
}

func parseExtraction(content string) (engine.ExtractionResult, error) {
	content = stripMarkdownFences(content)

	var raw rawExtraction
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return engine.ExtractionResult{}, fmt.Errorf("parse extraction response: %w", err)
	}

	result := engine.ExtractionResult{
		Facts:         make([]engine.ExtractedFact, 0, len(raw.Facts)),
		Entities:      make([]engine.ExtractedEntity, 0, len(raw.Entities)),
		Relationships: make([]engine.ExtractedRelationship, 0, len(raw.Relationships)),
	}

	for _, f := range raw.Facts {
		verdict := parseVerdict(f.Verdict)
		if verdict == engine.VerdictNoop {
			continue
		}
		fact := engine.ExtractedFact{
			Content:    f.Content,
			Kind:       parseKind(f.Kind),
			Confidence: f.Confidence,
			Tags:       f.Tags,
			Verdict:    verdict,
		}
		if f.UpdatesMemoryID != nil {
			fact.UpdatesMemoryID = *f.UpdatesMemoryID
		}
		result.Facts = append(result.Facts, fact)
	}

	for _, en := range raw.Entities {
		result.Entities = append(result.Entities, engine.ExtractedEntity{
			Name:        en.Name,
			EntityType:  en.EntityType,
			Description: en.Description,
		})
	}

	for _, r := range raw.Relationships {
		result.Relationships = append(result.Relationships, engine.ExtractedRelationship{
			SourceEntity: r.SourceEntity,
			TargetEntity: r.TargetEntity,
			RelationType: r.RelationType,
			Description:  r.Description,
		})
	}

	return result, nil
}

func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseVerdict(s string) engine.ExtractionVerdict {
	switch strings.ToLower(s) {
	case "update":
		return engine.VerdictUpdate
	case "noop":
		return engine.VerdictNoop
	default:
		return engine.VerdictAdd
	}
}

func parseKind(s string) engine.MemoryKind {
	switch strings.ToLower(s) {
	case "episodic":
		return engine.KindEpisodic
	case "procedural":
		return engine.KindProcedural
	case "semantic":
		return engine.KindSemantic
	default:
		return engine.KindFact
	}
}
