package extract

import (
	"context"
	"testing"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnsupportedProviderErrors(t *testing.T) {
	_, err := New(Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewOpenAIWithoutKeyErrors(t *testing.T) {
	_, err := New(Config{Provider: ProviderOpenAI})
	assert.Error(t, err)
}

func TestNewAnthropicWithoutKeyErrors(t *testing.T) {
	_, err := New(Config{Provider: ProviderAnthropic})
	assert.Error(t, err)
}

func TestDisabledExtractorAlwaysErrors(t *testing.T) {
	d := Disabled{Reason: "no provider configured"}
	assert.False(t, d.Available())
	_, err := d.Extract(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestParseExtractionStripsMarkdownFences(t *testing.T) {
	content := "```json\n" + `{"facts":[{"content":"likes tea","kind":"fact","confidence":0.9,"tags":["pref"],"verdict":"add"}],"entities":[],"relationships":[]}` + "\n```"
	result, err := parseExtraction(content)
	require.NoError(t, err)
	require.Len(t, result.Facts, 1)
	assert.Equal(t, "likes tea", result.Facts[0].Content)
	assert.Equal(t, engine.KindFact, result.Facts[0].Kind)
	assert.Equal(t, engine.VerdictAdd, result.Facts[0].Verdict)
}

func TestParseExtractionSkipsNoopVerdicts(t *testing.T) {
	content := `{"facts":[{"content":"already known","kind":"fact","verdict":"noop"}],"entities":[],"relationships":[]}`
	result, err := parseExtraction(content)
	require.NoError(t, err)
	assert.Empty(t, result.Facts)
}

func TestParseExtractionUpdateVerdictCarriesMemoryID(t *testing.T) {
	content := `{"facts":[{"content":"new address","kind":"fact","verdict":"update","updates_memory_id":42}],"entities":[],"relationships":[]}`
	result, err := parseExtraction(content)
	require.NoError(t, err)
	require.Len(t, result.Facts, 1)
	assert.Equal(t, engine.VerdictUpdate, result.Facts[0].Verdict)
	assert.EqualValues(t, 42, result.Facts[0].UpdatesMemoryID)
}

func TestParseExtractionEntitiesAndRelationships(t *testing.T) {
	content := `{"facts":[],"entities":[{"name":"Alice","entity_type":"person","description":"a user"}],` +
		`"relationships":[{"source_entity":"Alice","target_entity":"Bob","relation_type":"knows","description":"coworkers"}]}`
	result, err := parseExtraction(content)
	require.NoError(t, err)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "Alice", result.Entities[0].Name)
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "knows", result.Relationships[0].RelationType)
}

func TestParseExtractionInvalidJSONErrors(t *testing.T) {
	_, err := parseExtraction("not json at all")
	assert.Error(t, err)
}

func TestBuildUserPromptIncludesExistingMemories(t *testing.T) {
	prompt := buildUserPrompt(
		[]engine.ExtractionMessage{{Role: "user", Content: "I live in Berlin now"}},
		[]engine.Memory{{ID: 7, Content: "lives in Munich"}},
	)
	assert.Contains(t, prompt, "I live in Berlin now")
	assert.Contains(t, prompt, "7: lives in Munich")
}
