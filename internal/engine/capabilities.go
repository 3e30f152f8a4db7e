package engine

import "context"

// EventKind tags a bus event.
type EventKind string

const (
	EventMemoryAdded       EventKind = "memory_added"
	EventMemoryUpdated     EventKind = "memory_updated"
	EventMemoryInvalidated EventKind = "memory_invalidated"
	EventEntityAdded       EventKind = "entity_added"
	EventRelationshipAdded EventKind = "relationship_added"
	EventChannelShare      EventKind = "channel_share"
)

// Event is published to the channel bus and, best-effort, to the
// replication sink. It always carries the full post-mutation record.
type Event struct {
	Kind    EventKind
	Channel string
	Payload any
}

// Publisher is the engine's view of the channel bus (C7): managers publish
// post-mutation events to named channels. Implemented by internal/bus.Bus.
type Publisher interface {
	Publish(channel string, event Event)
}

// ReplicationSink is the best-effort external consensus forwarder (C10).
// Implemented by internal/replication.
type ReplicationSink interface {
	Publish(ctx context.Context, event Event) error
}

// Embedder maps text to a fixed-dimension unit vector. Implemented by
// internal/embed backends. A nil Embedder, or one reporting Available()
// false, degrades the engine to keyword-only search without failing any
// operation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Available() bool
}

// ExtractedFact is one proposed memory surfaced by the Extractor.
type ExtractedFact struct {
	Content         string
	Kind            MemoryKind
	Confidence      float32
	Tags            []string
	Verdict         ExtractionVerdict
	UpdatesMemoryID uint64 // valid only when Verdict == VerdictUpdate
}

// ExtractedEntity is one proposed graph node.
type ExtractedEntity struct {
	Name        string
	EntityType  string
	Description string
}

// ExtractedRelationship is one proposed graph edge, referencing entities by
// name (resolved against the graph by the caller).
type ExtractedRelationship struct {
	SourceEntity string
	TargetEntity string
	RelationType string
	Description  string
}

// ExtractionResult is what the Extractor hands back for a batch of
// conversation messages.
type ExtractionResult struct {
	Facts         []ExtractedFact
	Entities      []ExtractedEntity
	Relationships []ExtractedRelationship
}

// ExtractionMessage is one turn of conversation fed to the Extractor.
type ExtractionMessage struct {
	Role    string
	Content string
}

// Extractor turns conversation text into proposed memories/entities/
// relations with a conflict-resolution verdict per fact. Implemented by
// internal/extract.
type Extractor interface {
	Extract(ctx context.Context, messages []ExtractionMessage, existing []Memory) (ExtractionResult, error)
	Available() bool
}
