package engine

import (
	"context"
	"log/slog"
	"time"
)

// nullPublisher discards every event. Used when no bus is wired (tests,
// or a supervisor stage that hasn't started the bus yet).
type nullPublisher struct{}

func (nullPublisher) Publish(string, Event) {}

// nullReplicationSink always reports success without doing anything.
type nullReplicationSink struct{}

func (nullReplicationSink) Publish(context.Context, Event) error { return nil }

// nullEmbedder is always unavailable; the engine degrades to keyword-only
// search and skips embedding computation entirely.
type nullEmbedder struct{}

func (nullEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, ErrTransport }
func (nullEmbedder) Available() bool                                  { return false }

// nullExtractor is always unavailable.
type nullExtractor struct{}

func (nullExtractor) Extract(context.Context, []ExtractionMessage, []Memory) (ExtractionResult, error) {
	return ExtractionResult{}, ErrTransport
}
func (nullExtractor) Available() bool { return false }

// Options configures a new Engine. Zero-value fields fall back to
// no-op/null capabilities, matching spec.md §1's requirement that the
// engine work correctly with every external collaborator absent.
type Options struct {
	Embedder          Embedder
	Extractor         Extractor
	Bus               Publisher
	Replication       ReplicationSink
	Logger            *slog.Logger
	GraphDepthCeiling int // default 10 if zero
}

// Engine is the in-process Memory Engine: C1 allocator, C2 store, C3
// embedding index, plus the C4 memory manager and C5 graph manager
// implemented as methods in memory.go/graph.go/agent.go/task.go.
type Engine struct {
	store *Store
	alloc *allocator
	emb   *embeddingIndex

	embedder    Embedder
	extractor   Extractor
	bus         Publisher
	replication ReplicationSink
	logger      *slog.Logger

	depthCeiling int
}

// New constructs an Engine with an empty store. Use Restore (internal/snapshot)
// to populate it from a prior snapshot.
func New(opts Options) *Engine {
	e := &Engine{
		store:        newStore(),
		alloc:        newAllocator(),
		emb:          newEmbeddingIndex(),
		embedder:     opts.Embedder,
		extractor:    opts.Extractor,
		bus:          opts.Bus,
		replication:  opts.Replication,
		logger:       opts.Logger,
		depthCeiling: opts.GraphDepthCeiling,
	}
	if e.embedder == nil {
		e.embedder = nullEmbedder{}
	}
	if e.extractor == nil {
		e.extractor = nullExtractor{}
	}
	if e.bus == nil {
		e.bus = nullPublisher{}
	}
	if e.replication == nil {
		e.replication = nullReplicationSink{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.depthCeiling <= 0 {
		e.depthCeiling = 10
	}
	return e
}

// publish emits ev to the bus and, best-effort, to the replication sink.
// Never called while holding a record lock (spec.md §4.10/§5).
func (e *Engine) publish(ctx context.Context, ev Event) {
	e.bus.Publish(ev.Channel, ev)
	if err := e.replication.Publish(ctx, ev); err != nil {
		e.logger.Warn("replication publish failed", "kind", ev.Kind, "error", err)
	}
}

// Extractor exposes the wired Extractor capability for the /extract HTTP
// handler.
func (e *Engine) Extractor() Extractor { return e.extractor }

// Embedder exposes the wired Embedder capability, e.g. for the search
// engine to embed a query.
func (e *Engine) Embedder() Embedder { return e.embedder }

// Stats is the /status payload shape, modelled on the original source's
// stats() (SPEC_FULL.md "Supplemented features"): it adds channel and task
// counts and has no episode count.
type Stats struct {
	MemoryCount         int64
	ValidMemoryCount    int64
	EntityCount         int64
	RelationshipCount   int64
	ChannelCount        int64
	AgentCount          int64
	TaskCount           int64
	EmbeddingCount      int64
	EmbeddingDimension  int
	ExtractionAvailable bool
	ReplicationEnabled  bool
}

// Stats returns a point-in-time snapshot of engine-wide counts and feature
// flags.
func (e *Engine) Stats() Stats {
	now := time.Now()
	memories := e.store.memories.iterSnapshot()
	var valid int64
	for _, m := range memories {
		if m.IsValid(now) {
			valid++
		}
	}
	_, replicationEnabled := e.replication.(nullReplicationSink)
	return Stats{
		MemoryCount:         int64(len(memories)),
		ValidMemoryCount:    valid,
		EntityCount:         int64(e.store.entities.count()),
		RelationshipCount:   int64(e.store.relations.count()),
		ChannelCount:        int64(e.store.channels.count()),
		AgentCount:          int64(e.store.agents.count()),
		TaskCount:           int64(e.store.tasks.count()),
		EmbeddingCount:      int64(e.emb.indexedCount()),
		EmbeddingDimension:  e.emb.dimension(),
		ExtractionAvailable: e.extractor.Available(),
		ReplicationEnabled:  !replicationEnabled,
	}
}
