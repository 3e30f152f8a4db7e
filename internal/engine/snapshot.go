package engine

// CurrentSnapshotVersion is bumped whenever the Document shape changes in a
// way that requires restore-time migration. Matches the original source's
// Snapshot::CURRENT_VERSION convention.
const CurrentSnapshotVersion = 2

// Document is a single self-describing image of the Store, suitable for
// atomic serialization by internal/snapshot. Unlike the original source
// (whose create_snapshot() always emits channels: []), this unifies every
// Store kind — including channels and memberships — per spec.md §4.9's
// explicit requirement and DESIGN.md's Open Question decision.
type Document struct {
	SchemaVersion int

	Counters Counters

	Memories      []Memory
	History       []MemoryHistory
	Entities      []Entity
	Relationships []Relationship
	Channels      []Channel
	Memberships   []ChannelMembership
	Agents        []Agent
	Tasks         []Task
	TaskEvents    []TaskEvent
}

// Counters is the allocator's state at snapshot time, one field per kind.
type Counters struct {
	Memory       uint64
	History      uint64
	Entity       uint64
	Relationship uint64
	Channel      uint64
	Membership   uint64
	Task         uint64
	TaskEvent    uint64
}

// Export captures a consistent point-in-time copy of every record and the
// allocator's counters. Each table's iterSnapshot is a read-side copy-out,
// so Export never blocks concurrent writers for longer than one table scan
// (spec.md §5).
func (e *Engine) Export() Document {
	return Document{
		SchemaVersion: CurrentSnapshotVersion,
		Counters: Counters{
			Memory:       e.alloc.counters[kindMemory].Load(),
			History:      e.alloc.counters[kindHistory].Load(),
			Entity:       e.alloc.counters[kindEntity].Load(),
			Relationship: e.alloc.counters[kindRelationship].Load(),
			Channel:      e.alloc.counters[kindChannel].Load(),
			Membership:   e.alloc.counters[kindMembership].Load(),
			Task:         e.alloc.counters[kindTask].Load(),
			TaskEvent:    e.alloc.counters[kindTaskEvent].Load(),
		},
		Memories:      e.store.memories.iterSnapshot(),
		History:       e.store.history.all(),
		Entities:      e.store.entities.iterSnapshot(),
		Relationships: e.store.relations.iterSnapshot(),
		Channels:      e.store.channels.iterSnapshot(),
		Memberships:   e.store.memberships.iterSnapshot(),
		Agents:        e.store.agents.iterSnapshot(),
		Tasks:         e.store.tasks.iterSnapshot(),
		TaskEvents:    e.store.taskEvents.all(),
	}
}

// Import replaces the engine's store contents with doc's and resets the
// allocator so the next id per kind is max(existing id)+1, never lower than
// one past doc's saved counter (spec.md §4.9 / §4.1). The embedding index is left empty: embeddings are derived, never
// snapshotted, and may be recomputed on demand by a background re-embed
// pass if an Embedder is configured.
func (e *Engine) Import(doc Document) {
	e.store = newStore()
	e.alloc = newAllocator()

	for _, m := range doc.Memories {
		e.store.memories.insert(m.ID, m)
		e.alloc.restore(kindMemory, m.ID)
	}
	for _, h := range doc.History {
		e.store.history.append(h.MemoryID, h)
		e.alloc.restore(kindHistory, h.ID)
	}
	for _, ent := range doc.Entities {
		e.store.entities.insert(ent.ID, ent)
		e.alloc.restore(kindEntity, ent.ID)
	}
	for _, r := range doc.Relationships {
		e.store.relations.insert(r.ID, r)
		e.alloc.restore(kindRelationship, r.ID)
	}
	for _, ch := range doc.Channels {
		e.store.channels.insert(ch.ID, ch)
		e.store.registerChannelName(ch.Name, ch.ID)
		e.alloc.restore(kindChannel, ch.ID)
	}
	for _, cm := range doc.Memberships {
		e.store.memberships.insert(cm.ID, cm)
		e.alloc.restore(kindMembership, cm.ID)
	}
	for _, a := range doc.Agents {
		e.store.agents.insert(a.AgentID, a)
	}
	for _, t := range doc.Tasks {
		e.store.tasks.insert(t.ID, t)
		e.alloc.restore(kindTask, t.ID)
	}
	for _, te := range doc.TaskEvents {
		e.store.taskEvents.append(te.TaskID, te)
		e.alloc.restore(kindTaskEvent, te.ID)
	}

	e.alloc.restore(kindMemory, doc.Counters.Memory)
	e.alloc.restore(kindHistory, doc.Counters.History)
	e.alloc.restore(kindEntity, doc.Counters.Entity)
	e.alloc.restore(kindRelationship, doc.Counters.Relationship)
	e.alloc.restore(kindChannel, doc.Counters.Channel)
	e.alloc.restore(kindMembership, doc.Counters.Membership)
	e.alloc.restore(kindTask, doc.Counters.Task)
	e.alloc.restore(kindTaskEvent, doc.Counters.TaskEvent)

	e.emb = newEmbeddingIndex()
}
