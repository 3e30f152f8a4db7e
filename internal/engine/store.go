package engine

import "sync"

// table is a generic concurrent map keyed by id. Writes to a single record
// are serialized by the table's own mutex; this is the "per-key lock"
// discipline described by the design at map granularity rather than true
// per-record striping, since the retrieval pack carries no concurrent-map
// library to stripe with and the records themselves are small value types
// copied in and out on every access.
type table[K comparable, V any] struct {
	mu   sync.RWMutex
	rows map[K]V
}

func newTable[K comparable, V any]() *table[K, V] {
	return &table[K, V]{rows: make(map[K]V)}
}

func (t *table[K, V]) insert(k K, v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[k] = v
}

func (t *table[K, V]) get(k K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[k]
	return v, ok
}

// updateInPlace runs fn against the current value (if present) and stores
// its result. fn returning ok=false leaves the row untouched and reports
// not-found to the caller.
func (t *table[K, V]) updateInPlace(k K, fn func(V) (V, bool)) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.rows[k]
	if !ok {
		var zero V
		return zero, false
	}
	next, changed := fn(cur)
	if changed {
		t.rows[k] = next
	}
	return next, true
}

// iterSnapshot returns a point-in-time copy of every value, in unspecified
// order.
func (t *table[K, V]) iterSnapshot() []V {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]V, 0, len(t.rows))
	for _, v := range t.rows {
		out = append(out, v)
	}
	return out
}

func (t *table[K, V]) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// entityTable adds an insertion-ordered index so find-by-name returns the
// first-inserted match, since Go map iteration order is unspecified (the
// original source relies on DashMap iteration, which is not insertion
// ordered either — spec.md pins this down explicitly, so we track order
// ourselves rather than inherit the original's ambiguity).
type entityTable struct {
	mu    sync.RWMutex
	rows  map[uint64]Entity
	order []uint64
}

func newEntityTable() *entityTable {
	return &entityTable{rows: make(map[uint64]Entity)}
}

func (t *entityTable) insert(id uint64, e Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = e
}

func (t *entityTable) get(id uint64) (Entity, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.rows[id]
	return e, ok
}

func (t *entityTable) updateInPlace(id uint64, fn func(Entity) (Entity, bool)) (Entity, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.rows[id]
	if !ok {
		return Entity{}, false
	}
	next, changed := fn(cur)
	if changed {
		t.rows[id] = next
	}
	return next, true
}

func (t *entityTable) findByName(name string) (Entity, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.order {
		if e, ok := t.rows[id]; ok && e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

func (t *entityTable) iterSnapshot() []Entity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entity, 0, len(t.order))
	for _, id := range t.order {
		if e, ok := t.rows[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (t *entityTable) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// logTable holds an append-only, per-parent-id ordered audit log (used for
// both MemoryHistory and TaskEvent).
type logTable[V any] struct {
	mu   sync.RWMutex
	rows map[uint64][]V
}

func newLogTable[V any]() *logTable[V] {
	return &logTable[V]{rows: make(map[uint64][]V)}
}

func (t *logTable[V]) append(parent uint64, v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[parent] = append(t.rows[parent], v)
}

func (t *logTable[V]) list(parent uint64) []V {
	t.mu.RLock()
	defer t.mu.RUnlock()
	src := t.rows[parent]
	out := make([]V, len(src))
	copy(out, src)
	return out
}

func (t *logTable[V]) all() []V {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []V
	for _, rows := range t.rows {
		out = append(out, rows...)
	}
	return out
}

// Store owns every record in the engine. All mutation goes through the
// managers (memory.go, graph.go, agent.go, task.go); nothing outside this
// package ever holds a table's lock directly.
type Store struct {
	memories     *table[uint64, Memory]
	history      *logTable[MemoryHistory]
	entities     *entityTable
	relations    *table[uint64, Relationship]
	channels     *table[uint64, Channel]
	channelsByName struct {
		mu   sync.RWMutex
		name map[string]uint64
	}
	memberships *table[uint64, ChannelMembership]
	agents      *table[string, Agent]
	tasks       *table[uint64, Task]
	taskEvents  *logTable[TaskEvent]
}

func newStore() *Store {
	s := &Store{
		memories:    newTable[uint64, Memory](),
		history:     newLogTable[MemoryHistory](),
		entities:    newEntityTable(),
		relations:   newTable[uint64, Relationship](),
		channels:    newTable[uint64, Channel](),
		memberships: newTable[uint64, ChannelMembership](),
		agents:      newTable[string, Agent](),
		tasks:       newTable[uint64, Task](),
		taskEvents:  newLogTable[TaskEvent](),
	}
	s.channelsByName.name = make(map[string]uint64)
	return s
}

func (s *Store) registerChannelName(name string, id uint64) {
	s.channelsByName.mu.Lock()
	defer s.channelsByName.mu.Unlock()
	s.channelsByName.name[name] = id
}

func (s *Store) channelIDByName(name string) (uint64, bool) {
	s.channelsByName.mu.RLock()
	defer s.channelsByName.mu.RUnlock()
	id, ok := s.channelsByName.name[name]
	return id, ok
}
