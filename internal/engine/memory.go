package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// AddMemoryInput is the caller-supplied shape for Add. There is
// deliberately no confidence or valid_from field: the original source
// hardcodes confidence to 1.0 and valid_from to now() regardless of
// request input, and SPEC_FULL.md's Open Question decisions keep that
// behavior rather than inventing caller control the source never had.
type AddMemoryInput struct {
	Content   string
	Kind      MemoryKind
	AgentID   string
	UserID    string
	SessionID string
	Source    string
	Tags      []string
	Metadata  string
}

// Add allocates an id, timestamps the memory to now, writes an Add audit
// record, and — if an Embedder is available — synchronously computes and
// stores an embedding. Embedding failure is logged and never fails the add.
func (e *Engine) Add(ctx context.Context, in AddMemoryInput) (Memory, error) {
	if in.Content == "" {
		return Memory{}, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if in.Kind == "" {
		in.Kind = KindFact
	}

	now := time.Now().UTC()
	id := e.alloc.next(kindMemory)
	m := Memory{
		ID:         id,
		Content:    in.Content,
		Kind:       in.Kind,
		AgentID:    in.AgentID,
		UserID:     in.UserID,
		SessionID:  in.SessionID,
		Confidence: 1.0,
		CreatedAt:  now,
		UpdatedAt:  now,
		ValidFrom:  now,
		Source:     in.Source,
		Tags:       append([]string(nil), in.Tags...),
		Metadata:   in.Metadata,
	}
	e.store.memories.insert(id, m)
	e.appendHistory(id, MemoryHistory{
		Operation: OpAdd,
		NewContent: m.Content,
		Timestamp: now,
	})

	e.embedMemory(ctx, m)
	e.publish(ctx, Event{Kind: EventMemoryAdded, Channel: userChannel(m.UserID), Payload: m})
	e.publish(ctx, Event{Kind: EventMemoryAdded, Channel: "global", Payload: m})

	return m, nil
}

func userChannel(userID string) string {
	if userID == "" {
		return "global"
	}
	return "user:" + userID
}

func (e *Engine) appendHistory(memoryID uint64, h MemoryHistory) {
	h.ID = e.alloc.next(kindHistory)
	h.MemoryID = memoryID
	e.store.history.append(memoryID, h)
}

// embedMemory computes and stores an embedding for m if the Embedder is
// available. Failure degrades silently: the memory stays stored without a
// vector and search falls back to keyword-only for it.
func (e *Engine) embedMemory(ctx context.Context, m Memory) {
	if !e.embedder.Available() {
		return
	}
	vec, err := e.embedder.Embed(ctx, m.Content)
	if err != nil {
		e.logger.Warn("embedding failed, storing memory without vector", "memory_id", m.ID, "error", err)
		return
	}
	if err := e.emb.upsert(m.ID, vec); err != nil {
		e.logger.Warn("embedding upsert rejected", "memory_id", m.ID, "error", err)
	}
}

// Get returns the memory with the given id.
func (e *Engine) Get(id uint64) (Memory, error) {
	m, ok := e.store.memories.get(id)
	if !ok {
		return Memory{}, ErrNotFound
	}
	return m, nil
}

// List returns a snapshot of memories matching filter. Tags is
// all-must-match, per spec.md §4.4.
func (e *Engine) List(filter ListFilter) []Memory {
	now := time.Now().UTC()
	all := e.store.memories.iterSnapshot()
	out := lo.Filter(all, func(m Memory, _ int) bool {
		return matchesCommon(m, filter, now) && matchTagsAll(m.Tags, filter.Tags)
	})
	sortMemoriesRecent(out)
	return applyLimit(out, filter.Limit)
}

// CandidateMemories returns the filtered candidate set the search engine
// scores, with any-tag-match semantics (mirroring the original's
// search_keyword, per DESIGN.md's Open Question decision on tag-filter
// divergence between list and search).
func (e *Engine) CandidateMemories(filter ListFilter) []Memory {
	now := time.Now().UTC()
	all := e.store.memories.iterSnapshot()
	return lo.Filter(all, func(m Memory, _ int) bool {
		return matchesCommon(m, filter, now) && matchTagsAny(m.Tags, filter.Tags)
	})
}

// VectorScore returns the cosine similarity between id's stored embedding
// and a pre-computed query vector, or false if id has no embedding.
func (e *Engine) VectorScore(id uint64, queryVec []float32) (float32, bool) {
	return e.emb.scoreOf(id, queryVec)
}

// EmbedQuery embeds text for use as a search query vector. Returns
// available=false (never an error to the caller) if no Embedder is wired.
func (e *Engine) EmbedQuery(ctx context.Context, text string) (vec []float32, available bool, err error) {
	if !e.embedder.Available() {
		return nil, false, nil
	}
	vec, err = e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

func matchesCommon(m Memory, f ListFilter, now time.Time) bool {
	if f.AgentID != "" && m.AgentID != f.AgentID {
		return false
	}
	if f.UserID != "" && m.UserID != f.UserID {
		return false
	}
	if !f.IncludeInvalidated && !m.IsValid(now) {
		return false
	}
	return true
}

func matchTagsAll(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := lo.SliceToMap(have, func(t string) (string, struct{}) { return t, struct{}{} })
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

func matchTagsAny(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := lo.SliceToMap(have, func(t string) (string, struct{}) { return t, struct{}{} })
	for _, w := range want {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

func sortMemoriesRecent(m []Memory) {
	for i := 1; i < len(m); i++ {
		for j := i; j > 0 && m[j].UpdatedAt.After(m[j-1].UpdatedAt); j-- {
			m[j], m[j-1] = m[j-1], m[j]
		}
	}
}

func applyLimit(m []Memory, limit int) []Memory {
	if limit > 0 && len(m) > limit {
		return m[:limit]
	}
	return m
}

// Update mutates content/tags/confidence/metadata, bumps updated_at, writes
// an Update audit record with old+new content, and re-embeds if content
// changed.
func (e *Engine) Update(ctx context.Context, id uint64, patch UpdatePatch, reason, changedBy string) (Memory, error) {
	var oldContent, newContent string
	var contentChanged bool

	updated, ok := e.store.memories.updateInPlace(id, func(m Memory) (Memory, bool) {
		oldContent = m.Content
		if patch.Content != nil && *patch.Content != m.Content {
			m.Content = *patch.Content
			contentChanged = true
		}
		if patch.Tags != nil {
			m.Tags = append([]string(nil), patch.Tags...)
		}
		if patch.Confidence != nil {
			m.Confidence = *patch.Confidence
		}
		if patch.Metadata != nil {
			m.Metadata = *patch.Metadata
		}
		m.UpdatedAt = time.Now().UTC()
		newContent = m.Content
		return m, true
	})
	if !ok {
		return Memory{}, ErrNotFound
	}

	e.appendHistory(id, MemoryHistory{
		Operation:  OpUpdate,
		OldContent: oldContent,
		NewContent: newContent,
		Reason:     reason,
		ChangedBy:  changedBy,
		Timestamp:  updated.UpdatedAt,
	})

	if contentChanged {
		e.embedMemory(ctx, updated)
	}

	e.publish(ctx, Event{Kind: EventMemoryUpdated, Channel: userChannel(updated.UserID), Payload: updated})
	return updated, nil
}

// Invalidate sets valid_until to now and writes an Invalidate audit record.
// Returns ErrAlreadyInvalid if the memory was already invalid.
func (e *Engine) Invalidate(ctx context.Context, id uint64, reason, changedBy string) (Memory, error) {
	now := time.Now().UTC()
	var alreadyInvalid bool

	updated, ok := e.store.memories.updateInPlace(id, func(m Memory) (Memory, bool) {
		if !m.IsValid(now) {
			alreadyInvalid = true
			return m, false
		}
		m.ValidUntil = &now
		m.UpdatedAt = now
		return m, true
	})
	if !ok {
		return Memory{}, ErrNotFound
	}
	if alreadyInvalid {
		return updated, ErrAlreadyInvalid
	}

	e.appendHistory(id, MemoryHistory{
		Operation: OpInvalidate,
		Reason:    reason,
		ChangedBy: changedBy,
		Timestamp: now,
	})
	e.publish(ctx, Event{Kind: EventMemoryInvalidated, Channel: userChannel(updated.UserID), Payload: updated})
	return updated, nil
}

// History returns the ordered audit log for a memory.
func (e *Engine) History(id uint64) ([]MemoryHistory, error) {
	if _, ok := e.store.memories.get(id); !ok {
		return nil, ErrNotFound
	}
	return e.store.history.list(id), nil
}

// ApplyExtraction executes the Extractor's verdict for one fact: Add
// allocates a brand-new memory attributed to agentID/userID through Add,
// Update patches the named existing memory through Update (each with its
// own locking and audit record), Noop does nothing and returns a zero
// Memory.
func (e *Engine) ApplyExtraction(ctx context.Context, fact ExtractedFact, agentID, userID string) (Memory, error) {
	switch fact.Verdict {
	case VerdictUpdate:
		content := fact.Content
		return e.Update(ctx, fact.UpdatesMemoryID, UpdatePatch{Content: &content, Tags: fact.Tags}, "extraction", "extractor")
	case VerdictNoop:
		return Memory{}, nil
	default:
		return e.Add(ctx, AddMemoryInput{Content: fact.Content, Kind: fact.Kind, Tags: fact.Tags, AgentID: agentID, UserID: userID})
	}
}
