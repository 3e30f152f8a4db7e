package engine

import (
	"context"
	"fmt"
	"time"
)

// AddEntityInput is the caller-supplied shape for AddEntity.
type AddEntityInput struct {
	Name        string
	EntityType  string
	Description string
	AgentID     string
	Metadata    string
}

// AddEntity allocates an id and stores a new graph node.
func (e *Engine) AddEntity(ctx context.Context, in AddEntityInput) (Entity, error) {
	if in.Name == "" {
		return Entity{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	now := time.Now().UTC()
	id := e.alloc.next(kindEntity)
	ent := Entity{
		ID:          id,
		Name:        in.Name,
		EntityType:  in.EntityType,
		Description: in.Description,
		AgentID:     in.AgentID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata:    in.Metadata,
	}
	e.store.entities.insert(id, ent)
	e.publish(ctx, Event{Kind: EventEntityAdded, Channel: "global", Payload: ent})
	return ent, nil
}

// GetEntity returns the entity with the given id.
func (e *Engine) GetEntity(id uint64) (Entity, error) {
	ent, ok := e.store.entities.get(id)
	if !ok {
		return Entity{}, ErrNotFound
	}
	return ent, nil
}

// FindEntityByName returns the first entity with the given name, by
// insertion order (spec.md §3 — name is not unique).
func (e *Engine) FindEntityByName(name string) (Entity, error) {
	ent, ok := e.store.entities.findByName(name)
	if !ok {
		return Entity{}, ErrNotFound
	}
	return ent, nil
}

// AddRelationshipInput is the caller-supplied shape for AddRelationship.
type AddRelationshipInput struct {
	SourceEntityID uint64
	TargetEntityID uint64
	RelationType   string
	Description    string
	Weight         float32 // 0 means "unset"; defaults to 1
	CreatedBy      string
	Metadata       string
}

// AddRelationship validates both endpoints exist (ErrGraphEndpoint if not —
// a stronger check than the original source, per DESIGN.md's Open Question
// decision on the direct API path) and stores a new directed edge.
// Duplicate (source, target, type) edges are permitted.
func (e *Engine) AddRelationship(ctx context.Context, in AddRelationshipInput) (Relationship, error) {
	if _, err := e.GetEntity(in.SourceEntityID); err != nil {
		return Relationship{}, ErrGraphEndpoint
	}
	if _, err := e.GetEntity(in.TargetEntityID); err != nil {
		return Relationship{}, ErrGraphEndpoint
	}
	if in.RelationType == "" {
		return Relationship{}, fmt.Errorf("%w: relation_type is required", ErrValidation)
	}

	weight := in.Weight
	if weight == 0 {
		weight = 1
	}

	now := time.Now().UTC()
	id := e.alloc.next(kindRelationship)
	rel := Relationship{
		ID:             id,
		SourceEntityID: in.SourceEntityID,
		TargetEntityID: in.TargetEntityID,
		RelationType:   in.RelationType,
		Description:    in.Description,
		Weight:         weight,
		ValidFrom:      now,
		CreatedBy:      in.CreatedBy,
		Metadata:       in.Metadata,
	}
	e.store.relations.insert(id, rel)
	e.publish(ctx, Event{Kind: EventRelationshipAdded, Channel: "global", Payload: rel})
	return rel, nil
}

// NeighborPair is one edge-and-endpoint returned by Neighbors.
type NeighborPair struct {
	Relationship Relationship
	Other        Entity
}

// Neighbors returns, in insertion order, every outgoing relationship from
// entityID paired with its target entity.
func (e *Engine) Neighbors(entityID uint64) []NeighborPair {
	var out []NeighborPair
	for _, rel := range e.outgoingSorted(entityID) {
		if other, ok := e.store.entities.get(rel.TargetEntityID); ok {
			out = append(out, NeighborPair{Relationship: rel, Other: other})
		}
	}
	return out
}

// outgoingSorted returns entityID's outgoing relationships ordered by id
// (a stable proxy for insertion order, since the underlying table has no
// separate ordered index for relationships).
func (e *Engine) outgoingSorted(entityID uint64) []Relationship {
	all := e.store.relations.iterSnapshot()
	var out []Relationship
	for _, r := range all {
		if r.SourceEntityID == entityID {
			out = append(out, r)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ID < out[j-1].ID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// TraversalNode is one visited entity and its outgoing relationships,
// returned by Traverse.
type TraversalNode struct {
	Entity        Entity
	Relationships []Relationship
}

// Traverse performs a breadth-first walk from startID out to maxDepth hops
// (capped at the engine's configured depth ceiling). Each entity is visited
// at most once (first visit wins); start is visited first; maxDepth=0
// returns only the start entity. Entities reached at maxDepth are returned
// with no relationships, since their outgoing edges lead past the bound. This is a deliberate divergence from the
// original source, whose traverse() is actually a depth-first walk over a
// LIFO stack despite its doc comment — spec.md §4.5/§8 explicitly requires
// BFS, so that's what this does.
func (e *Engine) Traverse(startID uint64, maxDepth int) ([]TraversalNode, error) {
	if maxDepth < 0 {
		maxDepth = 0
	}
	if maxDepth > e.depthCeiling {
		maxDepth = e.depthCeiling
	}

	start, ok := e.store.entities.get(startID)
	if !ok {
		return nil, ErrNotFound
	}

	type queued struct {
		entity Entity
		depth  int
	}

	visited := map[uint64]bool{startID: true}
	queue := []queued{{entity: start, depth: 0}}
	var out []TraversalNode

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			out = append(out, TraversalNode{Entity: cur.entity})
			continue
		}
		rels := e.outgoingSorted(cur.entity.ID)
		out = append(out, TraversalNode{Entity: cur.entity, Relationships: rels})

		for _, rel := range rels {
			if visited[rel.TargetEntityID] {
				continue
			}
			other, ok := e.store.entities.get(rel.TargetEntityID)
			if !ok {
				continue
			}
			visited[rel.TargetEntityID] = true
			queue = append(queue, queued{entity: other, depth: cur.depth + 1})
		}
	}

	return out, nil
}
