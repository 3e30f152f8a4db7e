package engine

import (
	"fmt"
	"time"
)

// RegisterAgentInput is the caller-supplied shape for RegisterAgent.
type RegisterAgentInput struct {
	AgentID      string
	Name         string
	AgentType    string
	Capabilities []string
	Metadata     string
}

// RegisterAgent inserts or re-registers an agent as Online with last_seen
// set to now.
func (e *Engine) RegisterAgent(in RegisterAgentInput) (Agent, error) {
	if in.AgentID == "" {
		return Agent{}, fmt.Errorf("%w: agent_id is required", ErrValidation)
	}
	now := time.Now().UTC()
	a := Agent{
		AgentID:      in.AgentID,
		Name:         in.Name,
		AgentType:    in.AgentType,
		Capabilities: append([]string(nil), in.Capabilities...),
		Status:       AgentOnline,
		LastSeen:     now,
		Metadata:     in.Metadata,
	}
	if existing, ok := e.store.agents.get(in.AgentID); ok {
		a.MemoryCount = existing.MemoryCount
	}
	e.store.agents.insert(in.AgentID, a)
	return a, nil
}

// Heartbeat bumps last_seen only. There is no background sweep marking
// missed-heartbeat agents Offline: the original source doesn't have one
// either, and SPEC_FULL.md's Open Question decision keeps it that way
// rather than inventing a timeout policy.
func (e *Engine) Heartbeat(agentID string) (Agent, error) {
	updated, ok := e.store.agents.updateInPlace(agentID, func(a Agent) (Agent, bool) {
		a.LastSeen = time.Now().UTC()
		return a, true
	})
	if !ok {
		return Agent{}, ErrNotFound
	}
	return updated, nil
}

// ListAgents returns a snapshot of every registered agent.
func (e *Engine) ListAgents() []Agent {
	return e.store.agents.iterSnapshot()
}

// GetAgent returns the agent with the given id.
func (e *Engine) GetAgent(agentID string) (Agent, error) {
	a, ok := e.store.agents.get(agentID)
	if !ok {
		return Agent{}, ErrNotFound
	}
	return a, nil
}
