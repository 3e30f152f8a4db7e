package engine

import (
	"context"
	"fmt"
	"time"
)

// CreateChannelInput is the caller-supplied shape for CreateChannel.
type CreateChannelInput struct {
	Name        string
	Description string
	ChannelType ChannelType
	CreatedBy   string
}

// CreateChannel allocates an id and stores channel metadata. Live
// subscriptions are handled entirely by internal/bus, not the Store
// (spec.md §3 — "subscriptions are held in-process by the bus, not
// persisted").
func (e *Engine) CreateChannel(in CreateChannelInput) (Channel, error) {
	if in.Name == "" {
		return Channel{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.ChannelType == "" {
		in.ChannelType = ChannelPublic
	}
	if _, exists := e.store.channelIDByName(in.Name); exists {
		return Channel{}, fmt.Errorf("%w: channel %q already exists", ErrValidation, in.Name)
	}

	id := e.alloc.next(kindChannel)
	ch := Channel{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		ChannelType: in.ChannelType,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	e.store.channels.insert(id, ch)
	e.store.registerChannelName(in.Name, id)
	return ch, nil
}

// GetChannel returns the channel with the given id.
func (e *Engine) GetChannel(id uint64) (Channel, error) {
	ch, ok := e.store.channels.get(id)
	if !ok {
		return Channel{}, ErrNotFound
	}
	return ch, nil
}

// FindChannelByName returns the channel with the given name, if any.
func (e *Engine) FindChannelByName(name string) (Channel, bool) {
	id, ok := e.store.channelIDByName(name)
	if !ok {
		return Channel{}, false
	}
	return e.store.channels.get(id)
}

// EnsureChannel returns the named channel, auto-creating it as Public if it
// doesn't exist yet — matches the original source's websocket subscribe
// handler, which silently creates channels on first subscribe.
func (e *Engine) EnsureChannel(name, createdBy string) (Channel, error) {
	if ch, ok := e.FindChannelByName(name); ok {
		return ch, nil
	}
	return e.CreateChannel(CreateChannelInput{Name: name, ChannelType: ChannelPublic, CreatedBy: createdBy})
}

// ListChannels returns a snapshot of every channel.
func (e *Engine) ListChannels() []Channel {
	return e.store.channels.iterSnapshot()
}

// ShareMemoryToChannel records a ChannelMembership and publishes a
// ChannelShare event carrying the memory.
func (e *Engine) ShareMemoryToChannel(ctx context.Context, channelID, memoryID uint64, sharedBy string) (ChannelMembership, error) {
	ch, err := e.GetChannel(channelID)
	if err != nil {
		return ChannelMembership{}, err
	}
	mem, err := e.Get(memoryID)
	if err != nil {
		return ChannelMembership{}, err
	}

	id := e.alloc.next(kindMembership)
	cm := ChannelMembership{
		ID:        id,
		ChannelID: channelID,
		MemoryID:  memoryID,
		SharedBy:  sharedBy,
		SharedAt:  time.Now().UTC(),
	}
	e.store.memberships.insert(id, cm)
	e.publish(ctx, Event{Kind: EventChannelShare, Channel: ch.Name, Payload: mem})
	return cm, nil
}

// ListMemberships returns a snapshot of every channel membership.
func (e *Engine) ListMemberships() []ChannelMembership {
	return e.store.memberships.iterSnapshot()
}
