// Package bus implements HiveMindDB's channel bus (C7): named pub/sub with
// a bounded per-subscriber queue per channel. Publish never blocks on a
// slow subscriber — it drops the oldest queued event and counts the drop,
// surfaced to the subscriber as a lag notice on its next receive.
package bus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hivemindlabs/hivemindd/internal/engine"
)

// DefaultCapacity is the per-subscriber queue depth used when none is
// configured, matching spec.md §4.7's default.
const DefaultCapacity = 256

type subscriber struct {
	ch     chan engine.Event
	lagged atomic.Uint64
}

type topic struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
}

// Bus is a process-wide named pub/sub fabric. The zero value is not usable;
// construct with New.
type Bus struct {
	mu       sync.RWMutex
	topics   map[string]*topic
	capacity int
	logger   *slog.Logger
}

// New constructs a Bus whose per-subscriber queues hold capacity events
// before dropping the oldest (capacity <= 0 uses DefaultCapacity).
func New(capacity int, logger *slog.Logger) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{topics: make(map[string]*topic), capacity: capacity, logger: logger}
}

func (b *Bus) topicFor(name string) *topic {
	b.mu.RLock()
	t, ok := b.topics[name]
	b.mu.RUnlock()
	if ok {
		return t
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[name]; ok {
		return t
	}
	t = &topic{subs: make(map[uint64]*subscriber)}
	b.topics[name] = t
	return t
}

// Publish implements engine.Publisher: it enqueues ev on channel's topic for
// every current subscriber. A full subscriber queue drops its oldest event
// to make room (spec.md §4.7) rather than blocking the publisher.
func (b *Bus) Publish(channel string, ev engine.Event) {
	t := b.topicFor(channel)

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.subs {
		select {
		case s.ch <- ev:
		default:
			select {
			case <-s.ch:
				s.lagged.Add(1)
			default:
			}
			select {
			case s.ch <- ev:
			default:
				// Another publisher raced us to the freed slot; count this
				// as a drop too rather than spin.
				s.lagged.Add(1)
			}
		}
	}
}

// Subscription is a single subscriber's view of one channel. It only
// observes events published after Subscribe was called — the bus keeps no
// replay buffer (SPEC_FULL.md's Open Question decision on bus replay).
type Subscription struct {
	bus   *Bus
	name  string
	topic *topic
	id    uint64
	sub   *subscriber
}

// Subscribe returns a fresh Subscription to name, auto-creating the topic
// if it doesn't exist yet.
func (b *Bus) Subscribe(name string) *Subscription {
	t := b.topicFor(name)

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	sub := &subscriber{ch: make(chan engine.Event, b.capacity)}
	t.subs[id] = sub
	t.mu.Unlock()

	return &Subscription{bus: b, name: name, topic: t, id: id, sub: sub}
}

// Recv blocks until an event arrives or ctx is done. lagged is the number
// of events dropped since the last Recv call, usually 0.
func (s *Subscription) Recv(ctx context.Context) (ev engine.Event, lagged uint64, err error) {
	select {
	case ev = <-s.sub.ch:
		lagged = s.sub.lagged.Swap(0)
		return ev, lagged, nil
	case <-ctx.Done():
		return engine.Event{}, 0, ctx.Err()
	}
}

// Name returns the channel name this subscription observes.
func (s *Subscription) Name() string { return s.name }

// Close releases the subscription's queue. Idempotent.
func (s *Subscription) Close() {
	s.topic.mu.Lock()
	delete(s.topic.subs, s.id)
	s.topic.mu.Unlock()
}

// SubscriberCount reports how many live subscriptions a channel has, for
// diagnostics/status only.
func (b *Bus) SubscriberCount(name string) int {
	t := b.topicFor(name)
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
