package bus

import (
	"context"
	"testing"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeOnlySeesFutureEvents(t *testing.T) {
	b := New(4, nil)
	b.Publish("c", engine.Event{Kind: engine.EventMemoryAdded})

	sub := b.Subscribe("c")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := sub.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPublishOrderPreservedPerSubscriber(t *testing.T) {
	b := New(8, nil)
	sub := b.Subscribe("c")

	for i := 0; i < 5; i++ {
		b.Publish("c", engine.Event{Kind: engine.EventKind(string(rune('a' + i)))})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var got []engine.EventKind
	for i := 0; i < 5; i++ {
		ev, _, err := sub.Recv(ctx)
		require.NoError(t, err)
		got = append(got, ev.Kind)
	}
	assert.Equal(t, []engine.EventKind{"a", "b", "c", "d", "e"}, got)
}

func TestFullQueueDropsOldestAndCountsLag(t *testing.T) {
	b := New(2, nil)
	sub := b.Subscribe("c")

	b.Publish("c", engine.Event{Kind: "1"})
	b.Publish("c", engine.Event{Kind: "2"})
	b.Publish("c", engine.Event{Kind: "3"}) // drops "1"

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ev, lagged, err := sub.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.EventKind("2"), ev.Kind)
	assert.Equal(t, uint64(1), lagged)
}

func TestMultipleSubscribersEachGetEveryEvent(t *testing.T) {
	b := New(8, nil)
	sub1 := b.Subscribe("c")
	sub2 := b.Subscribe("c")

	b.Publish("c", engine.Event{Kind: engine.EventChannelShare})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ev1, _, err := sub1.Recv(ctx)
	require.NoError(t, err)
	ev2, _, err := sub2.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.EventChannelShare, ev1.Kind)
	assert.Equal(t, engine.EventChannelShare, ev2.Kind)
}

func TestCloseRemovesSubscriber(t *testing.T) {
	b := New(4, nil)
	sub := b.Subscribe("c")
	sub.Close()
	assert.Equal(t, 0, b.SubscriberCount("c"))
}
