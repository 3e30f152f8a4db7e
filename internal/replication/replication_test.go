package replication

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToHTTPEndpoint(t *testing.T) {
	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := New(server.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sink.Run(ctx)

	require.NoError(t, sink.Publish(ctx, engine.Event{Kind: engine.EventMemoryAdded}))

	require.Eventually(t, func() bool { return received.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, sink.IsConnected())
}

func TestPublishReturnsErrorWhenQueueFull(t *testing.T) {
	sink := New("http://127.0.0.1:0", nil) // never run, so the queue never drains

	var lastErr error
	for i := 0; i < queueCapacity+1; i++ {
		lastErr = sink.Publish(context.Background(), engine.Event{Kind: engine.EventMemoryAdded})
	}
	assert.Error(t, lastErr)
}

func TestFailedDeliveryMarksDisconnected(t *testing.T) {
	sink := New("http://127.0.0.1:1", nil) // unroutable port, guaranteed to fail fast
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sink.Run(ctx)

	require.NoError(t, sink.Publish(ctx, engine.Event{Kind: engine.EventMemoryAdded}))

	require.Eventually(t, func() bool { return !sink.IsConnected() }, time.Second, 10*time.Millisecond)
}
