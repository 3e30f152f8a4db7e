// Package replication implements the engine.ReplicationSink capability
// (C10): best-effort forwarding of mutation events to an external
// consensus store. Grounded on crates/core/src/persistence.rs's
// ReplicationClient (5s backoff reconnect loop, fire-and-forget event
// queue), adapted from a raw WebSocket transport (no Go analogue for the
// sibling RaftTimeDB process in this pack) to an HTTP POST sink, matching
// the teacher's own preference for bare net/http over a dedicated client
// library.
package replication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/engine"
)

const (
	reconnectBackoff = 5 * time.Second
	queueCapacity    = 1024
)

// HTTPSink posts replication events to rtdbURL as they're published.
// Publish is non-blocking: events queue into an internal buffered channel
// and are drained by Run in the background, so no memory-manager call ever
// waits on network I/O.
type HTTPSink struct {
	url       string
	client    *http.Client
	queue     chan engine.Event
	connected atomic.Bool
	logger    *slog.Logger
}

// New constructs an HTTPSink targeting rtdbURL. Call Run in a goroutine to
// start draining the queue; until Run is running, Publish still accepts
// events up to queueCapacity before it starts dropping them.
func New(rtdbURL string, logger *slog.Logger) *HTTPSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSink{
		url:    rtdbURL,
		client: &http.Client{Timeout: 10 * time.Second},
		queue:  make(chan engine.Event, queueCapacity),
		logger: logger,
	}
}

// Publish enqueues event for background delivery. Returns an error only
// when the queue is full, matching the original's fire-and-forget
// semantics: callers never block on replication health.
func (s *HTTPSink) Publish(ctx context.Context, event engine.Event) error {
	select {
	case s.queue <- event:
		return nil
	default:
		return fmt.Errorf("replication queue full, dropping event %s", event.Kind)
	}
}

// IsConnected reports whether the most recent delivery attempt succeeded.
func (s *HTTPSink) IsConnected() bool { return s.connected.Load() }

// Run drains the queue and posts events to s.url until ctx is cancelled.
// A failed POST triggers a 5s backoff before the next attempt, mirroring
// ReplicationClient::run's reconnect discipline; the event that failed to
// send is dropped rather than retried, since replication is best-effort.
func (s *HTTPSink) Run(ctx context.Context) {
	s.logger.Info("starting replication client", "url", s.url)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("replication client shutting down")
			return
		case event := <-s.queue:
			if err := s.deliver(ctx, event); err != nil {
				s.connected.Store(false)
				s.logger.Warn("replication delivery failed, retrying in 5s", "error", err)
				select {
				case <-time.After(reconnectBackoff):
				case <-ctx.Done():
					return
				}
				continue
			}
			s.connected.Store(true)
		}
	}
}

func (s *HTTPSink) deliver(ctx context.Context, event engine.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/database/subscribe/hivemind",
		bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("replication endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
