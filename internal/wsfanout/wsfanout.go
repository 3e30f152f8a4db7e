// Package wsfanout implements the WebSocket fan-out surface (C8): clients
// subscribe to named channels and receive a JSON-encoded engine.Event per
// channel message in real time. Grounded on
// crates/core/src/websocket.rs::handle_ws_connection (subscribe/unsubscribe/
// ping protocol, one forwarder per subscription) adapted from
// tokio::sync::broadcast::Receiver forwarding to Go channel receivers from
// internal/bus, and on the teacher's own gorilla/websocket.Upgrader wiring
// in cmd/knowhow-server/main.go.
package wsfanout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hivemindlabs/hivemindd/internal/bus"
	"github.com/hivemindlabs/hivemindd/internal/engine"
)

// Upgrader is shared across connections, matching the teacher's
// websocket.Upgrader{CheckOrigin: allow-all} for local/dev-friendly CORS.
var Upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type clientMessageType string

const (
	clientSubscribe   clientMessageType = "subscribe"
	clientUnsubscribe clientMessageType = "unsubscribe"
	clientPing        clientMessageType = "ping"
)

type clientMessage struct {
	Type     clientMessageType `json:"type"`
	Channels []string          `json:"channels,omitempty"`
	AgentID  string            `json:"agent_id,omitempty"`
}

type serverMessageType string

const (
	serverSubscribed serverMessageType = "subscribed"
	serverPong       serverMessageType = "pong"
	serverError      serverMessageType = "error"
	serverEvent      serverMessageType = "event"
)

type serverMessage struct {
	Type     serverMessageType `json:"type"`
	Channels []string          `json:"channels,omitempty"`
	Message  string            `json:"message,omitempty"`
	Channel  string            `json:"channel,omitempty"`
	Kind     engine.EventKind  `json:"kind,omitempty"`
	Payload  any               `json:"payload,omitempty"`
}

// WriteTimeout bounds how long a single write to a slow client may block
// before the connection is dropped, matching spec.md §4.8's slow-client
// eviction requirement (the original has no such bound — events are simply
// buffered by tokio::sync::broadcast and lag is reported, never evicted).
const WriteTimeout = 5 * time.Second

// Handler upgrades HTTP connections to WebSocket and fans out bus events.
type Handler struct {
	bus    *bus.Bus
	engine *engine.Engine
	logger *slog.Logger
}

func New(b *bus.Bus, eng *engine.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{bus: b, engine: eng, logger: logger}
}

// ServeHTTP upgrades the request and runs the connection's lifecycle until
// the client disconnects or an unrecoverable write error occurs.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(conn)
}

func (h *Handler) handleConnection(conn *websocket.Conn) {
	// clientID has no protocol meaning, only a correlation handle for logs
	// spanning this connection's lifetime and its per-subscription forwarders.
	clientID := uuid.NewString()
	logger := h.logger.With("client_id", clientID)
	logger.Info("websocket client connected")
	defer func() {
		conn.Close()
		logger.Info("websocket client disconnected")
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	writeJSON := func(msg serverMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		return conn.WriteJSON(msg)
	}

	var wg sync.WaitGroup
	subs := make(map[string]*bus.Subscription)
	var subsMu sync.Mutex
	defer func() {
		subsMu.Lock()
		for _, s := range subs {
			s.Close()
		}
		subsMu.Unlock()
		cancel()
		wg.Wait()
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case clientSubscribe:
			subscribed := make([]string, 0, len(msg.Channels))
			for _, name := range msg.Channels {
				createdBy := msg.AgentID
				if createdBy == "" {
					createdBy = "ws-client"
				}
				if _, err := h.engine.EnsureChannel(name, createdBy); err != nil {
					logger.Warn("auto-create channel failed", "channel", name, "error", err)
					continue
				}

				sub := h.bus.Subscribe(name)
				subsMu.Lock()
				subs[name] = sub
				subsMu.Unlock()
				subscribed = append(subscribed, name)

				wg.Add(1)
				go h.forward(ctx, &wg, sub, writeJSON, logger)
			}
			_ = writeJSON(serverMessage{Type: serverSubscribed, Channels: subscribed})

		case clientUnsubscribe:
			// Matches the original: per-channel unsubscribe would need
			// receiver tracking by name mid-connection; subscriptions are
			// torn down wholesale on disconnect instead.
			logger.Debug("unsubscribe received, channels cleaned up on disconnect")

		case clientPing:
			_ = writeJSON(serverMessage{Type: serverPong})

		default:
			_ = writeJSON(serverMessage{Type: serverError, Message: "unknown message type"})
		}
	}
}

func (h *Handler) forward(ctx context.Context, wg *sync.WaitGroup, sub *bus.Subscription, writeJSON func(serverMessage) error, logger *slog.Logger) {
	defer wg.Done()
	for {
		ev, lagged, err := sub.Recv(ctx)
		if err != nil {
			return
		}
		if lagged > 0 {
			logger.Warn("channel subscriber lagged", "channel", sub.Name(), "skipped", lagged)
		}

		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Warn("marshal event payload failed", "error", err)
			continue
		}
		var decoded any
		_ = json.Unmarshal(payload, &decoded)

		if err := writeJSON(serverMessage{
			Type:    serverEvent,
			Channel: sub.Name(),
			Kind:    ev.Kind,
			Payload: decoded,
		}); err != nil {
			return
		}
	}
}
