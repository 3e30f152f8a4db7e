package wsfanout

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hivemindlabs/hivemindd/internal/bus"
	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (string, *bus.Bus, *engine.Engine) {
	t.Helper()
	b := bus.New(8, nil)
	eng := engine.New(engine.Options{Bus: b})
	handler := New(b, eng, nil)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	return url, b, eng
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSubscribeReceivesSubscribedAck(t *testing.T) {
	url, _, _ := newTestServer(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: clientSubscribe, Channels: []string{"global"}}))

	var resp serverMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, serverSubscribed, resp.Type)
	assert.Equal(t, []string{"global"}, resp.Channels)
}

func TestPingReceivesPong(t *testing.T) {
	url, _, _ := newTestServer(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: clientPing}))

	var resp serverMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, serverPong, resp.Type)
}

func TestSubscribedClientReceivesPublishedEvent(t *testing.T) {
	url, b, _ := newTestServer(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: clientSubscribe, Channels: []string{"global"}}))
	var ack serverMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&ack))
	require.Equal(t, serverSubscribed, ack.Type)

	time.Sleep(50 * time.Millisecond) // let the forwarder goroutine start
	b.Publish("global", engine.Event{Kind: engine.EventMemoryAdded, Channel: "global", Payload: map[string]any{"id": float64(1)}})

	var evMsg serverMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&evMsg))
	assert.Equal(t, serverEvent, evMsg.Type)
	assert.Equal(t, engine.EventMemoryAdded, evMsg.Kind)
	assert.Equal(t, "global", evMsg.Channel)
}
