package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// dialPump upgrades a test server connection, starts WritePump on it,
// and returns the client side of the socket plus the feed channel.
func dialPump(t *testing.T) (*websocket.Conn, *Client) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	ready := make(chan *Client, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(NewHub(nil), conn, "u1")
		ready <- client
		client.WritePump()
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	return peer, <-ready
}

func TestWritePump_DeliversQueuedEvents(t *testing.T) {
	peer, client := dialPump(t)

	client.feed <- []byte(`{"type":"message","payload":{"id":"m1"}}`)
	client.feed <- []byte(`{"type":"message","payload":{"id":"m2"}}`)

	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, first, err := peer.ReadMessage()
	assert.NoError(t, err)
	assert.Contains(t, string(first), "m1")

	_, second, err := peer.ReadMessage()
	assert.NoError(t, err)
	assert.Contains(t, string(second), "m2")
}

func TestWritePump_ClosedFeedClosesSocket(t *testing.T) {
	peer, client := dialPump(t)

	close(client.feed)

	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := peer.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
