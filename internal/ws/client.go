package ws

import (
	"time"

	"github.com/gorilla/websocket"

	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// The feed is push-only; an inbound frame is at most a pong, so
	// anything larger than this is a misbehaving client.
	maxInboundSize = 512
)

// Client is one WebSocket connection on the account-wide message feed.
// A user may hold several at once (multiple tabs, phone plus desktop);
// the hub fans every event out to all of them.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	feed   chan []byte // marshaled events, closed by the hub on eviction
	userID string
}

// NewClient wires a freshly upgraded connection to the hub
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		feed:   make(chan []byte, 256),
		userID: userID,
	}
}

// ReadPump drains the inbound side until the peer goes away. The feed
// carries no client commands, so reads exist only to service pongs and
// to notice the close.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				pkglogger.GetLogger().Warn().
					Err(err).
					Str("user_id", c.userID).
					Msg("message feed connection dropped")
			}
			return
		}
		// Data frames from the client are ignored; sending goes
		// through POST /messages, never through the socket.
	}
}

// WritePump pushes feed events to the peer and keeps the connection
// alive with pings. Each event is its own frame; a backlog left by a
// slow write is flushed before blocking on the channel again.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.feed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				// Hub evicted us (shutdown or feed overflow)
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
				return
			}

			for n := len(c.feed); n > 0; n-- {
				queued, ok := <-c.feed
				if !ok {
					c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
					return
				}
				if err := c.conn.WriteMessage(websocket.TextMessage, queued); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
