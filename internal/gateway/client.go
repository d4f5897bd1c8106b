// internal/gateway/client.go
//
// Per-connection state and the read/write pumps for one WebSocket client.
// Outbound messages go through a buffered send channel; a client that cannot
// keep up is evicted rather than blocking the room.

package gateway

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const sendBuffer = 256

// client is one WebSocket connection and the player it is bound to.
// playerID/gameID are empty until the connection creates, joins, or rejoins
// a game.
type client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	gameID   string

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, sendBuffer)}
}

// enqueue marshals the event and queues it for the write pump.
// Reports false when the send buffer is full (slow consumer); events for a
// closed client are silently dropped.
func (c *client) enqueue(v any) bool {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal outbound event")
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel so the write pump drains and exits.
// Safe to call more than once; enqueue after close is a no-op, so a broadcast
// racing a disconnect can never hit a closed channel.
func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump drains the send channel onto the socket until it is closed.
func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Msg("write to client")
			return
		}
	}
}

// readPump reads inbound events and hands them to the gateway until the
// connection drops.
func (g *Gateway) readPump(c *client) {
	defer func() {
		g.handleDisconnect(c)
		c.conn.Close()
	}()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.enqueue(errorEvent{Type: "error", Message: "Invalid message"})
			continue
		}
		g.dispatch(c, ev)
	}
}
