package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 30 * time.Second
	pingPeriod    = 25 * time.Second
	maxFrameSize  = 4096
	sendQueueSize = 64
	verifyTimeout = 5 * time.Second
)

// Client is one websocket connection. Its identity lives in the hub's
// binding table, not here.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		Send: make(chan []byte, sendQueueSize),
	}
}

// Run registers the connection with the hub and pumps frames until it closes.
func (c *Client) Run() {
	if !c.hub.submit(joinEvent{client: c}) {
		_ = c.conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

// read
func (c *Client) readPump() {
	defer func() {
		if !c.hub.submit(leaveEvent{client: c}) {
			c.close()
		}
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("read failed", "error", err)
			}
			return
		}
		c.handleRaw(raw)
	}
}

// handleRaw decodes one frame. Authentication is verified here, on the
// connection's own goroutine, and only the outcome reaches the hub, which
// keeps the hub loop free of blocking calls without reordering this
// connection's messages.
func (c *Client) handleRaw(raw []byte) {
	in, err := decodeInbound(raw)
	if err != nil || in.Type == "" {
		c.hub.log.Debug("malformed message dropped", "error", err)
		return
	}
	if in.Type != TypeAuthenticate {
		c.hub.submit(messageEvent{client: c, msg: in})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()
	id, err := c.hub.verifier.Verify(ctx, in.Token)
	if err != nil {
		c.hub.log.Debug("authentication failed", "error", err)
		c.sendJSON(errorMsg{Type: TypeError, Reason: "Authentication failed"})
		return
	}
	c.hub.submit(bindEvent{client: c, identity: id})
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// send queues data without blocking; false when the buffer is full or the
// connection is closed.
func (c *Client) send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) sendJSON(msg any) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	return c.send(data)
}

// close ends the write side; safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
