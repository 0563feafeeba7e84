package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/digitalbox/go-digitalbox-server/global"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// defaults when the chat config section is absent
	defaultSendBufferSize = 256
	defaultMaxMessageSize = 10 * 1024 * 1024 // attachments travel inline, base64 encoded
)

// Client represents a single connected chat viewer
type Client struct {
	// The WebSocket connection
	conn *websocket.Conn

	// Hub that manages this client
	hub *Hub

	// Buffered channel of outbound events
	send chan *Event
}

// NewClient creates a new Client instance
func NewClient(conn *websocket.Conn, h *Hub) *Client {
	bufferSize := global.Conf.Chat.SendBufferSize
	if bufferSize <= 0 {
		bufferSize = defaultSendBufferSize
	}
	return &Client{
		conn: conn,
		hub:  h,
		send: make(chan *Event, bufferSize),
	}
}

// ReadPump pumps events from the WebSocket connection into the hub handlers.
// Handlers run on this goroutine, so blocking I/O (attachment upload, log
// append) stalls only this connection's flow.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	maxMessageSize := global.Conf.Chat.MaxMessageSize
	if maxMessageSize <= 0 {
		maxMessageSize = defaultMaxMessageSize
	}
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				global.Logger.Log("warn", "websocket read error", "error", err.Error())
			}
			break
		}

		var event Event
		if uErr := json.Unmarshal(raw, &event); uErr != nil {
			c.sendError(ErrorCodeBadRequest, "malformed event")
			continue
		}
		c.hub.handleEvent(c, &event)
	}
}

// WritePump pumps events from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				global.Logger.Log("warn", "failed to write event", "error", err.Error())
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

// sendError delivers an error event to this connection only
func (c *Client) sendError(code, message string) {
	event, err := NewEvent(EventError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	select {
	case c.send <- event:
	default:
	}
}

// deliver queues an event for this connection; reports false when the client
// is too far behind to keep up
func (c *Client) deliver(event *Event) bool {
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}
