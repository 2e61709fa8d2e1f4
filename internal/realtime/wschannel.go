package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// envelope is the wire format: one JSON object per websocket text frame.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSChannel is the production Channel implementation over a websocket.
// The bearer token rides in the Authorization header of the handshake.
type WSChannel struct {
	url    string
	logger *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	handlers  map[string]map[int]Handler
	nextID    int

	writeMu sync.Mutex
}

// NewWSChannel creates a channel for the given server URL. http(s) schemes
// are rewritten to ws(s); the realtime endpoint is /ws.
func NewWSChannel(serverURL string, logger *zap.Logger) *WSChannel {
	u := serverURL
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	if !strings.HasPrefix(u, "ws") {
		u = "ws://" + u
	}
	return &WSChannel{
		url:      strings.TrimSuffix(u, "/") + "/ws",
		logger:   logger,
		handlers: make(map[string]map[int]Handler),
	}
}

// Connect dials the server. The dial error is returned synchronously; on
// success a read loop runs until the connection drops, which surfaces as an
// EventDisconnect.
func (c *WSChannel) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
			_ = resp.Body.Close()
		}
		// An auth status means the server answered and refused the
		// credentials. That is an application-level rejection, not a failure
		// of the transport.
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return fmt.Errorf("dial %s: unauthorized (%d)", c.url, status)
		}
		if status != 0 {
			return fmt.Errorf("dial %s (status %d): %w", c.url, status, err)
		}
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.fire(EventConnect, nil)
	go c.readLoop(conn)
	return nil
}

// Disconnect closes the connection. Safe to call when not connected.
func (c *WSChannel) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// Connected reports whether the channel currently holds a live connection.
func (c *WSChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Emit sends an event envelope to the server.
func (c *WSChannel) Emit(event string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()
	if !connected || conn == nil {
		return fmt.Errorf("emit %s: channel not connected", event)
	}

	env := envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", event, err)
		}
		env.Payload = data
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(env); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// On registers a handler for an event and returns its removal function.
func (c *WSChannel) On(event string, h Handler) (off func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]Handler)
	}
	id := c.nextID
	c.nextID++
	c.handlers[event][id] = h

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[event], id)
	}
}

func (c *WSChannel) readLoop(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			c.markDisconnected(err.Error())
			return
		}
		if env.Event == "" {
			continue
		}
		c.fire(env.Event, env.Payload)
	}
}

func (c *WSChannel) markDisconnected(reason string) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	c.conn = nil
	c.mu.Unlock()

	payload, _ := json.Marshal(reason)
	c.fire(EventDisconnect, payload)
}

// fire invokes handlers outside the registry lock so a handler may call
// On/Off or Emit without deadlocking.
func (c *WSChannel) fire(event string, payload json.RawMessage) {
	c.mu.Lock()
	hs := make([]Handler, 0, len(c.handlers[event]))
	for _, h := range c.handlers[event] {
		hs = append(hs, h)
	}
	c.mu.Unlock()

	for _, h := range hs {
		h(payload)
	}
}
