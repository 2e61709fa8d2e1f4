// Package realtimetest provides a scriptable in-memory Channel for tests:
// it can be driven to emit connect_error on demand and records everything
// emitted through it.
package realtimetest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/realtime"
)

// Emit records one Emit call on the fake channel.
type Emit struct {
	Event   string
	Payload any
}

// FakeChannel implements realtime.Channel in memory.
type FakeChannel struct {
	mu           sync.Mutex
	connected    bool
	connectErrs  []error
	connectCalls int
	emits        []Emit
	handlers     map[string]map[int]realtime.Handler
	nextID       int
}

// NewFakeChannel creates an empty fake channel.
func NewFakeChannel() *FakeChannel {
	return &FakeChannel{handlers: make(map[string]map[int]realtime.Handler)}
}

// FailNextConnects queues errors returned by the next Connect calls, in order.
func (c *FakeChannel) FailNextConnects(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectErrs = append(c.connectErrs, errs...)
}

// Connect consumes a scripted error if one is queued, otherwise succeeds and
// fires the connect lifecycle event.
func (c *FakeChannel) Connect(_ context.Context, _ string) error {
	c.mu.Lock()
	c.connectCalls++
	if len(c.connectErrs) > 0 {
		err := c.connectErrs[0]
		c.connectErrs = c.connectErrs[1:]
		c.mu.Unlock()
		return err
	}
	c.connected = true
	c.mu.Unlock()

	c.Fire(realtime.EventConnect, nil)
	return nil
}

// Disconnect drops the connection and fires the disconnect lifecycle event,
// mirroring the production read loop.
func (c *FakeChannel) Disconnect() {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()
	if wasConnected {
		c.Fire(realtime.EventDisconnect, "closed")
	}
}

// Connected reports the scripted connection state.
func (c *FakeChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Emit records the call.
func (c *FakeChannel) Emit(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emits = append(c.emits, Emit{Event: event, Payload: payload})
	return nil
}

// On registers a handler and returns its removal function.
func (c *FakeChannel) On(event string, h realtime.Handler) (off func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]realtime.Handler)
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

// Fire delivers an event to registered handlers. The payload is marshalled
// to JSON the way the wire would carry it.
func (c *FakeChannel) Fire(event string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	c.mu.Lock()
	hs := make([]realtime.Handler, 0, len(c.handlers[event]))
	for _, h := range c.handlers[event] {
		hs = append(hs, h)
	}
	c.mu.Unlock()
	for _, h := range hs {
		h(raw)
	}
}

// ConnectCalls returns how many times Connect was attempted.
func (c *FakeChannel) ConnectCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectCalls
}

// Emits returns a copy of the recorded Emit calls.
func (c *FakeChannel) Emits() []Emit {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Emit, len(c.emits))
	copy(out, c.emits)
	return out
}

// HandlerCount returns how many handlers are registered for an event.
func (c *FakeChannel) HandlerCount(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers[event])
}

// SetConnected overrides the connection flag without firing events.
func (c *FakeChannel) SetConnected(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = v
}
