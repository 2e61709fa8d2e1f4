package realtime

import (
	"context"
	"encoding/json"
)

// Lifecycle events delivered through Channel.On alongside application events.
const (
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventConnectError = "connect_error"
)

// Handler receives the JSON payload of a channel event. Lifecycle events
// carry a JSON string (the disconnect reason or error message) or null.
type Handler func(payload json.RawMessage)

// Channel is the duplex transport primitive. The Manager is the only caller
// of Connect/Disconnect; consumers read the Manager's published snapshot and
// attach handlers scoped to their own lifetime.
//
// Connect returns the dial error synchronously; transport failures noticed
// after a successful dial surface as an EventDisconnect. Implementations may
// additionally emit EventConnectError for asynchronous handshake failures.
type Channel interface {
	Connect(ctx context.Context, token string) error
	Disconnect()
	Emit(event string, payload any) error
	On(event string, h Handler) (off func())
	Connected() bool
}
