package bus

import "time"

// Event is one message on the in-process bus. Kind is a dot-separated topic
// such as "conn.state_changed", "chat.message", or "alert.flushed";
// subscribers filter by prefix.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
