package store

// Category classifies a notification for display grouping.
type Category string

const (
	CategoryUrgent        Category = "urgent"
	CategoryInformational Category = "informational"
	CategoryUpdates       Category = "updates"
)

// Notification is one entry in a user's persisted notification feed.
type Notification struct {
	UserKey   string
	ID        string
	Title     string
	Body      string
	Category  Category
	Timestamp int64 // epoch ms
	Read      bool
}

// Message is a chat message persisted for a ride room. Seq records arrival
// order; (RideID, MsgID) is unique so the same server message delivered via
// both push and poll lands exactly once.
type Message struct {
	Seq            int64
	RideID         string
	MsgID          string
	ConversationID string
	Body           string
	MessageType    string // text or system
	SenderRole     string // driver or commuter
	CreatedAt      int64  // epoch ms
}

// QueuedAlert is one deferred emergency alert awaiting a successful send.
type QueuedAlert struct {
	ID              int64
	DriverID        string
	Message         string
	IncludeLocation bool
	QueuedAt        int64 // epoch ms
}
