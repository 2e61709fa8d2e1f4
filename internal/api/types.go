package api

import (
	"encoding/json"
	"time"
)

// ChatMessage is a server-persisted chat message, normalized at the boundary.
// The backend is loose about field names (Mongo "_id" vs "id", epoch vs
// ISO-8601 timestamps); everything past this package sees one shape.
type ChatMessage struct {
	ID             string
	ConversationID string
	Message        string
	MessageType    string // text or system
	SenderRole     string // driver or commuter
	CreatedAt      int64  // epoch ms, 0 when the server sent nothing usable
}

// UnmarshalJSON normalizes the server's dynamic message shape.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             string          `json:"id"`
		MongoID        string          `json:"_id"`
		ConversationID string          `json:"conversationId"`
		Message        string          `json:"message"`
		MessageType    string          `json:"messageType"`
		SenderRole     string          `json:"senderRole"`
		CreatedAt      json.RawMessage `json:"createdAt"`
		Timestamp      json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = firstNonEmpty(raw.MongoID, raw.ID)
	m.ConversationID = raw.ConversationID
	m.Message = raw.Message
	m.MessageType = raw.MessageType
	if m.MessageType == "" {
		m.MessageType = "text"
	}
	m.SenderRole = raw.SenderRole
	m.CreatedAt = epochMs(raw.CreatedAt, raw.Timestamp)
	return nil
}

// RideSummary is the polled ride state used by the notification synthesizer.
// The server reports the assigned driver under driver/driverId/acceptedBy
// interchangeably, as a string id or an embedded object.
type RideSummary struct {
	ID       string
	Status   string
	DriverID string
}

// UnmarshalJSON normalizes the server's dynamic ride shape.
func (r *RideSummary) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         string          `json:"id"`
		MongoID    string          `json:"_id"`
		Status     string          `json:"status"`
		Driver     json.RawMessage `json:"driver"`
		DriverID   json.RawMessage `json:"driverId"`
		AcceptedBy json.RawMessage `json:"acceptedBy"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = firstNonEmpty(raw.MongoID, raw.ID)
	r.Status = raw.Status
	r.DriverID = firstNonEmpty(refID(raw.Driver), refID(raw.DriverID), refID(raw.AcceptedBy))
	return nil
}

// AlertPayload is an emergency alert request.
type AlertPayload struct {
	DriverID        string `json:"driverId"`
	Message         string `json:"messageTemplate"`
	IncludeLocation bool   `json:"includeLocation"`
}

// AlertResult reports who was alerted.
type AlertResult struct {
	Recipients []string `json:"recipients"`
}

// refID extracts an id from a reference that may be a plain string id or an
// embedded object carrying _id/id.
func refID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return firstNonEmpty(obj.MongoID, obj.ID)
	}
	return ""
}

// epochMs parses the first usable timestamp: a JSON number (epoch seconds or
// milliseconds) or an ISO-8601 string.
func epochMs(raws ...json.RawMessage) int64 {
	for _, raw := range raws {
		if len(raw) == 0 {
			continue
		}
		var n float64
		if json.Unmarshal(raw, &n) == nil && n > 0 {
			if n < 1e12 {
				// Epoch seconds.
				return int64(n * 1000)
			}
			return int64(n)
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.UnixMilli()
			}
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
