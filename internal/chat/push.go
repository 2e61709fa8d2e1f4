package chat

import (
	"encoding/json"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/realtime"
)

// attachPush subscribes the session to pushed messages for its ride. The
// server emits the message either bare or wrapped in a {message: ...}
// envelope; both shapes are accepted.
func (s *Session) attachPush(ch realtime.Channel) func() {
	return ch.On("messageReceived", func(payload json.RawMessage) {
		m, ok := decodePushed(payload)
		if !ok {
			s.logger.Warn("malformed messageReceived event")
			return
		}
		if m.ConversationID != "" && s.cfg.ConversationID != "" && m.ConversationID != s.cfg.ConversationID {
			return
		}
		s.ingest(m, true)
	})
}

func decodePushed(payload json.RawMessage) (*api.ChatMessage, bool) {
	var envelope struct {
		RideID  string           `json:"rideId"`
		Message *api.ChatMessage `json:"message"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Message != nil && envelope.Message.ID != "" {
		return envelope.Message, true
	}

	var m api.ChatMessage
	if err := json.Unmarshal(payload, &m); err != nil || m.ID == "" {
		return nil, false
	}
	return &m, true
}
