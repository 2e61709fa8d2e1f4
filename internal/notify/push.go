package notify

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/realtime"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// pushPayload is the server's notification event. Field names are loose the
// same way the chat payloads are.
type pushPayload struct {
	ID        string          `json:"id"`
	MongoID   string          `json:"_id"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Message   string          `json:"message"`
	Category  string          `json:"category"`
	Timestamp json.RawMessage `json:"timestamp"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

// AttachPush subscribes the service to "notification" events on the duplex
// channel. Returns the detach function. Ingestion is idempotent on the
// server id, so redelivered events do not duplicate the feed.
func (s *Service) AttachPush(ch realtime.Channel) (off func()) {
	return ch.On("notification", func(payload json.RawMessage) {
		var p pushPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			s.logger.Warn("malformed notification event", zap.Error(err))
			return
		}
		n := store.Notification{
			ID:        firstNonEmpty(p.MongoID, p.ID),
			Title:     p.Title,
			Body:      firstNonEmpty(p.Body, p.Message),
			Category:  store.Category(p.Category),
			Timestamp: epochMs(p.Timestamp, p.CreatedAt),
		}
		if n.Title == "" && n.Body == "" {
			return
		}
		if _, err := s.Add(n); err != nil {
			s.logger.Warn("notification ingest failed", zap.Error(err))
		}
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// epochMs accepts the first usable timestamp, as a JSON number in epoch
// seconds or milliseconds.
func epochMs(raws ...json.RawMessage) int64 {
	for _, raw := range raws {
		if len(raw) == 0 {
			continue
		}
		var n float64
		if json.Unmarshal(raw, &n) == nil && n > 0 {
			if n < 1e12 {
				return int64(n * 1000)
			}
			return int64(n)
		}
	}
	return 0
}
