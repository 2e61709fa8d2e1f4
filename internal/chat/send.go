package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// Validation failures. Neither reaches the network; the caller keeps the
// draft and shows the error.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
)

// Send validates and posts a message. On success the server echo is
// persisted and returned; on failure the error is returned and nothing is
// stored, leaving the draft with the caller.
func (s *Session) Send(ctx context.Context, text string) (*store.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.cfg.MaxMessageLen {
		return nil, fmt.Errorf("%w (%d runes, max %d)", ErrMessageTooLong, utf8.RuneCountInString(text), s.cfg.MaxMessageLen)
	}

	s.stopTyping()

	echo, err := s.msgAPI.SendMessage(ctx, api.SendMessageRequest{
		RideID:      s.cfg.RideID,
		Message:     text,
		MessageType: "text",
	})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	// The echo carries the authoritative id; persisting it here means the
	// later push or poll delivery of the same message is a duplicate no-op.
	if echo.SenderRole == "" {
		echo.SenderRole = s.cfg.Role
	}
	rec := store.Message{
		RideID:         s.cfg.RideID,
		MsgID:          echo.ID,
		ConversationID: echo.ConversationID,
		Body:           echo.Message,
		MessageType:    echo.MessageType,
		SenderRole:     echo.SenderRole,
		CreatedAt:      echo.CreatedAt,
	}
	if s.ingest(echo, false) {
		s.bus.Publish("chat.sent", rec)
	}
	return &rec, nil
}

// QuickReplies returns the canned replies for a role.
func QuickReplies(role string) []string {
	if role == "driver" {
		return []string{
			"I'm on my way.",
			"I've arrived at the pickup point.",
			"Traffic is heavy, running a few minutes late.",
		}
	}
	return []string{
		"Where are you now?",
		"I'm at the pickup point.",
		"Thank you!",
	}
}
