// Package chat runs the per-ride message room: history hydration, push
// receipt with a polling fallback, deduplicated persistence, send
// validation, and the typing indicator debounce.
package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/notify"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/realtime"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/session"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// MessagingAPI is the slice of the API client the chat session needs.
type MessagingAPI interface {
	FetchMessageHistory(ctx context.Context, rideID string) ([]api.ChatMessage, error)
	SendMessage(ctx context.Context, req api.SendMessageRequest) (*api.ChatMessage, error)
}

// Config identifies the room and tunes the session.
type Config struct {
	RideID         string
	ConversationID string
	// Role is the local user's role, driver or commuter. Messages from the
	// other role count as incoming.
	Role string
	// PollInterval is the fallback poll period used while the duplex
	// channel is unavailable.
	PollInterval time.Duration
	// TypingIdle is how long after the last keystroke the typing indicator
	// is withdrawn.
	TypingIdle time.Duration
	// MaxMessageLen caps outgoing message length in runes.
	MaxMessageLen int
	// ReadReceipts opts in to emitting read acknowledgements for incoming
	// messages. Off by default.
	ReadReceipts bool
}

func (c *Config) fillDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.TypingIdle <= 0 {
		c.TypingIdle = time.Second
	}
	if c.MaxMessageLen <= 0 {
		c.MaxMessageLen = 5000
	}
}

// Session is one open chat room. Create with NewSession, then Start; every
// Start must be paired with Stop to leave the room and release timers.
type Session struct {
	cfg      Config
	msgAPI   MessagingAPI
	db       *store.DB
	snapshot func() realtime.Snapshot
	tokens   session.TokenSource
	notifier notify.Notifier
	bus      *bus.Bus
	logger   *zap.Logger

	cancel  context.CancelFunc
	offPush func()
	offBus  func()

	typingMu sync.Mutex
	typing   *time.Timer
}

// NewSession creates a chat session for one ride room.
func NewSession(cfg Config, msgAPI MessagingAPI, db *store.DB, snapshot func() realtime.Snapshot,
	tokens session.TokenSource, notifier notify.Notifier, b *bus.Bus, logger *zap.Logger) *Session {
	cfg.fillDefaults()
	return &Session{
		cfg:      cfg,
		msgAPI:   msgAPI,
		db:       db,
		snapshot: snapshot,
		tokens:   tokens,
		notifier: notifier,
		bus:      b,
		logger:   logger,
	}
}

// roomPayload identifies the room in join/leave events.
type roomPayload struct {
	RideID         string `json:"rideId"`
	ConversationID string `json:"conversationId,omitempty"`
}

// Start joins the room, hydrates history over HTTP, and begins the fallback
// poll loop. History always comes from HTTP so a room opened in degraded
// mode is complete from the first render.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	if ch := s.snapshot().Channel; ch != nil {
		s.joinRoom(ch)
		s.offPush = s.attachPush(ch)
	}
	s.offBus = s.watchConnection(ctx)

	s.hydrate(ctx)
	go s.pollLoop(ctx)
}

// Stop leaves the room and cancels the poll loop and typing timer.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.stopTyping()
	if s.offPush != nil {
		s.offPush()
		s.offPush = nil
	}
	if s.offBus != nil {
		s.offBus()
		s.offBus = nil
	}
	if ch := s.snapshot().Channel; ch != nil && ch.Connected() {
		_ = ch.Emit("leaveConversationRoom", roomPayload{RideID: s.cfg.RideID, ConversationID: s.cfg.ConversationID})
	}
}

// Messages returns the room's persisted messages in arrival order.
func (s *Session) Messages() ([]store.Message, error) {
	return s.db.ListMessages(s.cfg.RideID)
}

func (s *Session) joinRoom(ch realtime.Channel) {
	if !ch.Connected() {
		return
	}
	if err := ch.Emit("joinConversationRoom", roomPayload{RideID: s.cfg.RideID, ConversationID: s.cfg.ConversationID}); err != nil {
		s.logger.Warn("join room failed", zap.Error(err))
	}
}

// watchConnection re-joins the room after a reconnect. The channel object is
// stable across reconnects, so the push handler stays attached; only the
// server-side room membership needs re-announcing.
func (s *Session) watchConnection(ctx context.Context) func() {
	events, cancel := s.bus.Subscribe("conn.connected", 4)
	go func() {
		for {
			select {
			case <-events:
				if ch := s.snapshot().Channel; ch != nil {
					s.joinRoom(ch)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return cancel
}

// hydrate replaces local knowledge of the room with the server history.
// Ingestion is deduplicated, so hydrating over an already-populated room
// only appends what is missing.
func (s *Session) hydrate(ctx context.Context) {
	msgs, err := s.msgAPI.FetchMessageHistory(ctx, s.cfg.RideID)
	if err != nil {
		s.logger.Warn("history fetch failed", zap.String("ride_id", s.cfg.RideID), zap.Error(err))
		return
	}
	for i := range msgs {
		s.ingest(&msgs[i], false)
	}
}

// pollLoop is the fallback delivery path. A tick is a no-op while the duplex
// channel is live; the loop does not need restarting when the connection
// manager degrades mid-session.
func (s *Session) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			snap := s.snapshot()
			if snap.Channel != nil && snap.Connected {
				continue
			}
			s.hydrate(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// ingest persists one server message. Returns whether it was new. The
// UNIQUE(ride_id, msg_id) constraint makes push and poll deliveries of the
// same message land exactly once.
func (s *Session) ingest(m *api.ChatMessage, announce bool) bool {
	if m.ID == "" {
		return false
	}
	rec := store.Message{
		RideID:         s.cfg.RideID,
		MsgID:          m.ID,
		ConversationID: m.ConversationID,
		Body:           m.Message,
		MessageType:    m.MessageType,
		SenderRole:     m.SenderRole,
		CreatedAt:      m.CreatedAt,
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixMilli()
	}
	inserted, err := s.db.IngestMessage(&rec)
	if err != nil {
		s.logger.Warn("message ingest failed", zap.String("msg_id", m.ID), zap.Error(err))
		return false
	}
	if !inserted {
		return false
	}

	s.bus.Publish("chat.message", rec)
	if announce && s.incoming(m) {
		if s.tokens.Token() != "" && s.notifier != nil {
			s.notifier.Notify("New message", m.Message)
		}
		s.acknowledge(m.ID)
	}
	return true
}

func (s *Session) incoming(m *api.ChatMessage) bool {
	return m.SenderRole != "" && m.SenderRole != s.cfg.Role
}

// readPayload is the opt-in read receipt event.
type readPayload struct {
	RideID     string   `json:"rideId"`
	MessageIDs []string `json:"messageIds"`
}

// acknowledge emits a read receipt for an incoming message when the session
// opted in and the channel is live. Best effort.
func (s *Session) acknowledge(msgID string) {
	if !s.cfg.ReadReceipts {
		return
	}
	ch := s.snapshot().Channel
	if ch == nil || !ch.Connected() {
		return
	}
	if err := ch.Emit("messageRead", readPayload{RideID: s.cfg.RideID, MessageIDs: []string{msgID}}); err != nil {
		s.logger.Debug("read receipt failed", zap.Error(err))
	}
}
