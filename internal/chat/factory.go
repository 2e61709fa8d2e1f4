package chat

import (
	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/notify"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/realtime"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/session"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// Factory builds chat sessions sharing the process-wide collaborators.
// Room identity varies per session; everything else is fixed at startup.
type Factory struct {
	base     Config
	msgAPI   MessagingAPI
	db       *store.DB
	snapshot func() realtime.Snapshot
	tokens   session.TokenSource
	notifier notify.Notifier
	bus      *bus.Bus
	logger   *zap.Logger
}

// NewFactory creates a session factory. base carries the role and tunables;
// its room fields are ignored.
func NewFactory(base Config, msgAPI MessagingAPI, db *store.DB, snapshot func() realtime.Snapshot,
	tokens session.TokenSource, notifier notify.Notifier, b *bus.Bus, logger *zap.Logger) *Factory {
	return &Factory{
		base:     base,
		msgAPI:   msgAPI,
		db:       db,
		snapshot: snapshot,
		tokens:   tokens,
		notifier: notifier,
		bus:      b,
		logger:   logger,
	}
}

// Open creates a session for one ride room. The caller owns its lifecycle.
func (f *Factory) Open(rideID, conversationID string) *Session {
	cfg := f.base
	cfg.RideID = rideID
	cfg.ConversationID = conversationID
	return NewSession(cfg, f.msgAPI, f.db, f.snapshot, f.tokens, f.notifier, f.bus, f.logger)
}
