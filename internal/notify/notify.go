// Package notify maintains the per-user notification feed: push ingestion
// over the duplex channel, a polling synthesizer for degraded mode, and the
// read/clear operations the UI calls.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// Notifier delivers a local (on-device) notification. The bus-backed
// implementation lets the UI decide how to surface it.
type Notifier interface {
	Notify(title, body string)
}

// BusNotifier publishes local notifications on the event bus.
type BusNotifier struct {
	Bus *bus.Bus
}

// LocalNotification is the payload of a "notify.local" bus event.
type LocalNotification struct {
	Title string
	Body  string
}

func (n BusNotifier) Notify(title, body string) {
	n.Bus.Publish("notify.local", LocalNotification{Title: title, Body: body})
}

// Service owns the persisted notification feed for one user key.
type Service struct {
	db     *store.DB
	key    string
	bus    *bus.Bus
	logger *zap.Logger
}

// NewService creates a notification service for the given user key. The key
// is "guest" when nobody is signed in; each key has an isolated feed.
func NewService(db *store.DB, userKey string, b *bus.Bus, logger *zap.Logger) *Service {
	return &Service{db: db, key: userKey, bus: b, logger: logger}
}

// List returns the feed sorted newest first.
func (s *Service) List() ([]store.Notification, error) {
	return s.db.ListNotifications(s.key)
}

// Add persists a notification and announces it. Missing fields are filled:
// a fresh id, the current time, the informational category.
func (s *Service) Add(n store.Notification) (store.Notification, error) {
	n.UserKey = s.key
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Timestamp == 0 {
		n.Timestamp = time.Now().UnixMilli()
	}
	if !validCategory(n.Category) {
		n.Category = store.CategoryInformational
	}
	if err := s.db.UpsertNotification(&n); err != nil {
		return store.Notification{}, fmt.Errorf("persist notification: %w", err)
	}
	s.bus.Publish("notify.added", n)
	return n, nil
}

// MarkRead flags one notification as read. Unknown ids are a no-op.
func (s *Service) MarkRead(id string) error {
	if err := s.db.MarkNotificationRead(s.key, id); err != nil {
		return err
	}
	s.bus.Publish("notify.changed", nil)
	return nil
}

// MarkAllRead flags the whole feed as read.
func (s *Service) MarkAllRead() error {
	if err := s.db.MarkAllNotificationsRead(s.key); err != nil {
		return err
	}
	s.bus.Publish("notify.changed", nil)
	return nil
}

// ClearAll empties the feed.
func (s *Service) ClearAll() error {
	if err := s.db.ClearNotifications(s.key); err != nil {
		return err
	}
	s.bus.Publish("notify.changed", nil)
	return nil
}

// UnreadCount counts the unread entries of a listed feed.
func UnreadCount(items []store.Notification) int {
	n := 0
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n
}

func validCategory(c store.Category) bool {
	switch c {
	case store.CategoryUrgent, store.CategoryInformational, store.CategoryUpdates:
		return true
	}
	return false
}
