// Package alerts sends emergency alerts with a persisted offline queue:
// a failed send is deferred, never dropped, and a periodic flush retries
// queued alerts in order.
package alerts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// AlertSender is the slice of the API client the queue needs.
type AlertSender interface {
	SendEmergencyAlert(ctx context.Context, payload api.AlertPayload) (*api.AlertResult, error)
}

// Result reports how a Send concluded.
type Result struct {
	// Delivered is true when the server accepted the alert immediately.
	Delivered bool
	// Queued is true when the alert was deferred to the offline queue.
	Queued     bool
	Recipients []string
}

// Queue is the emergency alert pipeline. Send attempts immediate delivery
// and falls back to the persisted queue; Start runs the periodic flush.
type Queue struct {
	db     *store.DB
	sender AlertSender
	bus    *bus.Bus
	logger *zap.Logger

	interval time.Duration
	flushMu  sync.Mutex
	cancel   context.CancelFunc
}

// NewQueue creates an alert queue flushing at the given interval.
func NewQueue(db *store.DB, sender AlertSender, b *bus.Bus, logger *zap.Logger, interval time.Duration) *Queue {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Queue{db: db, sender: sender, bus: b, logger: logger, interval: interval}
}

// Send attempts to deliver an alert now. On failure the alert is persisted
// for the flush loop and the caller gets a Queued result, not an error:
// a deferred alert is a handled alert.
func (q *Queue) Send(ctx context.Context, payload api.AlertPayload) (Result, error) {
	res, err := q.sender.SendEmergencyAlert(ctx, payload)
	if err == nil {
		q.bus.Publish("alert.sent", payload)
		return Result{Delivered: true, Recipients: res.Recipients}, nil
	}

	q.logger.Warn("alert send failed, queueing", zap.Error(err))
	entry := store.QueuedAlert{
		DriverID:        payload.DriverID,
		Message:         payload.Message,
		IncludeLocation: payload.IncludeLocation,
		QueuedAt:        time.Now().UnixMilli(),
	}
	if qerr := q.db.EnqueueAlert(&entry); qerr != nil {
		// Queueing failed too; now the caller has to know.
		return Result{}, qerr
	}
	q.bus.Publish("alert.queued", entry)
	return Result{Queued: true}, nil
}

// Flush retries queued alerts in FIFO order. A delivered alert leaves the
// queue; a failed one stays for the next cycle. Concurrent flushes are
// serialized so a retry cannot deliver the same entry twice.
func (q *Queue) Flush(ctx context.Context) {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	pending, err := q.db.PendingAlerts()
	if err != nil {
		q.logger.Warn("alert queue read failed", zap.Error(err))
		return
	}
	for _, entry := range pending {
		payload := api.AlertPayload{
			DriverID:        entry.DriverID,
			Message:         entry.Message,
			IncludeLocation: entry.IncludeLocation,
		}
		if _, err := q.sender.SendEmergencyAlert(ctx, payload); err != nil {
			q.logger.Debug("queued alert retry failed", zap.Int64("id", entry.ID), zap.Error(err))
			continue
		}
		if err := q.db.DeleteAlert(entry.ID); err != nil {
			q.logger.Warn("alert dequeue failed", zap.Int64("id", entry.ID), zap.Error(err))
			continue
		}
		q.bus.Publish("alert.flushed", entry)
	}
}

// Pending returns the queued alerts in FIFO order.
func (q *Queue) Pending() ([]store.QueuedAlert, error) {
	return q.db.PendingAlerts()
}

// Start runs the periodic flush until Stop or context cancellation.
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(q.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				q.Flush(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the flush loop.
func (q *Queue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
}
