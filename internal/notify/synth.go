package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// RidesFetcher is the slice of the API client the synthesizer needs.
type RidesFetcher interface {
	FetchMyRides(ctx context.Context) ([]api.RideSummary, error)
}

// rideState is the per-ride slice of the persisted poll snapshot.
type rideState struct {
	Status   string `json:"status"`
	DriverID string `json:"driverId"`
}

// Synthesizer turns polled ride-state diffs into notifications while the
// duplex channel is degraded. Each observed transition yields at most one
// notification: the snapshot is persisted after every poll and synthesized
// ids are deterministic per transition.
type Synthesizer struct {
	svc      *Service
	rides    RidesFetcher
	logger   *zap.Logger
	interval time.Duration
	degraded func() bool
}

// NewSynthesizer creates a synthesizer. degraded reports whether the
// connection manager has given up on the duplex channel; polling only runs
// while it returns true.
func NewSynthesizer(svc *Service, rides RidesFetcher, degraded func() bool, interval time.Duration, logger *zap.Logger) *Synthesizer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Synthesizer{svc: svc, rides: rides, logger: logger, interval: interval, degraded: degraded}
}

// Start runs the poll loop until the context is cancelled. Ticks while the
// channel is healthy are skipped, so the loop can start before degradation
// and pick up the moment it happens.
func (y *Synthesizer) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(y.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !y.degraded() {
					continue
				}
				y.Poll(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Poll fetches the ride list once and synthesizes notifications for every
// transition since the previous snapshot.
func (y *Synthesizer) Poll(ctx context.Context) {
	rides, err := y.rides.FetchMyRides(ctx)
	if err != nil {
		y.logger.Debug("ride poll failed", zap.Error(err))
		return
	}

	prev, primed := y.loadSnapshot()
	next := make(map[string]rideState, len(rides))

	for _, r := range rides {
		if r.ID == "" {
			continue
		}
		next[r.ID] = rideState{Status: r.Status, DriverID: r.DriverID}

		// The first poll of a profile has no diff base yet. It records the
		// rides that already exist without announcing them.
		if !primed {
			continue
		}

		before, known := prev[r.ID]
		switch {
		case !known:
			y.add(store.Notification{
				ID:       "ride:" + r.ID + ":created",
				Title:    "Ride created",
				Body:     fmt.Sprintf("Your ride is %s.", orUnknown(r.Status)),
				Category: store.CategoryInformational,
			})
		case before.Status != r.Status:
			y.add(store.Notification{
				ID:       "ride:" + r.ID + ":status:" + r.Status,
				Title:    statusTitle(r.Status),
				Body:     fmt.Sprintf("Ride status changed to %s.", orUnknown(r.Status)),
				Category: store.CategoryUpdates,
			})
		}
		if known && before.DriverID == "" && r.DriverID != "" {
			y.add(store.Notification{
				ID:       "ride:" + r.ID + ":driver",
				Title:    "Driver assigned",
				Body:     "A driver accepted your ride.",
				Category: store.CategoryUpdates,
			})
		}
	}

	y.saveSnapshot(next)
}

func (y *Synthesizer) add(n store.Notification) {
	if _, err := y.svc.Add(n); err != nil {
		y.logger.Warn("synthesized notification failed", zap.Error(err))
	}
}

func (y *Synthesizer) snapshotKey() string {
	return "rides:" + y.svc.key
}

// loadSnapshot reads the previous poll snapshot and reports whether one
// existed at all. No row means the diff base was never primed; a corrupt row
// counts as primed but empty.
func (y *Synthesizer) loadSnapshot() (map[string]rideState, bool) {
	raw, ok, err := y.svc.db.GetKV(y.snapshotKey())
	if err != nil || !ok {
		return nil, false
	}
	var snap map[string]rideState
	if err := json.Unmarshal([]byte(raw), &snap); err != nil || snap == nil {
		return map[string]rideState{}, true
	}
	return snap, true
}

func (y *Synthesizer) saveSnapshot(snap map[string]rideState) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := y.svc.db.SetKV(y.snapshotKey(), string(data)); err != nil {
		y.logger.Warn("ride snapshot persist failed", zap.Error(err))
	}
}

func statusTitle(status string) string {
	switch status {
	case "accepted":
		return "Ride accepted"
	case "ongoing", "in_progress":
		return "Ride started"
	case "completed":
		return "Ride completed"
	case "cancelled":
		return "Ride cancelled"
	default:
		return "Ride update"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "pending"
	}
	return s
}
