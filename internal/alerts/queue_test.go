package alerts

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

type fakeSender struct {
	mu    sync.Mutex
	err   error
	calls []api.AlertPayload
}

func (f *fakeSender) SendEmergencyAlert(_ context.Context, p api.AlertPayload) (*api.AlertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	return &api.AlertResult{Recipients: []string{"ops"}}, nil
}

func (f *fakeSender) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestQueue(t *testing.T) (*Queue, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	q := NewQueue(testDB(t), sender, bus.New(), zap.NewNop(), 0)
	return q, sender
}

func TestSendDeliversImmediately(t *testing.T) {
	q, _ := newTestQueue(t)

	res, err := q.Send(context.Background(), api.AlertPayload{DriverID: "d1", Message: "help"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !res.Delivered || res.Queued {
		t.Errorf("result = %+v, want delivered", res)
	}
	pending, _ := q.Pending()
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d, want 0", len(pending))
	}
}

func TestSendQueuesOnFailure(t *testing.T) {
	q, sender := newTestQueue(t)
	sender.fail(errors.New("dial tcp: connection refused"))

	res, err := q.Send(context.Background(), api.AlertPayload{DriverID: "d1", Message: "help", IncludeLocation: true})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !res.Queued || res.Delivered {
		t.Errorf("result = %+v, want queued", res)
	}

	pending, err := q.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("len(pending) = %d, want 1", len(pending))
	}
	got := pending[0]
	if got.DriverID != "d1" || got.Message != "help" || !got.IncludeLocation {
		t.Errorf("queued entry = %+v", got)
	}
	if got.QueuedAt == 0 {
		t.Error("queued entry missing timestamp")
	}
}

func TestFlushDrainsInOrder(t *testing.T) {
	q, sender := newTestQueue(t)
	sender.fail(errors.New("offline"))

	q.Send(context.Background(), api.AlertPayload{DriverID: "d1", Message: "first"})
	q.Send(context.Background(), api.AlertPayload{DriverID: "d1", Message: "second"})
	firstCalls := sender.callCount()

	sender.fail(nil)
	q.Flush(context.Background())

	sender.mu.Lock()
	flushed := sender.calls[firstCalls:]
	sender.mu.Unlock()
	if len(flushed) != 2 {
		t.Fatalf("flushed %d alerts, want 2", len(flushed))
	}
	if flushed[0].Message != "first" || flushed[1].Message != "second" {
		t.Errorf("flush order = [%s, %s], want FIFO", flushed[0].Message, flushed[1].Message)
	}

	pending, _ := q.Pending()
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d after flush, want 0", len(pending))
	}
}

func TestFlushKeepsFailedEntries(t *testing.T) {
	q, sender := newTestQueue(t)
	sender.fail(errors.New("offline"))

	q.Send(context.Background(), api.AlertPayload{DriverID: "d1", Message: "stuck"})
	q.Flush(context.Background())

	pending, _ := q.Pending()
	if len(pending) != 1 {
		t.Fatalf("len(pending) = %d after failed flush, want 1", len(pending))
	}

	// Once the network is back, the same entry delivers exactly once.
	sender.fail(nil)
	q.Flush(context.Background())
	q.Flush(context.Background())

	pending, _ = q.Pending()
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d, want 0", len(pending))
	}
	deliveries := 0
	sender.mu.Lock()
	for _, c := range sender.calls {
		if c.Message == "stuck" {
			deliveries++
		}
	}
	sender.mu.Unlock()
	// Initial failed send, failed retry, successful retry.
	if deliveries != 3 {
		t.Errorf("attempts = %d, want 3", deliveries)
	}
}

func TestFlushEmptyQueueIsNoop(t *testing.T) {
	q, sender := newTestQueue(t)
	q.Flush(context.Background())
	if got := sender.callCount(); got != 0 {
		t.Errorf("sender calls = %d on empty queue, want 0", got)
	}
}
