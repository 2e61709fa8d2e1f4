package notify

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/realtime/realtimetest"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

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

func testService(t *testing.T, key string) *Service {
	t.Helper()
	return NewService(testDB(t), key, bus.New(), zap.NewNop())
}

func TestAddFillsDefaultsAndSorts(t *testing.T) {
	svc := testService(t, "u1")

	if _, err := svc.Add(store.Notification{Title: "older", Timestamp: 1000}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	added, err := svc.Add(store.Notification{Title: "newer", Category: "bogus"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" {
		t.Error("Add should assign an id")
	}
	if added.Timestamp == 0 {
		t.Error("Add should assign a timestamp")
	}
	if added.Category != store.CategoryInformational {
		t.Errorf("category = %s, want informational for unknown input", added.Category)
	}

	items, err := svc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Title != "newer" || items[1].Title != "older" {
		t.Errorf("order = [%s, %s], want newest first", items[0].Title, items[1].Title)
	}
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	svc := testService(t, "u1")

	a, _ := svc.Add(store.Notification{Title: "a"})
	svc.Add(store.Notification{Title: "b"})

	items, _ := svc.List()
	if got := UnreadCount(items); got != 2 {
		t.Fatalf("UnreadCount = %d, want 2", got)
	}

	if err := svc.MarkRead(a.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	items, _ = svc.List()
	if got := UnreadCount(items); got != 1 {
		t.Errorf("UnreadCount = %d, want 1", got)
	}

	if err := svc.MarkRead("no-such-id"); err != nil {
		t.Errorf("MarkRead unknown id: %v", err)
	}

	if err := svc.MarkAllRead(); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	items, _ = svc.List()
	if got := UnreadCount(items); got != 0 {
		t.Errorf("UnreadCount = %d after MarkAllRead, want 0", got)
	}
}

func TestClearAllIsolatedPerUser(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	alice := NewService(db, "alice", b, zap.NewNop())
	guest := NewService(db, "guest", b, zap.NewNop())

	alice.Add(store.Notification{Title: "for alice"})
	guest.Add(store.Notification{Title: "for guest"})

	if err := alice.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	items, _ := alice.List()
	if len(items) != 0 {
		t.Errorf("alice feed has %d items after clear, want 0", len(items))
	}
	items, _ = guest.List()
	if len(items) != 1 {
		t.Errorf("guest feed has %d items, want 1", len(items))
	}
}

func TestPushIngestIdempotent(t *testing.T) {
	svc := testService(t, "u1")
	ch := realtimetest.NewFakeChannel()
	off := svc.AttachPush(ch)
	defer off()

	payload := map[string]any{
		"_id":      "srv-1",
		"title":    "Driver arriving",
		"message":  "2 minutes away",
		"category": "urgent",
	}
	ch.Fire("notification", payload)
	ch.Fire("notification", payload)

	items, err := svc.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d after replayed push, want 1", len(items))
	}
	if items[0].ID != "srv-1" || items[0].Category != store.CategoryUrgent {
		t.Errorf("ingested = %+v", items[0])
	}
	if items[0].Body != "2 minutes away" {
		t.Errorf("body = %q, want message field", items[0].Body)
	}
}

func TestPushIngestPreservesReadOnReplay(t *testing.T) {
	svc := testService(t, "u1")
	ch := realtimetest.NewFakeChannel()
	off := svc.AttachPush(ch)
	defer off()

	ch.Fire("notification", map[string]any{"id": "n1", "title": "t"})
	if err := svc.MarkRead("n1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	ch.Fire("notification", map[string]any{"id": "n1", "title": "t2"})

	items, _ := svc.List()
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if !items[0].Read {
		t.Error("replayed push reset the read flag")
	}
	if items[0].Title != "t2" {
		t.Errorf("title = %q, want updated content", items[0].Title)
	}
}

func TestPushIngestDropsEmptyAndMalformed(t *testing.T) {
	svc := testService(t, "u1")
	ch := realtimetest.NewFakeChannel()
	off := svc.AttachPush(ch)
	defer off()

	ch.Fire("notification", map[string]any{"id": "n1"})
	ch.Fire("notification", "not an object")

	items, _ := svc.List()
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}
