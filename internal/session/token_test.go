package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileTokenSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	src := &FileTokenSource{Path: path}

	// Absent file is not an error: empty token.
	if got := src.Token(); got != "" {
		t.Errorf("Token() = %q, want empty for missing file", got)
	}

	if err := os.WriteFile(path, []byte("bearer-abc\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := src.Token(); got != "bearer-abc" {
		t.Errorf("Token() = %q, want bearer-abc", got)
	}

	// Token written after first read is picked up (no caching).
	if err := os.WriteFile(path, []byte("bearer-new"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := src.Token(); got != "bearer-new" {
		t.Errorf("Token() = %q, want bearer-new", got)
	}
}

func TestSaveAndClearToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SaveToken("main", "bearer-abc"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	src := NewFileTokenSource("main")
	if got := src.Token(); got != "bearer-abc" {
		t.Errorf("Token() = %q, want bearer-abc", got)
	}

	info, err := os.Stat(TokenPath("main"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file permission = %o, want 0600", perm)
	}

	if err := ClearToken("main"); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if got := src.Token(); got != "" {
		t.Errorf("Token() = %q after clear, want empty", got)
	}
	// Clearing again is a no-op.
	if err := ClearToken("main"); err != nil {
		t.Errorf("second ClearToken: %v", err)
	}
}

func TestIdentityStoreKey(t *testing.T) {
	if got := (Identity{UserID: "u1"}).StoreKey(); got != "u1" {
		t.Errorf("StoreKey() = %q, want u1", got)
	}
	if got := Guest.StoreKey(); got != "guest" {
		t.Errorf("guest StoreKey() = %q, want guest", got)
	}
}
