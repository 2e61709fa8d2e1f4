package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultProfile = "work"
	cfg.Realtime.DegradeThreshold = 5
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "work")
	}
	if loaded.Realtime.DegradeThreshold != 5 {
		t.Errorf("DegradeThreshold = %d, want 5", loaded.Realtime.DegradeThreshold)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Realtime.DegradeThreshold != 2 {
		t.Errorf("DegradeThreshold = %d, want 2", cfg.Realtime.DegradeThreshold)
	}
	if cfg.Chat.MaxMessageLen != 5000 {
		t.Errorf("MaxMessageLen = %d, want 5000", cfg.Chat.MaxMessageLen)
	}
}

func TestPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[server]\napi_url = \"http://127.0.0.1:3000\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.APIURL != "http://127.0.0.1:3000" {
		t.Errorf("APIURL = %q", cfg.Server.APIURL)
	}
	// Socket URL falls back to the API URL, not the built-in default.
	if cfg.Server.SocketURL != "http://127.0.0.1:3000" {
		t.Errorf("SocketURL = %q, want api_url fallback", cfg.Server.SocketURL)
	}
	if cfg.Chat.PollIntervalSecs != 3 {
		t.Errorf("Chat.PollIntervalSecs = %d, want 3", cfg.Chat.PollIntervalSecs)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
