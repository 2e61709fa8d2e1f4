package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.eyy/config.toml.
type Config struct {
	DefaultProfile string `toml:"default_profile"`

	Server        Server        `toml:"server"`
	Realtime      Realtime      `toml:"realtime"`
	Chat          Chat          `toml:"chat"`
	Notifications Notifications `toml:"notifications"`
	Alerts        Alerts        `toml:"alerts"`
}

// Server holds backend endpoints.
type Server struct {
	APIURL    string `toml:"api_url"`
	SocketURL string `toml:"socket_url"`
}

// Realtime tunes the duplex connection manager.
type Realtime struct {
	ReconnectIntervalSecs int `toml:"reconnect_interval_secs"`
	DegradeThreshold      int `toml:"degrade_threshold"`
}

// Chat tunes the messaging channel.
type Chat struct {
	PollIntervalSecs int `toml:"poll_interval_secs"`
	TypingIdleMs     int `toml:"typing_idle_ms"`
	MaxMessageLen    int `toml:"max_message_len"`
}

// Notifications tunes the degraded-mode ride poller.
type Notifications struct {
	PollIntervalSecs int `toml:"poll_interval_secs"`
}

// Alerts tunes the offline alert queue.
type Alerts struct {
	FlushIntervalSecs int `toml:"flush_interval_secs"`
}

// Default returns the built-in configuration. The magic numbers match the
// shipped client: two transport failures before giving up on the duplex
// channel, 5000-char message bound, 10s reconnect, 5s/3s poll intervals,
// 15s alert flush, 1s typing idle window.
func Default() *Config {
	return &Config{
		DefaultProfile: "main",
		Server: Server{
			APIURL:    "https://eyyback.onrender.com",
			SocketURL: "https://eyyback.onrender.com",
		},
		Realtime: Realtime{
			ReconnectIntervalSecs: 10,
			DegradeThreshold:      2,
		},
		Chat: Chat{
			PollIntervalSecs: 3,
			TypingIdleMs:     1000,
			MaxMessageLen:    5000,
		},
		Notifications: Notifications{
			PollIntervalSecs: 5,
		},
		Alerts: Alerts{
			FlushIntervalSecs: 15,
		},
	}
}

// Load reads config from the given path. Returns an error if the file is
// missing or malformed.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault reads config from the given path, falling back to Default
// when the file does not exist. A malformed file is still an error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// applyDefaults fills zero-valued tunables so a partial config file still
// yields a working client.
func (c *Config) applyDefaults() {
	d := Default()
	if c.DefaultProfile == "" {
		c.DefaultProfile = d.DefaultProfile
	}
	if c.Server.APIURL == "" {
		c.Server.APIURL = d.Server.APIURL
	}
	if c.Server.SocketURL == "" {
		c.Server.SocketURL = c.Server.APIURL
	}
	if c.Realtime.ReconnectIntervalSecs <= 0 {
		c.Realtime.ReconnectIntervalSecs = d.Realtime.ReconnectIntervalSecs
	}
	if c.Realtime.DegradeThreshold <= 0 {
		c.Realtime.DegradeThreshold = d.Realtime.DegradeThreshold
	}
	if c.Chat.PollIntervalSecs <= 0 {
		c.Chat.PollIntervalSecs = d.Chat.PollIntervalSecs
	}
	if c.Chat.TypingIdleMs <= 0 {
		c.Chat.TypingIdleMs = d.Chat.TypingIdleMs
	}
	if c.Chat.MaxMessageLen <= 0 {
		c.Chat.MaxMessageLen = d.Chat.MaxMessageLen
	}
	if c.Notifications.PollIntervalSecs <= 0 {
		c.Notifications.PollIntervalSecs = d.Notifications.PollIntervalSecs
	}
	if c.Alerts.FlushIntervalSecs <= 0 {
		c.Alerts.FlushIntervalSecs = d.Alerts.FlushIntervalSecs
	}
}

// ReconnectInterval returns the reconnect ticker period.
func (r Realtime) ReconnectInterval() time.Duration {
	return time.Duration(r.ReconnectIntervalSecs) * time.Second
}

// PollInterval returns the chat history poll period.
func (c Chat) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSecs) * time.Second
}

// TypingIdle returns the typing-stop debounce window.
func (c Chat) TypingIdle() time.Duration {
	return time.Duration(c.TypingIdleMs) * time.Millisecond
}

// PollInterval returns the ride snapshot poll period.
func (n Notifications) PollInterval() time.Duration {
	return time.Duration(n.PollIntervalSecs) * time.Second
}

// FlushInterval returns the alert queue flush period.
func (a Alerts) FlushInterval() time.Duration {
	return time.Duration(a.FlushIntervalSecs) * time.Second
}
