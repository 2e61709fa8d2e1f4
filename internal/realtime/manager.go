package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/session"
	"go.uber.org/zap"
)

// Config tunes the connection manager.
type Config struct {
	// ReconnectInterval is the period of the reconnect ticker.
	ReconnectInterval time.Duration
	// DegradeThreshold is the number of transport-level connect failures
	// after which the duplex channel is abandoned for the process lifetime.
	DegradeThreshold int
}

// Snapshot is the manager's published state. Channel is nil once the manager
// is Degraded; consumers must handle that at any time and fall back to
// polling without a restart.
type Snapshot struct {
	Channel           Channel
	Connected         bool
	State             State
	LastError         string
	TransportFailures int
}

// Manager owns the process-wide duplex channel: authentication gating,
// reconnection, and the one-way degradation to polling after repeated
// transport failures. Consumers never call Connect/Disconnect themselves.
type Manager struct {
	ch      Channel
	machine *Machine
	tokens  session.TokenSource
	bus     *bus.Bus
	logger  *zap.Logger
	cfg     Config

	mu        sync.Mutex
	failures  int
	lastError string

	cancel      context.CancelFunc
	degraded    chan struct{}
	degradeOnce sync.Once
	offs        []func()
}

// NewManager creates a connection manager around the given channel.
func NewManager(ch Channel, tokens session.TokenSource, b *bus.Bus, logger *zap.Logger, cfg Config) *Manager {
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = 10 * time.Second
	}
	if cfg.DegradeThreshold <= 0 {
		cfg.DegradeThreshold = 2
	}
	return &Manager{
		ch:       ch,
		machine:  NewMachine(b),
		tokens:   tokens,
		bus:      b,
		logger:   logger,
		cfg:      cfg,
		degraded: make(chan struct{}),
	}
}

// Start attaches lifecycle handlers, attempts an initial connect, and runs
// the reconnect ticker until Stop, context cancellation, or degradation.
func (m *Manager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	m.offs = append(m.offs,
		m.ch.On(EventConnect, func(json.RawMessage) { m.handleConnect() }),
		m.ch.On(EventDisconnect, func(p json.RawMessage) { m.handleDisconnect(decodeReason(p)) }),
		m.ch.On(EventConnectError, func(p json.RawMessage) { m.handleConnectError(decodeReason(p)) }),
	)

	m.tryConnect(ctx)
	go m.loop(ctx)
}

// Stop tears the manager down: the reconnect ticker is cancelled, handlers
// are detached, and the channel is disconnected.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	for _, off := range m.offs {
		off()
	}
	m.offs = nil
	if m.ch.Connected() {
		m.ch.Disconnect()
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	return m.machine.Current()
}

// Snapshot returns the published state for consumers.
func (m *Manager) Snapshot() Snapshot {
	st := m.machine.Current()
	m.mu.Lock()
	lastError := m.lastError
	failures := m.failures
	m.mu.Unlock()

	snap := Snapshot{
		State:             st,
		Connected:         st == Connected,
		LastError:         lastError,
		TransportFailures: failures,
	}
	if st != Degraded {
		snap.Channel = m.ch
	}
	return snap
}

// loop is the single reconnect ticker per manager lifetime. It exits on
// teardown and on degradation, never to be re-armed.
func (m *Manager) loop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.ReconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.tryConnect(ctx)
		case <-m.degraded:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tryConnect attempts a connect when a token is present and the channel is
// not already connected. Absence of a token is idle, not an error.
func (m *Manager) tryConnect(ctx context.Context) {
	if m.machine.Current() == Degraded {
		return
	}
	token := m.tokens.Token()
	if token == "" {
		return
	}
	if m.ch.Connected() {
		return
	}

	_ = m.machine.Transition(Connecting)
	if err := m.ch.Connect(ctx, token); err != nil {
		m.logger.Warn("channel connect failed", zap.Error(err))
		m.handleConnectError(err.Error())
	}
}

func (m *Manager) handleConnect() {
	m.mu.Lock()
	m.failures = 0
	m.lastError = ""
	m.mu.Unlock()

	if m.machine.Current() == Disconnected {
		_ = m.machine.Transition(Connecting)
	}
	_ = m.machine.Transition(Connected)
	m.logger.Info("channel connected")
	m.bus.Publish("conn.connected", nil)
}

func (m *Manager) handleDisconnect(reason string) {
	if m.machine.Current() == Degraded {
		return
	}
	m.logger.Warn("channel disconnected", zap.String("reason", reason))
	if m.machine.Current() != Disconnected {
		_ = m.machine.Transition(Disconnected)
	}
	m.bus.Publish("conn.disconnected", reason)
}

func (m *Manager) handleConnectError(msg string) {
	transport := isTransportError(msg)

	m.mu.Lock()
	m.lastError = msg
	if transport {
		m.failures++
	}
	failures := m.failures
	m.mu.Unlock()

	m.bus.Publish("conn.error", msg)

	if transport && failures >= m.cfg.DegradeThreshold {
		m.degrade(msg)
		return
	}
	if m.machine.Current() == Connecting {
		_ = m.machine.Transition(Disconnected)
	}
}

// degrade is the irreversible exit from realtime delivery. Repeated
// transport failures usually mean the environment cannot carry the upgrade
// (a proxy that won't speak websocket), so retrying the same transport only
// delays the fallback that works.
func (m *Manager) degrade(reason string) {
	m.degradeOnce.Do(func() {
		m.logger.Warn("degrading to polling mode", zap.String("reason", reason), zap.Int("transport_failures", m.failures))
		_ = m.machine.Transition(Degraded)
		m.ch.Disconnect()
		close(m.degraded)
		m.bus.Publish("conn.degraded", reason)
	})
}

// transportErrorPatterns match failures of the transport itself, as opposed
// to application-level rejections (bad token, server-side refusal) which are
// worth retrying on the same transport.
var transportErrorPatterns = []string{
	"bad handshake",
	"websocket error",
	"xhr poll error",
	"polling error",
	"dial tcp",
	"connection refused",
	"connection reset",
	"i/o timeout",
	"unexpected eof",
}

func isTransportError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range transportErrorPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func decodeReason(p json.RawMessage) string {
	var s string
	if len(p) > 0 && json.Unmarshal(p, &s) == nil {
		return s
	}
	return ""
}
