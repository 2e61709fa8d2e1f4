package realtime

import (
	"fmt"
	"slices"
	"sync"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
)

// State represents a connection manager state.
type State string

const (
	Disconnected State = "DISCONNECTED"
	Connecting   State = "CONNECTING"
	Connected    State = "CONNECTED"
	Degraded     State = "DEGRADED"
)

// validTransitions defines allowed state transitions. Degraded has no exits:
// once the transport is written off, it stays written off for the process
// lifetime and consumers run on polling.
var validTransitions = map[State][]State{
	Disconnected: {Connecting, Degraded},
	Connecting:   {Connected, Disconnected, Degraded},
	Connected:    {Disconnected, Degraded},
	Degraded:     {},
}

// Machine tracks and enforces connection state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Disconnected state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Disconnected,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is
// invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish("conn.state_changed", StateChange{From: from, To: to})
	}
	return nil
}

// StateChange is the payload for state change events.
type StateChange struct {
	From State
	To   State
}
