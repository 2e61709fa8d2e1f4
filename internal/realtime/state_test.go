package realtime

import (
	"testing"
	"time"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
)

func recvBusEvent(t *testing.T, ch <-chan bus.Event) bus.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bus event")
		return bus.Event{}
	}
}

func TestMachineStartsDisconnected(t *testing.T) {
	m := NewMachine(nil)
	if got := m.Current(); got != Disconnected {
		t.Errorf("Current() = %s, want %s", got, Disconnected)
	}
}

func TestMachineValidTransitions(t *testing.T) {
	m := NewMachine(nil)

	steps := []State{Connecting, Connected, Disconnected, Connecting, Degraded}
	for _, to := range steps {
		if err := m.Transition(to); err != nil {
			t.Fatalf("Transition(%s) error: %v", to, err)
		}
	}
	if got := m.Current(); got != Degraded {
		t.Errorf("Current() = %s, want %s", got, Degraded)
	}
}

func TestMachineRejectsInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Connected); err == nil {
		t.Error("Transition(Connected) from Disconnected should fail")
	}
	if got := m.Current(); got != Disconnected {
		t.Errorf("state changed on rejected transition: %s", got)
	}
}

func TestMachineDegradedIsTerminal(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Degraded); err != nil {
		t.Fatalf("Transition(Degraded) error: %v", err)
	}
	for _, to := range []State{Disconnected, Connecting, Connected} {
		if err := m.Transition(to); err == nil {
			t.Errorf("Transition(%s) from Degraded should fail", to)
		}
	}
}

func TestMachinePublishesStateChanges(t *testing.T) {
	b := bus.New()
	ch, cancel := b.Subscribe("conn.", 8)
	defer cancel()

	m := NewMachine(b)
	if err := m.Transition(Connecting); err != nil {
		t.Fatalf("Transition(Connecting) error: %v", err)
	}

	ev := recvBusEvent(t, ch)
	if ev.Kind != "conn.state_changed" {
		t.Fatalf("event kind = %s, want conn.state_changed", ev.Kind)
	}
	change, ok := ev.Payload.(StateChange)
	if !ok {
		t.Fatalf("payload type = %T, want StateChange", ev.Payload)
	}
	if change.From != Disconnected || change.To != Connecting {
		t.Errorf("change = %+v, want Disconnected -> Connecting", change)
	}
}

func TestIsTransportError(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"websocket: bad handshake", true},
		{"dial tcp 1.2.3.4:443: i/o timeout", true},
		{"xhr poll error", true},
		{"read: connection reset by peer", true},
		{"authentication rejected", false},
		{"dial ws://host/ws: unauthorized (401)", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isTransportError(tc.msg); got != tc.want {
			t.Errorf("isTransportError(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}
