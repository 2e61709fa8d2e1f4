package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// StatusBar displays persistent profile and connection status.
type StatusBar struct {
	*tview.TextView
	profile string
	state   string
	unread  int
	queued  int
	flash   string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetState updates the connection state display.
func (sb *StatusBar) SetState(state string) {
	sb.state = state
	sb.render()
}

// SetUnread updates the unread notification counter.
func (sb *StatusBar) SetUnread(n int) {
	sb.unread = n
	sb.render()
}

// SetQueuedAlerts updates the pending alert counter.
func (sb *StatusBar) SetQueuedAlerts(n int) {
	sb.queued = n
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	state := sb.state
	switch state {
	case "CONNECTED":
		state = "[green]" + state + "[-]"
	case "DEGRADED":
		state = "[orange]" + state + " (polling)[-]"
	case "CONNECTING":
		state = "[yellow]" + state + "[-]"
	default:
		state = "[red]" + state + "[-]"
	}

	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | unread:%d | %s", sb.profile, state, sb.unread, clock)
	if sb.queued > 0 {
		line += fmt.Sprintf(" | [orange]alerts queued:%d[-]", sb.queued)
	}
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", sb.flash)
	}

	_, _ = fmt.Fprint(sb, line)
}
