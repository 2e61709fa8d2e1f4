package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// MessageThread renders one ride room's messages in arrival order.
type MessageThread struct {
	*tview.TextView
	ownRole string
	typing  bool
	msgs    []store.Message
}

// NewMessageThread creates the message view.
func NewMessageThread(ownRole string) *MessageThread {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Chat ")

	return &MessageThread{TextView: tv, ownRole: ownRole}
}

// SetRide updates the view title.
func (mt *MessageThread) SetRide(rideID string) {
	mt.SetTitle(fmt.Sprintf(" Chat - %s ", rideID))
}

// Update replaces the rendered messages.
func (mt *MessageThread) Update(msgs []store.Message) {
	mt.msgs = msgs
	mt.render()
}

// SetTyping toggles the counterpart typing indicator.
func (mt *MessageThread) SetTyping(typing bool) {
	mt.typing = typing
	mt.render()
}

func (mt *MessageThread) render() {
	mt.Clear()
	for _, m := range mt.msgs {
		if m.MessageType == "system" {
			fmt.Fprintf(mt, "[gray]-- %s --[-]\n", m.Body)
			continue
		}
		role := m.SenderRole
		color := "aqua"
		if role == mt.ownRole {
			color = "green"
			role = "you"
		}
		fmt.Fprintf(mt, "[%s]%s[-] %s  [gray]%s[-]\n", color, role, m.Body, formatTimestamp(m.CreatedAt))
	}
	if mt.typing {
		fmt.Fprint(mt, "[gray]typing...[-]\n")
	}
	mt.ScrollToEnd()
}
