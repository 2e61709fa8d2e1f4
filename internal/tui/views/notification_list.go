package views

import (
	"time"

	"github.com/rivo/tview"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// NotificationList is the notification feed view, newest first.
type NotificationList struct {
	*tview.Table
	items      []store.Notification
	selectedFn func() (int, int)
}

// NewNotificationList creates the notification table.
func NewNotificationList() *NotificationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Notifications ")

	nl := &NotificationList{Table: table}
	nl.selectedFn = table.GetSelection
	return nl
}

// Update refreshes the feed with new data.
func (nl *NotificationList) Update(items []store.Notification) {
	nl.items = items
	nl.Clear()

	nl.SetCell(0, 0, tview.NewTableCell("  ").SetSelectable(false))
	nl.SetCell(0, 1, tview.NewTableCell(" Category").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	nl.SetCell(0, 2, tview.NewTableCell(" Title").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	nl.SetCell(0, 3, tview.NewTableCell(" Detail").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	nl.SetCell(0, 4, tview.NewTableCell(" Time").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	for i, n := range items {
		row := i + 1
		marker := "  "
		if !n.Read {
			marker = " *"
		}
		nl.SetCell(row, 0, tview.NewTableCell(marker))
		nl.SetCell(row, 1, tview.NewTableCell(" "+categoryTag(n.Category)).SetMaxWidth(16))
		nl.SetCell(row, 2, tview.NewTableCell(" "+n.Title).SetMaxWidth(28).SetExpansion(1))
		nl.SetCell(row, 3, tview.NewTableCell(" "+n.Body).SetMaxWidth(48).SetExpansion(2))
		nl.SetCell(row, 4, tview.NewTableCell(" "+formatTimestamp(n.Timestamp)).SetMaxWidth(12))
	}
}

// Selected returns the id of the currently selected notification.
func (nl *NotificationList) Selected() string {
	row, _ := nl.selectedFn()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(nl.items) {
		return nl.items[idx].ID
	}
	return ""
}

func categoryTag(c store.Category) string {
	switch c {
	case store.CategoryUrgent:
		return "[red]urgent[-]"
	case store.CategoryUpdates:
		return "[yellow]updates[-]"
	default:
		return "info"
	}
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}
