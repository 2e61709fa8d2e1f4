package views

import (
	"github.com/rivo/tview"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
)

// RideList shows the user's rides; selecting one opens its chat room.
type RideList struct {
	*tview.Table
	rides      []api.RideSummary
	selectedFn func() (int, int)
}

// NewRideList creates the ride table.
func NewRideList() *RideList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Rides ")

	rl := &RideList{Table: table}
	rl.selectedFn = table.GetSelection
	return rl
}

// Update refreshes the ride list with new data.
func (rl *RideList) Update(rides []api.RideSummary) {
	rl.rides = rides
	rl.Clear()

	rl.SetCell(0, 0, tview.NewTableCell(" Ride").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	rl.SetCell(0, 1, tview.NewTableCell(" Status").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	rl.SetCell(0, 2, tview.NewTableCell(" Driver").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	for i, r := range rides {
		row := i + 1
		driver := r.DriverID
		if driver == "" {
			driver = "-"
		}
		rl.SetCell(row, 0, tview.NewTableCell(" "+r.ID).SetMaxWidth(28).SetExpansion(1))
		rl.SetCell(row, 1, tview.NewTableCell(" "+r.Status).SetMaxWidth(16))
		rl.SetCell(row, 2, tview.NewTableCell(" "+driver).SetMaxWidth(28).SetExpansion(1))
	}
}

// Selected returns the id of the currently selected ride.
func (rl *RideList) Selected() string {
	row, _ := rl.selectedFn()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(rl.rides) {
		return rl.rides[idx].ID
	}
	return ""
}
