// Package tui is the terminal client: ride list, per-ride chat room, and
// the notification feed, with the connection state pinned to a status bar.
package tui

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/alerts"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/chat"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/notify"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/realtime"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/session"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/tui/views"
)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	statusBar *views.StatusBar
	rideList  *views.RideList
	notifList *views.NotificationList
	thread    *views.MessageThread
	composer  *views.Composer

	profile  string
	identity session.Identity
	client   *api.Client
	notify   *notify.Service
	chats    *chat.Factory
	queue    *alerts.Queue
	mgr      *realtime.Manager
	bus      *bus.Bus

	active     *chat.Session
	activeRide string
	offTyping  []func()

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(profile string, id session.Identity, client *api.Client, notifySvc *notify.Service,
	chats *chat.Factory, queue *alerts.Queue, mgr *realtime.Manager, b *bus.Bus) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		statusBar: views.NewStatusBar(),
		rideList:  views.NewRideList(),
		notifList: views.NewNotificationList(),
		thread:    views.NewMessageThread(id.Role),
		composer:  views.NewComposer(),
		profile:   profile,
		identity:  id,
		client:    client,
		notify:    notifySvc,
		chats:     chats,
		queue:     queue,
		mgr:       mgr,
		bus:       b,
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetProfile(profile)
	a.statusBar.SetState(string(mgr.State()))
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupCallbacks() {
	a.rideList.SetSelectedFunc(func(row, col int) {
		if rideID := a.rideList.Selected(); rideID != "" {
			a.openChat(rideID)
		}
	})

	a.notifList.SetSelectedFunc(func(row, col int) {
		if id := a.notifList.Selected(); id != "" {
			_ = a.notify.MarkRead(id)
			a.refreshNotifications()
		}
	})

	a.composer.SetOnTyping(func() {
		if a.active != nil {
			a.active.Typing()
		}
	})

	a.composer.SetOnSend(func(text string) {
		a.sendMessage(text)
	})
}

func (a *App) setupLayout() {
	chatFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.thread, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	a.pages.AddPage("rides", a.rideList, true, true)
	a.pages.AddPage("chat", chatFlex, true, false)
	a.pages.AddPage("notifications", a.notifList, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	currentPage, _ := a.pages.GetFrontPage()

	if event.Key() == tcell.KeyEscape {
		switch currentPage {
		case "chat":
			a.closeChat()
			a.showRides()
			return nil
		case "notifications":
			a.showRides()
			return nil
		}
	}

	// Let text input widgets handle all keys normally.
	focused := a.app.GetFocus()
	if _, ok := focused.(*tview.InputField); ok {
		return event
	}

	if event.Key() != tcell.KeyRune {
		return event
	}

	switch event.Rune() {
	case 'q':
		a.app.Stop()
		return nil
	case 'n':
		a.refreshNotifications()
		a.pages.SwitchToPage("notifications")
		a.app.SetFocus(a.notifList)
		return nil
	case 'e':
		a.confirmAlert()
		return nil
	}

	switch currentPage {
	case "notifications":
		switch event.Rune() {
		case 'a':
			_ = a.notify.MarkAllRead()
			a.refreshNotifications()
			return nil
		case 'c':
			_ = a.notify.ClearAll()
			a.refreshNotifications()
			return nil
		}
	case "chat":
		switch event.Rune() {
		case 'i':
			a.app.SetFocus(a.composer.InputField)
			return nil
		case '1', '2', '3':
			replies := chat.QuickReplies(a.identity.Role)
			idx := int(event.Rune() - '1')
			if idx < len(replies) {
				a.sendMessage(replies[idx])
			}
			return nil
		}
	}

	return event
}

func (a *App) showRides() {
	a.pages.SwitchToPage("rides")
	a.app.SetFocus(a.rideList)
}

func (a *App) openChat(rideID string) {
	a.closeChat()

	a.active = a.chats.Open(rideID, "")
	a.activeRide = rideID
	a.active.Start(a.ctx)
	a.attachTyping(rideID)

	a.thread.SetRide(rideID)
	a.refreshThread()
	a.pages.SwitchToPage("chat")
	a.app.SetFocus(a.composer.InputField)
}

func (a *App) closeChat() {
	if a.active == nil {
		return
	}
	a.active.Stop()
	a.active = nil
	a.activeRide = ""
	for _, off := range a.offTyping {
		off()
	}
	a.offTyping = nil
	a.thread.SetTyping(false)
}

// attachTyping mirrors the counterpart's typing indicator into the thread.
func (a *App) attachTyping(rideID string) {
	ch := a.mgr.Snapshot().Channel
	if ch == nil {
		return
	}
	match := func(payload json.RawMessage) bool {
		var p struct {
			RideID string `json:"rideId"`
			Role   string `json:"role"`
		}
		if json.Unmarshal(payload, &p) != nil {
			return false
		}
		return p.RideID == rideID && p.Role != a.identity.Role
	}
	a.offTyping = append(a.offTyping,
		ch.On("typingStart", func(p json.RawMessage) {
			if match(p) {
				a.app.QueueUpdateDraw(func() { a.thread.SetTyping(true) })
			}
		}),
		ch.On("typingStop", func(p json.RawMessage) {
			if match(p) {
				a.app.QueueUpdateDraw(func() { a.thread.SetTyping(false) })
			}
		}),
	)
}

func (a *App) sendMessage(text string) {
	active := a.active
	if active == nil {
		return
	}
	go func() {
		if _, err := active.Send(a.ctx, text); err != nil {
			a.flash("Send failed: " + err.Error())
		}
		a.app.QueueUpdateDraw(a.refreshThread)
	}()
}

// confirmAlert shows the emergency alert confirmation. Sending never hard
// fails from the user's point of view: an offline send is queued.
func (a *App) confirmAlert() {
	modal := tview.NewModal().
		SetText("Send an emergency alert to your contacts?").
		AddButtons([]string{"Send", "Cancel"})
	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		a.pages.RemovePage("alert")
		if buttonLabel != "Send" {
			return
		}
		go func() {
			payload := api.AlertPayload{
				DriverID:        a.identity.UserID,
				Message:         "Emergency: I need assistance.",
				IncludeLocation: true,
			}
			res, err := a.queue.Send(a.ctx, payload)
			switch {
			case err != nil:
				a.flash("Alert failed: " + err.Error())
			case res.Queued:
				a.flash("Offline: alert queued for retry")
			default:
				a.flash("Emergency alert sent")
			}
			a.app.QueueUpdateDraw(a.refreshStatus)
		}()
	})
	a.pages.AddPage("alert", modal, true, true)
	a.app.SetFocus(modal)
}

func (a *App) flash(msg string) {
	a.app.QueueUpdateDraw(func() { a.statusBar.SetFlash(msg) })
}

func (a *App) refreshThread() {
	if a.active == nil {
		return
	}
	msgs, err := a.active.Messages()
	if err != nil {
		return
	}
	a.thread.Update(msgs)
}

func (a *App) refreshNotifications() {
	items, err := a.notify.List()
	if err != nil {
		return
	}
	a.notifList.Update(items)
	a.statusBar.SetUnread(notify.UnreadCount(items))
}

func (a *App) refreshRides() {
	go func() {
		rides, err := a.client.FetchMyRides(a.ctx)
		if err != nil {
			return
		}
		a.app.QueueUpdateDraw(func() { a.rideList.Update(rides) })
	}()
}

func (a *App) refreshStatus() {
	a.statusBar.SetState(string(a.mgr.State()))
	if items, err := a.notify.List(); err == nil {
		a.statusBar.SetUnread(notify.UnreadCount(items))
	}
	if pending, err := a.queue.Pending(); err == nil {
		a.statusBar.SetQueuedAlerts(len(pending))
	}
}

// watchBus repaints on domain events so pushes show up without a manual
// refresh.
func (a *App) watchBus() {
	events, cancel := a.bus.Subscribe("", 64)
	go func() {
		defer cancel()
		for {
			select {
			case ev := <-events:
				kind := ev.Kind
				a.app.QueueUpdateDraw(func() {
					switch {
					case kind == "chat.message" || kind == "chat.sent":
						a.refreshThread()
					case kind == "notify.added" || kind == "notify.changed":
						a.refreshNotifications()
					}
					a.refreshStatus()
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// Run starts the TUI application.
func (a *App) Run() error {
	a.refreshRides()
	a.refreshNotifications()
	a.refreshStatus()
	a.watchBus()
	a.startRefreshLoop()

	return a.app.Run()
}

func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		for {
			select {
			case <-ticker.C:
				a.refreshRides()
				a.app.QueueUpdateDraw(a.refreshStatus)
			case <-a.ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.closeChat()
	a.app.Stop()
}
