package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/alerts"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/app"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/chat"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/notify"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/realtime"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/session"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/tui"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	profile := session.Resolve(*profileFlag)
	if err := session.ValidateName(profile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var ui *tui.App
	runtime := fx.New(
		app.Module(app.Params{Profile: profile}),
		fx.Provide(func(id session.Identity, client *api.Client, notifySvc *notify.Service,
			chats *chat.Factory, queue *alerts.Queue, mgr *realtime.Manager, b *bus.Bus) *tui.App {
			return tui.NewApp(profile, id, client, notifySvc, chats, queue, mgr, b)
		}),
		fx.Populate(&ui),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := runtime.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	runErr := ui.Run()
	ui.Stop()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	if err := runtime.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}
