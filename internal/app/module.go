// Package app composes the client runtime: config, logging, profile lock,
// store, API client, duplex connection manager, notification feed, and the
// offline alert queue, wired together with fx.
package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/alerts"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/bus"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/chat"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/config"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/lock"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/logging"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/notify"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/realtime"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/session"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/store"
)

// Params holds the resolved profile passed to the fx module.
type Params struct {
	Profile string
}

// Module returns the fx module composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideIdentity,
			provideTokenSource,
			provideAPIClient,
			provideChannel,
			provideManager,
			provideNotifier,
			provideNotifyService,
			provideSynthesizer,
			provideAlertQueue,
			provideChatFactory,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	return config.LoadOrDefault(session.ConfigPath())
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(session.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.DBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideIdentity(p Params) session.Identity {
	return session.LoadIdentity(p.Profile)
}

func provideTokenSource(p Params) session.TokenSource {
	return session.NewFileTokenSource(p.Profile)
}

func provideAPIClient(cfg *config.Config, tokens session.TokenSource, logger *zap.Logger) *api.Client {
	return api.NewClient(cfg.Server.APIURL, tokens, logger)
}

func provideChannel(cfg *config.Config, logger *zap.Logger) realtime.Channel {
	return realtime.NewWSChannel(cfg.Server.SocketURL, logger)
}

func provideManager(ch realtime.Channel, tokens session.TokenSource, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *realtime.Manager {
	return realtime.NewManager(ch, tokens, b, logger, realtime.Config{
		ReconnectInterval: cfg.Realtime.ReconnectInterval(),
		DegradeThreshold:  cfg.Realtime.DegradeThreshold,
	})
}

func provideNotifier(b *bus.Bus) notify.Notifier {
	return notify.BusNotifier{Bus: b}
}

func provideNotifyService(db *store.DB, id session.Identity, b *bus.Bus, logger *zap.Logger) *notify.Service {
	return notify.NewService(db, id.StoreKey(), b, logger)
}

func provideSynthesizer(svc *notify.Service, client *api.Client, mgr *realtime.Manager, cfg *config.Config, logger *zap.Logger) *notify.Synthesizer {
	degraded := func() bool { return mgr.State() == realtime.Degraded }
	return notify.NewSynthesizer(svc, client, degraded, cfg.Notifications.PollInterval(), logger)
}

func provideAlertQueue(db *store.DB, client *api.Client, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *alerts.Queue {
	return alerts.NewQueue(db, client, b, logger, cfg.Alerts.FlushInterval())
}

func provideChatFactory(cfg *config.Config, client *api.Client, db *store.DB, mgr *realtime.Manager,
	tokens session.TokenSource, notifier notify.Notifier, id session.Identity, b *bus.Bus, logger *zap.Logger) *chat.Factory {
	base := chat.Config{
		Role:          id.Role,
		PollInterval:  cfg.Chat.PollInterval(),
		TypingIdle:    cfg.Chat.TypingIdle(),
		MaxMessageLen: cfg.Chat.MaxMessageLen,
	}
	return chat.NewFactory(base, client, db, mgr.Snapshot, tokens, notifier, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, db *store.DB, mgr *realtime.Manager,
	notifySvc *notify.Service, synth *notify.Synthesizer, queue *alerts.Queue, logger *zap.Logger) {
	var offPush func()
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			mgr.Start(context.Background())

			// Push ingestion rides on the channel object, which is stable
			// across reconnects; attach once.
			if snap := mgr.Snapshot(); snap.Channel != nil {
				offPush = notifySvc.AttachPush(snap.Channel)
			}

			synth.Start(context.Background())
			queue.Start(context.Background())
			logger.Info("client runtime started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			queue.Stop()
			if offPush != nil {
				offPush()
			}
			mgr.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client runtime stopped")
			return nil
		},
	})
}
