// Package app wires configuration into the concrete stores, notifiers and
// evaluator shared by the signal commands.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	goredis "github.com/go-redis/redis/v8"

	"niftysignal/config"
	"niftysignal/internal/evaluator"
	"niftysignal/internal/marketdata/loader"
	"niftysignal/internal/metrics"
	"niftysignal/internal/model"
	"niftysignal/internal/notification"
	"niftysignal/internal/report"
	redisstore "niftysignal/internal/store/redis"
	sqlitestore "niftysignal/internal/store/sqlite"
)

// App holds the wired components. Redis and Telegram are nil when disabled.
type App struct {
	Config *config.Config
	Log    *slog.Logger

	SQLite   *sqlitestore.Store
	Redis    *redisstore.SignalStore
	Telegram *notification.TelegramNotifier

	Bars     model.BarReader
	Signals  model.SignalStore
	Notifier notification.Notifier
	Reporter *report.Reporter
}

// New opens the stores and builds the notifier chain.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{Config: cfg, Log: log}

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("app: create data dir: %w", err)
		}
	}
	var err error
	a.SQLite, err = sqlitestore.Open(sqlitestore.Config{
		DBPath:   cfg.SQLite.Path,
		BarLimit: cfg.Window(),
	})
	if err != nil {
		return nil, err
	}

	switch cfg.Source.Kind {
	case "csv":
		a.Bars = loader.NewCSVLoader(cfg.Source.CSVPath)
	default:
		a.Bars = a.SQLite
	}

	a.Signals = a.SQLite
	if cfg.Redis.Enabled {
		a.Redis, err = redisstore.New(redisstore.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Signals = a.Redis
	}

	notifiers := notification.Multi{notification.NewLogNotifier(log)}
	if cfg.Telegram.Enabled() {
		a.Telegram = notification.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		notifiers = append(notifiers, a.Telegram)
	} else if cfg.Telegram.BotToken != "" {
		// Bot commands still work without a broadcast chat.
		a.Telegram = notification.NewTelegramNotifier(cfg.Telegram.BotToken, "")
	}
	if cfg.Webhook.URL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.Webhook.URL))
	}
	a.Notifier = notifiers
	a.Reporter = report.NewReporter(a.Signals, a.Notifier, cfg.App.DisplayName, log)

	log.Info("[app] wired",
		slog.String("instrument", cfg.App.Instrument),
		slog.String("bars", cfg.Source.Kind),
		slog.Bool("redis", a.Redis != nil),
		slog.Bool("telegram", cfg.Telegram.Enabled()),
		slog.Bool("webhook", cfg.Webhook.URL != ""),
	)
	return a, nil
}

// RedisClient returns the Redis client, or nil when Redis is disabled.
func (a *App) RedisClient() *goredis.Client {
	if a.Redis == nil {
		return nil
	}
	return a.Redis.Client()
}

// Evaluator builds the evaluation service. m and health may be nil.
func (a *App) Evaluator(pub model.VerdictPublisher, m *metrics.Metrics, health *metrics.HealthStatus) (*evaluator.Service, error) {
	return evaluator.New(evaluator.Config{
		Instrument: a.Config.App.Instrument,
		Params:     a.Config.Params(),
		Bars:       a.Bars,
		Reporter:   a.Reporter,
		Publisher:  pub,
		Metrics:    m,
		Health:     health,
		Log:        a.Log,
		Window:     a.Config.Window(),
		Delay:      a.Config.Schedule.Delay,
		RunOnStart: a.Config.Schedule.RunOnStart,
	})
}

// Close releases the stores.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.SQLite != nil {
		errs = append(errs, a.SQLite.Close())
	}
	return errors.Join(errs...)
}
