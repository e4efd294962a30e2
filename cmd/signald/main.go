// cmd/signald runs the signal service: a daily evaluation after the NSE
// close, the HTTP API with the Telegram webhook and verdict stream, and
// the metrics server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"niftysignal/config"
	"niftysignal/internal/api"
	"niftysignal/internal/app"
	"niftysignal/internal/gateway"
	"niftysignal/internal/logger"
	"niftysignal/internal/metrics"
	"niftysignal/internal/model"
	redisstore "niftysignal/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("[signald] fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		return err
	}
	log := logger.Init(cfg.App.Name, level)
	log.Info("[signald] starting...")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// ---- Metrics + health ----
	prom := metrics.NewMetrics(nil)
	health := metrics.NewHealthStatus()
	health.SetRedisEnabled(a.Redis != nil)
	health.StartLivenessChecker(ctx, a.RedisClient(), a.SQLite.DB(), 15*time.Second)
	metricsSrv := metrics.NewServer(cfg.App.MetricsAddr, health, nil, log)
	metricsSrv.Start()
	a.Reporter.OnNotifyFailure(prom.NotifyFailures.Inc)

	// ---- Verdict stream ----
	hub := gateway.NewHub(64, log)
	hub.OnClientCount(func(n int) { prom.StreamClients.Set(float64(n)) })

	// With Redis, verdicts go through PubSub so evaluations from other
	// processes (cmd/signal) reach the same clients.
	var pub model.VerdictPublisher = hub
	if rdb := a.RedisClient(); rdb != nil {
		pub = redisstore.NewPublisher(rdb)
		go gateway.NewPubSubRouter(hub, rdb, redisstore.Channel(cfg.App.Instrument)).Run(ctx)
	}

	svc, err := a.Evaluator(pub, prom, health)
	if err != nil {
		return err
	}

	// ---- HTTP API ----
	deps := api.Deps{
		Evaluator:     svc,
		Stream:        http.HandlerFunc(hub.ServeWS),
		DisplayName:   cfg.App.DisplayName,
		WebhookSecret: cfg.Telegram.WebhookSecret,
		Log:           log,
	}
	if a.Telegram != nil {
		deps.Replier = a.Telegram
	}
	httpSrv := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("[signald] api listening", slog.String("addr", cfg.App.HTTPAddr))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("[signald] api server error", slog.Any("error", err))
			cancel()
		}
	}()

	// ---- Scheduler (blocks) ----
	svc.Run(ctx)

	log.Info("[signald] shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	hub.Close()
	httpSrv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	log.Info("[signald] stopped")
	return nil
}
