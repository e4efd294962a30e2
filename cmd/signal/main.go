// cmd/signal evaluates the signal once and prints the verdict.
//
// Usage:
//
//	go run ./cmd/signal --csv=data/nifty.csv
//	go run ./cmd/signal --import=data/nifty.csv     # load into SQLite, then evaluate
//	go run ./cmd/signal --report --json
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"niftysignal/config"
	"niftysignal/internal/app"
	"niftysignal/internal/logger"
	"niftysignal/internal/marketdata/loader"
	"niftysignal/internal/model"
	"niftysignal/internal/report"
	redisstore "niftysignal/internal/store/redis"
	"niftysignal/internal/strategy"
)

func main() {
	csvPath := flag.String("csv", "", "Read bars from this CSV instead of SQLite")
	dbPath := flag.String("db", "", "SQLite database (default SQLITE_PATH)")
	importPath := flag.String("import", "", "Import bars from this CSV into SQLite before evaluating")
	doReport := flag.Bool("report", false, "Notify and persist the signal if it changed")
	asJSON := flag.Bool("json", false, "Print the verdict as JSON")
	flag.Parse()

	if err := run(*csvPath, *dbPath, *importPath, *doReport, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(csvPath, dbPath, importPath string, doReport, asJSON bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		return err
	}
	// Logs go to stderr; stdout carries the verdict.
	log := logger.InitWriter(os.Stderr, "signal", level)

	if csvPath != "" {
		cfg.Source.Kind = "csv"
		cfg.Source.CSVPath = csvPath
	}
	if dbPath != "" {
		cfg.SQLite.Path = dbPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if importPath != "" {
		bars, err := loader.NewCSVLoader(importPath).ReadBars(ctx, cfg.App.Instrument)
		if err != nil {
			return err
		}
		if err := a.SQLite.WriteBars(ctx, cfg.App.Instrument, bars); err != nil {
			return err
		}
		log.Info("[signal] imported bars", slog.Int("bars", len(bars)), slog.String("from", importPath))
	}

	var v model.Verdict
	if doReport {
		var pub model.VerdictPublisher
		if rdb := a.RedisClient(); rdb != nil {
			pub = redisstore.NewPublisher(rdb)
		}
		svc, err := a.Evaluator(pub, nil, nil)
		if err != nil {
			return err
		}
		v, err = svc.Evaluate(ctx)
		if err != nil && v.Instrument == "" {
			return err
		}
		if err != nil {
			log.Warn("[signal] reporting failed", slog.Any("error", err))
		}
	} else {
		bars, err := a.Bars.ReadBars(ctx, cfg.App.Instrument)
		if err != nil {
			return err
		}
		if n := cfg.Window(); len(bars) > n {
			bars = bars[len(bars)-n:]
		}
		v, err = strategy.ComputeVerdict(cfg.App.Instrument, bars, cfg.Params())
		if err != nil {
			return err
		}
	}

	if asJSON {
		fmt.Println(string(v.JSON()))
		return nil
	}
	fmt.Println(report.Format(v, cfg.App.DisplayName))
	return nil
}
