// cmd/backtest replays a daily bar history through the signal engine, one
// trading day at a time, and prints every day the signal changed.
//
// Usage:
//
//	go run ./cmd/backtest --csv=data/nifty.csv --window=63
//	go run ./cmd/backtest --db=data/signals.db --instrument=NIFTY
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"niftysignal/internal/logger"
	"niftysignal/internal/marketdata/loader"
	"niftysignal/internal/marketdata/replay"
	"niftysignal/internal/model"
	sqlitestore "niftysignal/internal/store/sqlite"
	"niftysignal/internal/strategy"
)

func main() {
	csvPath := flag.String("csv", "", "CSV file with daily bars")
	dbPath := flag.String("db", "data/signals.db", "SQLite database (used when --csv is empty)")
	instrument := flag.String("instrument", "NIFTY", "Instrument name")
	window := flag.Int("window", sqlitestore.DefaultBarLimit, "Trailing bars per evaluation (0=all history)")
	brick := flag.Float64("brick", 20, "Brick size")
	kPeriod := flag.Int("k", 14, "Stochastic %K period")
	dPeriod := flag.Int("d", 3, "Stochastic %D period")
	all := flag.Bool("all", false, "Print every day, not only signal changes")
	flag.Parse()

	log := logger.InitWriter(os.Stderr, "backtest", slog.LevelInfo)

	params := strategy.DefaultParams()
	params.BrickSize = *brick
	params.KPeriod = *kPeriod
	params.DPeriod = *dPeriod
	if err := params.Validate(); err != nil {
		log.Error("[backtest] invalid parameters", slog.Any("error", err))
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bars, err := loadBars(ctx, *csvPath, *dbPath, *instrument)
	if err != nil {
		log.Error("[backtest] load failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("[backtest] loaded bars", slog.Int("bars", len(bars)))

	replayer := replay.New(params, *window, log)
	verdictCh := make(chan model.Verdict, 256)

	var replayErr error
	go func() {
		replayErr = replayer.Run(ctx, *instrument, bars, verdictCh)
		close(verdictCh)
	}()

	var verdicts []model.Verdict
	counts := map[model.Signal]int{}
	for v := range verdictCh {
		verdicts = append(verdicts, v)
		counts[v.Signal]++
	}
	if replayErr != nil {
		log.Error("[backtest] replay error", slog.Any("error", replayErr))
	}

	shown := replay.Transitions(verdicts)
	if *all {
		shown = verdicts
	}
	for _, v := range shown {
		strike := ""
		if v.Strike != nil {
			strike = fmt.Sprintf("strike=%d", *v.Strike)
		}
		fmt.Printf("%s  close=%9.2f  K=%6.2f (prev %6.2f)  %-12s  %-8s %s\n",
			v.Date.Format("2006-01-02"), v.Price, v.OscCurrent, v.OscPrevious,
			v.Pattern, v.Signal, strike)
	}

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║        BACKTEST COMPLETE             ║")
	fmt.Println("╠══════════════════════════════════════╣")
	fmt.Printf("║  Days evaluated:    %-16d ║\n", len(verdicts))
	fmt.Printf("║  Signal changes:    %-16d ║\n", len(replay.Transitions(verdicts)))
	fmt.Printf("║  BUY CALL days:     %-16d ║\n", counts[model.SignalBuyCall])
	fmt.Printf("║  BUY PUT days:      %-16d ║\n", counts[model.SignalBuyPut])
	fmt.Printf("║  NO ENTRY days:     %-16d ║\n", counts[model.SignalNoEntry])
	fmt.Println("╚══════════════════════════════════════╝")
}

func loadBars(ctx context.Context, csvPath, dbPath, instrument string) ([]model.Bar, error) {
	if csvPath != "" {
		return loader.NewCSVLoader(csvPath).ReadBars(ctx, instrument)
	}
	store, err := sqlitestore.Open(sqlitestore.Config{DBPath: dbPath})
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.ReadRecentBars(ctx, instrument, 0)
}
