// Package replay walks a historical bar series forward one day at a time
// and evaluates the signal engine as it would have run on each day.
package replay

import (
	"context"
	"errors"
	"log/slog"

	"niftysignal/internal/indicator"
	"niftysignal/internal/model"
	"niftysignal/internal/strategy"
)

// Replayer evaluates every trading day of a series.
type Replayer struct {
	params strategy.Params
	window int // trailing bars per evaluation; 0 = everything so far
	log    *slog.Logger
}

// New creates a Replayer. window mirrors the history the live service
// loads (bricks depend on where the series starts); 0 uses the whole prefix.
func New(params strategy.Params, window int, log *slog.Logger) *Replayer {
	if log == nil {
		log = slog.Default()
	}
	return &Replayer{params: params, window: window, log: log}
}

// Run emits one verdict per bar from the first day with enough history.
// Days whose oscillator is undefined are skipped and logged. Blocks until
// all days are emitted or ctx is cancelled.
func (r *Replayer) Run(ctx context.Context, instrument string, bars []model.Bar, outCh chan<- model.Verdict) error {
	first := r.params.MinBars()
	if r.window > 0 && r.window < first {
		first = r.window // every evaluation errors; surfaced below
	}

	emitted, skipped := 0, 0
	for end := first; end <= len(bars); end++ {
		start := 0
		if r.window > 0 && end > r.window {
			start = end - r.window
		}

		v, err := strategy.ComputeVerdict(instrument, bars[start:end], r.params)
		if err != nil {
			var uoe *indicator.UndefinedOscillatorError
			if errors.As(err, &uoe) {
				skipped++
				r.log.Warn("[replay] skipping day", slog.String("day", bars[end-1].Day()), slog.Any("error", err))
				continue
			}
			return err
		}

		select {
		case <-ctx.Done():
			r.log.Info("[replay] cancelled", slog.Int("emitted", emitted))
			return ctx.Err()
		case outCh <- v:
			emitted++
		}
	}

	r.log.Info("[replay] done", slog.Int("emitted", emitted), slog.Int("skipped", skipped))
	return nil
}

// Transitions keeps the verdicts whose signal differs from the one before,
// i.e. the days the reporter would have alerted on.
func Transitions(verdicts []model.Verdict) []model.Verdict {
	var out []model.Verdict
	var last model.Signal
	for i, v := range verdicts {
		if i == 0 || v.Signal != last {
			out = append(out, v)
		}
		last = v.Signal
	}
	return out
}
