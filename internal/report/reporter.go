package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"niftysignal/internal/model"
	"niftysignal/internal/notification"
)

// Reporter compares each verdict with the last stored signal for its
// instrument and, only on change, notifies and persists the new signal.
type Reporter struct {
	store       model.SignalStore
	notifier    notification.Notifier
	displayName string
	log         *slog.Logger
	now         func() time.Time

	onNotifyFailure func()
}

// NewReporter wires a reporter. notifier may be nil to persist silently.
func NewReporter(store model.SignalStore, notifier notification.Notifier, displayName string, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{
		store:       store,
		notifier:    notifier,
		displayName: displayName,
		log:         log,
		now:         time.Now,
	}
}

// OnNotifyFailure registers fn to be called for every failed notification.
func (r *Reporter) OnNotifyFailure(fn func()) { r.onNotifyFailure = fn }

// Report returns changed=true when v.Signal differs from the stored signal
// (or none was stored yet). A failed notification is logged and the new
// signal is still persisted so the next run does not alert again.
// Verdicts without enough bricks carry no real signal and are not reported.
func (r *Reporter) Report(ctx context.Context, v model.Verdict) (changed bool, err error) {
	if v.Pattern == model.PatternInsufficient {
		r.log.InfoContext(ctx, "[report] not enough brick movement, skipping",
			slog.String("instrument", v.Instrument),
		)
		return false, nil
	}

	last, ok, err := r.store.LastSignal(ctx, v.Instrument)
	if err != nil {
		return false, fmt.Errorf("report: read last signal: %w", err)
	}
	if ok && last == v.Signal {
		r.log.DebugContext(ctx, "[report] signal unchanged",
			slog.String("instrument", v.Instrument),
			slog.String("signal", string(v.Signal)),
		)
		return false, nil
	}

	if r.notifier != nil {
		alert := notification.Alert{
			Level:   alertLevel(v.Signal),
			Title:   "New Signal: " + string(v.Signal),
			Message: Format(v, r.displayName),
			Verdict: &v,
		}
		if err := r.notifier.Send(ctx, alert); err != nil {
			if r.onNotifyFailure != nil {
				r.onNotifyFailure()
			}
			r.log.ErrorContext(ctx, "[report] notification failed",
				slog.String("instrument", v.Instrument),
				slog.Any("error", err),
			)
		}
	}

	if err := r.store.SaveSignal(ctx, v.Instrument, v.Signal, r.now()); err != nil {
		return true, fmt.Errorf("report: save signal: %w", err)
	}

	r.log.InfoContext(ctx, "[report] signal changed",
		slog.String("instrument", v.Instrument),
		slog.String("from", string(last)),
		slog.String("to", string(v.Signal)),
	)
	return true, nil
}

func alertLevel(s model.Signal) notification.AlertLevel {
	if s.Actionable() {
		return notification.AlertWarning
	}
	return notification.AlertInfo
}
