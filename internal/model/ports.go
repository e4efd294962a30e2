package model

import (
	"context"
	"time"
)

// ── Port Interfaces ──
// These decouple the engine's collaborators from concrete backends
// (CSV files, SQLite, Redis).

// BarReader supplies daily bars for one instrument, oldest first,
// de-duplicated and with no missing OHLC fields.
type BarReader interface {
	ReadBars(ctx context.Context, instrument string) ([]Bar, error)
}

// BarWriter stores daily bars, replacing existing rows for the same date.
type BarWriter interface {
	WriteBars(ctx context.Context, instrument string, bars []Bar) error
}

// SignalStore remembers the last reported signal per instrument.
type SignalStore interface {
	// LastSignal returns the most recent signal. ok is false when none was stored.
	LastSignal(ctx context.Context, instrument string) (sig Signal, ok bool, err error)

	// SaveSignal records sig as the latest signal for instrument.
	SaveSignal(ctx context.Context, instrument string, sig Signal, at time.Time) error
}

// VerdictPublisher fans a fresh verdict out to live subscribers.
type VerdictPublisher interface {
	PublishVerdict(ctx context.Context, v Verdict) error
}
