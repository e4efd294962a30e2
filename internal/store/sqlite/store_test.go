package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"niftysignal/internal/model"
)

func openTemp(t *testing.T, limit int) *Store {
	t.Helper()
	s, err := Open(Config{DBPath: filepath.Join(t.TempDir(), "signals.db"), BarLimit: limit})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dailyBars(n int, from time.Time) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 24000 + float64(i)*10
		bars[i] = model.Bar{Date: from.AddDate(0, 0, i), Open: c - 5, High: c + 20, Low: c - 20, Close: c, Volume: 1e6}
	}
	return bars
}

func TestBars_WriteReadOrderedAndLimited(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, 5)
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	bars := dailyBars(8, from)

	// write newest half first to check ordering comes from the query
	require.NoError(t, s.WriteBars(ctx, "NIFTY", bars[4:]))
	require.NoError(t, s.WriteBars(ctx, "NIFTY", bars[:4]))
	require.NoError(t, s.WriteBars(ctx, "BANKNIFTY", dailyBars(3, from)))

	got, err := s.ReadBars(ctx, "NIFTY")
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, bars[3:], got)

	all, err := s.ReadRecentBars(ctx, "NIFTY", 100)
	require.NoError(t, err)
	assert.Len(t, all, 8)

	unlimited, err := s.ReadRecentBars(ctx, "NIFTY", 0)
	require.NoError(t, err)
	assert.Equal(t, bars, unlimited)
}

func TestBars_UpsertReplacesSameDate(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, 0)
	b := dailyBars(1, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, s.WriteBars(ctx, "NIFTY", b))
	b[0].Close = 1
	require.NoError(t, s.WriteBars(ctx, "NIFTY", b))

	got, err := s.ReadBars(ctx, "NIFTY")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Close)
}

func TestSignals_LastWins(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, 0)

	_, ok, err := s.LastSignal(ctx, "NIFTY")
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now()
	require.NoError(t, s.SaveSignal(ctx, "NIFTY", model.SignalNoEntry, now))
	require.NoError(t, s.SaveSignal(ctx, "NIFTY", model.SignalBuyPut, now))
	require.NoError(t, s.SaveSignal(ctx, "BANKNIFTY", model.SignalBuyCall, now))

	sig, ok, err := s.LastSignal(ctx, "NIFTY")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.SignalBuyPut, sig)

	require.NoError(t, s.Ping(ctx))
}
