package sqlite

import (
	"context"
	"fmt"
	"time"

	"niftysignal/internal/model"
)

const dateLayout = "2006-01-02"

// WriteBars upserts bars for instrument in a single transaction.
func (s *Store) WriteBars(ctx context.Context, instrument string, bars []model.Bar) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO bars_daily (instrument, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare bars_daily: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, instrument, b.Date.Format(dateLayout), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert bar %s: %w", b.Day(), err)
		}
	}
	return tx.Commit()
}

// ReadBars returns the most recent bars for instrument (up to the store's
// bar limit), oldest first.
func (s *Store) ReadBars(ctx context.Context, instrument string) ([]model.Bar, error) {
	return s.ReadRecentBars(ctx, instrument, s.barLimit)
}

// ReadRecentBars returns the last limit bars for instrument, oldest first.
// limit <= 0 returns the whole history.
func (s *Store) ReadRecentBars(ctx context.Context, instrument string, limit int) ([]model.Bar, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, COALESCE(volume, 0)
		FROM (
			SELECT * FROM bars_daily
			WHERE instrument = ?
			ORDER BY date DESC
			LIMIT ?
		)
		ORDER BY date ASC
	`, instrument, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query bars_daily: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		var day string
		if err := rows.Scan(&day, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("sqlite scan bars_daily: %w", err)
		}
		if b.Date, err = time.Parse(dateLayout, day); err != nil {
			return nil, fmt.Errorf("sqlite bad bar date %q: %w", day, err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
