package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"niftysignal/internal/model"
)

// LastSignal returns the newest signal row for instrument.
func (s *Store) LastSignal(ctx context.Context, instrument string) (model.Signal, bool, error) {
	var sig string
	err := s.db.QueryRowContext(ctx, `
		SELECT signal FROM last_signal
		WHERE instrument = ?
		ORDER BY id DESC
		LIMIT 1
	`, instrument).Scan(&sig)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite read last_signal: %w", err)
	}
	return model.Signal(sig), true, nil
}

// SaveSignal appends a signal row; history is kept, the newest row wins.
func (s *Store) SaveSignal(ctx context.Context, instrument string, sig model.Signal, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO last_signal (instrument, signal, created_at) VALUES (?, ?, ?)`,
		instrument, string(sig), at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite insert last_signal: %w", err)
	}
	return nil
}
