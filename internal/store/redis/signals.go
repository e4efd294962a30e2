// Package redis keeps the last reported signal per instrument in Redis so
// several signal daemons can share one notion of "previous signal".
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"niftysignal/internal/model"
)

const defaultKeyPrefix = "signal:last:"

// Config configures the Redis signal store.
type Config struct {
	Addr      string // Redis address, e.g. "localhost:6379"
	Password  string
	DB        int
	KeyPrefix string // defaults to "signal:last:"
}

// SignalStore stores one hash per instrument: {signal, ts}.
type SignalStore struct {
	client *goredis.Client
	prefix string
}

// Client returns the underlying Redis client for health checks.
func (s *SignalStore) Client() *goredis.Client { return s.client }

// New creates a SignalStore and pings the server.
func New(cfg Config) (*SignalStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("[redis] connected", slog.String("addr", cfg.Addr))
	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, prefix string) *SignalStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &SignalStore{client: client, prefix: prefix}
}

// Key returns the hash key for instrument.
func (s *SignalStore) Key(instrument string) string {
	return s.prefix + instrument
}

// LastSignal reads the stored signal. A missing key is not an error.
func (s *SignalStore) LastSignal(ctx context.Context, instrument string) (model.Signal, bool, error) {
	v, err := s.client.HGet(ctx, s.Key(instrument), "signal").Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", s.Key(instrument), err)
	}
	return model.Signal(v), true, nil
}

// SaveSignal overwrites the stored signal.
func (s *SignalStore) SaveSignal(ctx context.Context, instrument string, sig model.Signal, at time.Time) error {
	err := s.client.HSet(ctx, s.Key(instrument),
		"signal", string(sig),
		"ts", strconv.FormatInt(at.Unix(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", s.Key(instrument), err)
	}
	return nil
}

// Close closes the client.
func (s *SignalStore) Close() error {
	return s.client.Close()
}
