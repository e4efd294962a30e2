// Package metrics exposes Prometheus counters for signal evaluations and a
// /healthz handler backed by periodic SQLite and Redis probes.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the signal service.
type Metrics struct {
	EvaluationsTotal *prometheus.CounterVec // labels: signal
	EvaluationErrors *prometheus.CounterVec // labels: kind
	EvaluationDur    prometheus.Histogram
	SignalChanges    prometheus.Counter
	NotifyFailures   prometheus.Counter

	LastOscillator prometheus.Gauge // %K of the latest bar
	LastPrice      prometheus.Gauge
	BarsLoaded     prometheus.Gauge

	StreamClients prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_evaluations_total",
			Help: "Completed evaluations by resulting signal",
		}, []string{"signal"}),
		EvaluationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_evaluation_errors_total",
			Help: "Failed evaluations by error kind",
		}, []string{"kind"}),
		EvaluationDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signal_evaluation_duration_seconds",
			Help:    "Load, compute and report latency per evaluation",
			Buckets: prometheus.DefBuckets,
		}),
		SignalChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signal_changes_total",
			Help: "Evaluations whose signal differed from the stored one",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signal_notify_failures_total",
			Help: "Notifications that could not be delivered",
		}),

		LastOscillator: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signal_last_stochastic_k",
			Help: "Stochastic %K of the most recent evaluated bar",
		}),
		LastPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signal_last_price",
			Help: "Close of the most recent evaluated bar",
		}),
		BarsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signal_bars_loaded",
			Help: "Bars loaded for the most recent evaluation",
		}),

		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signal_stream_clients",
			Help: "Connected WebSocket stream clients",
		}),
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationErrors,
		m.EvaluationDur,
		m.SignalChanges,
		m.NotifyFailures,
		m.LastOscillator,
		m.LastPrice,
		m.BarsLoaded,
		m.StreamClients,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	RedisEnabled   bool
	RedisConnected bool
	SQLiteOK       bool

	LastEvalAt    time.Time
	LastEvalError string

	RedisLatencyMs  float64
	SQLiteLatencyMs float64
	LastCheckAt     time.Time
	StartedAt       time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

// SetRedisEnabled marks Redis as a required dependency.
func (h *HealthStatus) SetRedisEnabled(v bool) {
	h.mu.Lock()
	h.RedisEnabled = v
	h.mu.Unlock()
}

// RecordEvaluation stores the outcome of the latest evaluation.
func (h *HealthStatus) RecordEvaluation(at time.Time, err error) {
	h.mu.Lock()
	h.LastEvalAt = at
	h.LastEvalError = ""
	if err != nil {
		h.LastEvalError = err.Error()
	}
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite pings the database and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// Probe runs one round of dependency checks. Nil dependencies are skipped.
func (h *HealthStatus) Probe(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB) {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if rdb != nil {
		h.CheckRedis(probeCtx, rdb)
	}
	if sqlDB != nil {
		h.CheckSQLite(probeCtx, sqlDB)
	}
}

// StartLivenessChecker probes immediately and then every interval.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		h.Probe(ctx, rdb, sqlDB)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Probe(ctx, rdb, sqlDB)
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	redisDown := h.RedisEnabled && !h.RedisConnected
	if !h.SQLiteOK || redisDown || h.LastEvalError != "" {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !h.SQLiteOK && redisDown {
		overallStatus = "unhealthy"
	}

	lastEval := ""
	if !h.LastEvalAt.IsZero() {
		lastEval = h.LastEvalAt.Format(time.RFC3339)
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		RedisEnabled    bool    `json:"redis_enabled"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		LastEvalAt      string  `json:"last_eval_at"`
		LastEvalError   string  `json:"last_eval_error,omitempty"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		RedisEnabled:    h.RedisEnabled,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		LastEvalAt:      lastEval,
		LastEvalError:   h.LastEvalError,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
	log  *slog.Logger
}

// NewServer creates a metrics and health server. gatherer defaults to the
// default registry when nil.
func NewServer(addr string, health *HealthStatus, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		log:  log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server's mux.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("[metrics] server listening", slog.String("addr", s.addr))
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error("[metrics] server error", slog.Any("error", err))
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
