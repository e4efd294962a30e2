package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_CountsBySignal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.EvaluationsTotal.WithLabelValues("BUY CALL").Inc()
	m.EvaluationsTotal.WithLabelValues("NO ENTRY").Inc()
	m.EvaluationsTotal.WithLabelValues("NO ENTRY").Inc()
	m.LastOscillator.Set(25)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("NO ENTRY")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.LastOscillator))
}

func healthBody(t *testing.T, h *HealthStatus) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealth_SQLiteProbe(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer db.Close()

	h := NewHealthStatus()
	code, body := healthBody(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])

	h.Probe(context.Background(), nil, db)
	code, body = healthBody(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["redis_enabled"])
}

func TestHealth_RedisRequiredWhenEnabled(t *testing.T) {
	h := NewHealthStatus()
	h.SetRedisEnabled(true)
	code, body := healthBody(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestHealth_LastEvaluationError(t *testing.T) {
	h := NewHealthStatus()
	h.SQLiteOK = true
	h.RecordEvaluation(time.Now(), errors.New("not enough data"))

	code, body := healthBody(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not enough data", body["last_eval_error"])

	h.RecordEvaluation(time.Now(), nil)
	code, _ = healthBody(t, h)
	assert.Equal(t, http.StatusOK, code)
}

func TestServer_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.SignalChanges.Inc()

	srv := NewServer(":0", NewHealthStatus(), reg, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "signal_changes_total 1"))
}
