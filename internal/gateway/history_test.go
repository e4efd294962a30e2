package gateway

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"
)

func TestHistory_Since(t *testing.T) {
	h := NewHistory(100)
	for i := int64(1); i <= 10; i++ {
		h.Push(i, []byte(strconv.FormatInt(i, 10)))
	}

	got := h.Since(7)
	if len(got) != 3 {
		t.Fatalf("Since(7): expected 3, got %d", len(got))
	}
	if string(got[0]) != "8" || string(got[2]) != "10" {
		t.Errorf("unexpected order: %q", got)
	}
	if string(h.Latest()) != "10" {
		t.Errorf("Latest = %q, want 10", h.Latest())
	}
}

func TestHistory_Wraparound(t *testing.T) {
	h := NewHistory(5)
	for i := int64(1); i <= 8; i++ {
		h.Push(i, []byte(strconv.FormatInt(i, 10)))
	}

	if h.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", h.Len())
	}
	got := h.Since(0)
	if len(got) != 5 || string(got[0]) != "4" || string(got[4]) != "8" {
		t.Errorf("expected seqs 4..8, got %q", got)
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(10)
	if got := h.Since(0); len(got) != 0 {
		t.Fatalf("empty history Since should return 0, got %d", len(got))
	}
	if h.Latest() != nil {
		t.Fatal("empty history Latest should be nil")
	}
}

func TestBuildEnvelope(t *testing.T) {
	now := time.Date(2026, 10, 16, 10, 15, 0, 0, time.UTC)
	buf := buildEnvelope([]byte(`{"signal":"BUY CALL"}`), now, 42)

	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
		TS   string          `json:"ts"`
		Seq  int64           `json:"seq"`
	}
	if err := json.Unmarshal(buf, &env); err != nil {
		t.Fatalf("envelope is not valid JSON: %v\nraw: %s", err, buf)
	}
	if env.Type != "verdict" || env.Seq != 42 {
		t.Errorf("unexpected envelope %+v", env)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, env.TS); err != nil || !parsed.Equal(now) {
		t.Errorf("ts: got %q (%v)", env.TS, err)
	}
	if string(env.Data) != `{"signal":"BUY CALL"}` {
		t.Errorf("data: got %s", env.Data)
	}
}
