package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"niftysignal/internal/model"
)

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("Strike: 25,100.50 (BUY-CALL)!")
	assert.Equal(t, `Strike: 25,100\.50 \(BUY\-CALL\)\!`, got)
	assert.Equal(t, "plain", escapeMarkdown("plain"))
}

func TestTelegramNotifier_Send(t *testing.T) {
	var gotPath string
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "-100123").WithAPIBase(srv.URL + "/")
	err := n.Send(context.Background(), Alert{Level: AlertInfo, Title: "New Signal", Message: "Price: 1.5"})
	require.NoError(t, err)

	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, "-100123", got["chat_id"])
	assert.Equal(t, "MarkdownV2", got["parse_mode"])
	assert.Contains(t, got["text"], `Price: 1\.5`)
}

func TestTelegramNotifier_SendText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "").WithAPIBase(srv.URL)
	require.NoError(t, n.SendText(context.Background(), 42, "Signal: NO ENTRY"))

	assert.EqualValues(t, 42, got["chat_id"])
	assert.Equal(t, "Signal: NO ENTRY", got["text"])
	assert.NotContains(t, got, "parse_mode")
}

func TestTelegramNotifier_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("BAD", "1").WithAPIBase(srv.URL)
	assert.ErrorContains(t, n.Send(context.Background(), Alert{Title: "x"}), "unexpected status 401")

	noChat := NewTelegramNotifier("TOKEN", "").WithAPIBase(srv.URL)
	assert.Error(t, noChat.Send(context.Background(), Alert{Title: "x"}))
}

func TestWebhookNotifier_Send(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	strike := 25100
	v := &model.Verdict{Instrument: "NIFTY", Signal: model.SignalBuyCall, Strike: &strike}
	err := NewWebhookNotifier(srv.URL).Send(context.Background(), Alert{
		Level: AlertWarning, Title: "New Signal: BUY CALL", Message: "body", Verdict: v,
	})
	require.NoError(t, err)

	assert.Equal(t, "WARNING", got.Level)
	assert.Equal(t, "New Signal: BUY CALL", got.Title)
	assert.NotEmpty(t, got.TS)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, model.SignalBuyCall, got.Verdict.Signal)
	assert.Equal(t, 25100, *got.Verdict.Strike)
}

func TestWebhookNotifier_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL).Send(context.Background(), Alert{Title: "x"})
	assert.ErrorContains(t, err, "unexpected status 500")
}

type stubNotifier struct {
	sent []Alert
	err  error
}

func (s *stubNotifier) Send(_ context.Context, a Alert) error {
	s.sent = append(s.sent, a)
	return s.err
}

func TestMulti_SendsToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a, b, c := &stubNotifier{}, &stubNotifier{err: boom}, &stubNotifier{}

	err := Multi{a, b, c, NewLogNotifier(nil)}.Send(context.Background(), Alert{Title: "t"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.sent, 1)
	assert.Len(t, b.sent, 1)
	assert.Len(t, c.sent, 1)

	assert.NoError(t, Multi{a}.Send(context.Background(), Alert{}))
}
