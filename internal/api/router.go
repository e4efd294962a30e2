// Package api exposes the signal service over HTTP: health, on-demand
// evaluation, the Telegram bot webhook and the live verdict stream.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"niftysignal/internal/indicator"
	"niftysignal/internal/model"
	"niftysignal/internal/report"
)

// Greeting is the /start reply.
const Greeting = "Trading Bot Active ✅\nUse /run to get current signal"

// Evaluator runs one evaluation.
type Evaluator interface {
	Evaluate(ctx context.Context) (model.Verdict, error)
	Last() (model.Verdict, bool)
}

// Replier answers a Telegram chat.
type Replier interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// SecretHeader carries the secret_token registered with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Deps are the router's collaborators. Replier and Stream may be nil.
// When WebhookSecret is set, webhook updates without a matching
// SecretHeader are rejected.
type Deps struct {
	Evaluator     Evaluator
	Replier       Replier
	Stream        http.Handler
	DisplayName   string
	WebhookSecret string
	Log           *slog.Logger
}

type handler struct {
	Deps
}

// NewRouter sets up HTTP routes for the API server.
func NewRouter(d Deps) *http.ServeMux {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	h := &handler{Deps: d}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/api/v1/signal", h.signal)
	mux.HandleFunc("/api/v1/telegram/webhook", h.telegramWebhook)
	if d.Stream != nil {
		mux.Handle("/api/v1/stream", d.Stream)
	}

	return mux
}

// signal evaluates now, or returns the last verdict with ?cached=1.
func (h *handler) signal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Use GET request")
		return
	}

	if r.URL.Query().Get("cached") == "1" {
		v, ok := h.Evaluator.Last()
		if !ok {
			writeError(w, http.StatusNotFound, "no verdict yet")
			return
		}
		writeJSON(w, http.StatusOK, v)
		return
	}

	v, err := h.Evaluator.Evaluate(r.Context())
	if err != nil && v.Instrument == "" {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if err != nil {
		// The verdict stands; only delivery failed.
		h.Log.Warn("[api] verdict reported with errors", slog.Any("error", err))
	}
	writeJSON(w, http.StatusOK, v)
}

func statusFor(err error) int {
	var ide *indicator.InsufficientDataError
	var uoe *indicator.UndefinedOscillatorError
	var ibe *indicator.InvalidBarError
	switch {
	case errors.As(err, &ide), errors.As(err, &uoe), errors.As(err, &ibe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// update is the subset of a Telegram Bot API Update the bot reads.
type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

func (h *handler) telegramWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Use POST request")
		return
	}
	if h.WebhookSecret != "" &&
		subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(h.WebhookSecret)) != 1 {
		h.Log.Warn("[api] webhook secret mismatch", slog.String("remote", r.RemoteAddr))
		writeError(w, http.StatusUnauthorized, "invalid secret token")
		return
	}

	var u update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid update")
		return
	}

	if u.Message != nil {
		if reply, ok := h.command(r.Context(), u.Message.Text); ok && h.Replier != nil {
			if err := h.Replier.SendText(r.Context(), u.Message.Chat.ID, reply); err != nil {
				h.Log.Error("[api] telegram reply failed",
					slog.Int64("update_id", u.UpdateID),
					slog.Any("error", err),
				)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// command returns the reply text for a bot command; ok is false for
// anything the bot does not answer.
func (h *handler) command(ctx context.Context, text string) (reply string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}
	cmd, _, _ := strings.Cut(fields[0], "@") // "/run@SomeBot" in groups

	switch cmd {
	case "/start":
		return Greeting, true
	case "/run":
		v, err := h.Evaluator.Evaluate(ctx)
		if err != nil && v.Instrument == "" {
			return "Error: " + err.Error(), true
		}
		return report.Format(v, h.DisplayName), true
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"status": "error", "message": msg})
}
