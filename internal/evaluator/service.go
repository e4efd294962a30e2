// Package evaluator runs the signal engine against the configured bar
// source, once on demand or daily after the NSE close, and hands each
// verdict to the reporter, metrics and live stream.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"niftysignal/internal/indicator"
	"niftysignal/internal/logger"
	"niftysignal/internal/markethours"
	"niftysignal/internal/metrics"
	"niftysignal/internal/model"
	"niftysignal/internal/strategy"
)

// Reporter receives every successful verdict.
type Reporter interface {
	Report(ctx context.Context, v model.Verdict) (changed bool, err error)
}

// Config wires a Service. Bars and Params are required; the rest may be nil.
type Config struct {
	Instrument string
	Params     strategy.Params
	Bars       model.BarReader
	Reporter   Reporter
	Publisher  model.VerdictPublisher
	Metrics    *metrics.Metrics
	Health     *metrics.HealthStatus
	Log        *slog.Logger

	Window     int           // trailing bars evaluated; 0 = all loaded
	Delay      time.Duration // after the 15:30 IST close
	RunOnStart bool
}

// Service is the top-level orchestrator for one instrument.
type Service struct {
	cfg Config
	log *slog.Logger
	now func() time.Time

	// wait blocks until t or ctx is done; replaced in tests.
	wait func(ctx context.Context, t time.Time) error

	mu   sync.Mutex // serialises evaluations
	last *model.Verdict
}

// New validates cfg and creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Instrument == "" {
		return nil, errors.New("evaluator: instrument is required")
	}
	if cfg.Bars == nil {
		return nil, errors.New("evaluator: bar reader is required")
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:  cfg,
		log:  log,
		now:  time.Now,
		wait: sleepUntil,
	}, nil
}

// Evaluate loads bars, computes the verdict and reports it. A reporter or
// publisher failure is returned alongside the verdict it concerned.
func (s *Service) Evaluate(ctx context.Context) (model.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID(s.cfg.Instrument, start))

	v, err := s.compute(ctx)
	if s.cfg.Health != nil {
		s.cfg.Health.RecordEvaluation(start, err)
	}
	if err != nil {
		s.observeError(err)
		s.log.ErrorContext(ctx, "[evaluator] evaluation failed",
			append(logger.LogWithTrace(ctx), slog.Any("error", err))...)
		return model.Verdict{}, err
	}
	s.last = &v

	if m := s.cfg.Metrics; m != nil {
		m.EvaluationsTotal.WithLabelValues(string(v.Signal)).Inc()
		m.LastOscillator.Set(v.OscCurrent)
		m.LastPrice.Set(v.Price)
	}
	s.log.InfoContext(ctx, "[evaluator] verdict",
		append(logger.LogWithTrace(ctx),
			slog.String("instrument", v.Instrument),
			slog.String("date", v.Date.Format("2006-01-02")),
			slog.Float64("price", v.Price),
			slog.Float64("k", v.OscCurrent),
			slog.Float64("k_prev", v.OscPrevious),
			slog.String("pattern", string(v.Pattern)),
			slog.String("signal", string(v.Signal)),
		)...)

	var errs []error
	if s.cfg.Publisher != nil {
		if err := s.cfg.Publisher.PublishVerdict(ctx, v); err != nil {
			errs = append(errs, fmt.Errorf("evaluator: publish: %w", err))
		}
	}
	if s.cfg.Reporter != nil {
		changed, err := s.cfg.Reporter.Report(ctx, v)
		if err != nil {
			errs = append(errs, err)
		}
		if changed && s.cfg.Metrics != nil {
			s.cfg.Metrics.SignalChanges.Inc()
		}
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.EvaluationDur.Observe(s.now().Sub(start).Seconds())
	}

	if err := errors.Join(errs...); err != nil {
		s.observeError(err)
		return v, err
	}
	return v, nil
}

func (s *Service) compute(ctx context.Context) (model.Verdict, error) {
	bars, err := s.cfg.Bars.ReadBars(ctx, s.cfg.Instrument)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("evaluator: load bars: %w", err)
	}
	if w := s.cfg.Window; w > 0 && len(bars) > w {
		bars = bars[len(bars)-w:]
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.BarsLoaded.Set(float64(len(bars)))
	}
	s.log.DebugContext(ctx, "[evaluator] bars loaded",
		append(logger.LogWithTrace(ctx), slog.Int("bars", len(bars)))...)

	return strategy.ComputeVerdict(s.cfg.Instrument, bars, s.cfg.Params)
}

// Last returns the most recent successful verdict.
func (s *Service) Last() (model.Verdict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return model.Verdict{}, false
	}
	return *s.last, true
}

// Run evaluates on start (when configured) and then after every trading
// day's close plus Delay. Failed evaluations are logged and retried the
// next session. Blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.RunOnStart {
		s.Evaluate(ctx)
	}
	for {
		next := markethours.NextEvaluation(s.now(), s.cfg.Delay)
		s.log.Info("[evaluator] next evaluation scheduled",
			slog.String("at", next.Format(time.RFC3339)),
			slog.String("market", markethours.StatusString(s.now())),
		)
		if err := s.wait(ctx, next); err != nil {
			return nil
		}
		s.Evaluate(ctx)
	}
}

func (s *Service) observeError(err error) {
	if s.cfg.Metrics == nil {
		return
	}
	s.cfg.Metrics.EvaluationErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// ErrorKind labels err for metrics.
func ErrorKind(err error) string {
	var ide *indicator.InsufficientDataError
	var uoe *indicator.UndefinedOscillatorError
	var ibe *indicator.InvalidBarError
	switch {
	case errors.As(err, &ide):
		return "insufficient_data"
	case errors.As(err, &uoe):
		return "undefined_oscillator"
	case errors.As(err, &ibe):
		return "invalid_bar"
	case errors.Is(err, indicator.ErrInvalidParams):
		return "invalid_params"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "io"
}

func sleepUntil(ctx context.Context, t time.Time) error {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
