// Package loader reads daily bar history from CSV exports (Yahoo Finance,
// NSE bhavcopy style) into the engine's Bar model.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"niftysignal/internal/model"
)

// ErrNoBars is returned when no usable row is left after cleaning.
var ErrNoBars = errors.New("loader: no bars")

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02T15:04:05Z07:00",
	"02-Jan-2006",
	"02/01/2006",
}

// CSVLoader loads one instrument's bars from a file.
type CSVLoader struct {
	path string
}

// NewCSVLoader creates a loader for path.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

// ReadBars implements model.BarReader. The file holds a single instrument,
// so instrument is only used for logging.
func (l *CSVLoader) ReadBars(ctx context.Context, instrument string) ([]model.Bar, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", l.path, err)
	}
	defer f.Close()

	bars, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", l.path, err)
	}
	slog.DebugContext(ctx, "[loader] read bars",
		slog.String("instrument", instrument),
		slog.String("path", l.path),
		slog.Int("bars", len(bars)),
	)
	return bars, nil
}

// Parse reads a CSV with a header row containing Date, Open, High, Low,
// Close and optionally Volume (any order, case-insensitive). Rows with a
// missing or non-numeric price are dropped. The result is sorted by date
// with duplicate dates collapsed (last row wins).
func Parse(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoBars
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]model.Bar)
	dropped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		b, ok := parseRow(rec, cols)
		if !ok {
			dropped++
			continue
		}
		byDay[b.Date] = b
	}

	if dropped > 0 {
		slog.Debug("[loader] dropped incomplete rows", slog.Int("rows", dropped))
	}
	if len(byDay) == 0 {
		return nil, ErrNoBars
	}

	bars := make([]model.Bar, 0, len(byDay))
	for _, b := range byDay {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

type columns struct {
	date, open, high, low, close, volume int
}

func columnIndex(header []string) (columns, error) {
	c := columns{-1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "date", "datetime", "timestamp":
			c.date = i
		case "open":
			c.open = i
		case "high":
			c.high = i
		case "low":
			c.low = i
		case "close", "ltp":
			c.close = i
		case "volume", "shares traded":
			c.volume = i
		}
	}
	if c.date < 0 || c.open < 0 || c.high < 0 || c.low < 0 || c.close < 0 {
		return c, fmt.Errorf("header %v: need date, open, high, low, close columns", header)
	}
	return c, nil
}

func parseRow(rec []string, c columns) (model.Bar, bool) {
	get := func(i int) (float64, bool) {
		if i < 0 || i >= len(rec) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(rec[i]), ",", ""), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	if c.date >= len(rec) {
		return model.Bar{}, false
	}
	day, ok := parseDate(rec[c.date])
	if !ok {
		return model.Bar{}, false
	}

	var b model.Bar
	var okO, okH, okL, okC bool
	b.Date = day
	b.Open, okO = get(c.open)
	b.High, okH = get(c.high)
	b.Low, okL = get(c.low)
	b.Close, okC = get(c.close)
	if !(okO && okH && okL && okC) {
		return model.Bar{}, false
	}
	b.Volume, _ = get(c.volume)
	return b, true
}

// parseDate keeps only the calendar day, at 00:00 UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
