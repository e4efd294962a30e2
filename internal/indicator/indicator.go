// Package indicator provides the technical indicators the signal engine is
// built from: the stochastic oscillator (%K/%D) and the fixed-size brick
// trend series.
//
// Every function here is a pure function of its input bars. Nothing is
// cached between calls, so concurrent callers may share nothing but the
// (read-only) bar slice.
package indicator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"niftysignal/internal/model"
)

// ErrInvalidParams is returned for non-positive periods or brick sizes.
var ErrInvalidParams = errors.New("indicator: invalid parameters")

// InsufficientDataError reports a series shorter than the required lookback.
type InsufficientDataError struct {
	Need int // bars required
	Have int // bars supplied
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("indicator: insufficient data: need %d bars, have %d", e.Need, e.Have)
}

// UndefinedOscillatorError reports a %K reading whose high-low window was
// flat (or not yet full) at the bar the caller needed.
type UndefinedOscillatorError struct {
	Index int
	Date  time.Time
}

func (e *UndefinedOscillatorError) Error() string {
	return fmt.Sprintf("indicator: %%K undefined at bar %d (%s): flat high-low window",
		e.Index, e.Date.Format("2006-01-02"))
}

// InvalidBarError reports a bar with a NaN or infinite price field.
type InvalidBarError struct {
	Index int
	Date  time.Time
	Field string
}

func (e *InvalidBarError) Error() string {
	return fmt.Sprintf("indicator: bar %d (%s) has non-finite %s",
		e.Index, e.Date.Format("2006-01-02"), e.Field)
}

// checkFinite returns an *InvalidBarError for the first bar carrying a NaN
// or infinite Open, High, Low or Close.
func checkFinite(bars []model.Bar) error {
	for i, b := range bars {
		for _, f := range []struct {
			name string
			v    float64
		}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}} {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				return &InvalidBarError{Index: i, Date: b.Date, Field: f.name}
			}
		}
	}
	return nil
}
