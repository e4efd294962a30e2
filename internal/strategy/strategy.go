// Package strategy turns a daily bar series into a trading Verdict.
//
// Two independent signals feed the decision: the fast stochastic oscillator
// and a fixed-size brick trend filter. A call is only recommended on three
// consecutive up bricks, a put only on three consecutive down bricks; the
// oscillator then has to be leaving oversold (or sit in the 20–40 zone) for
// a call, and leaving overbought (or sit in the 60–80 zone) for a put.
//
// The engine is stateless: every evaluation rebuilds everything from the
// bars it is given, so concurrent callers never share mutable state.
package strategy

import (
	"fmt"

	"niftysignal/internal/indicator"
)

// Oscillator levels used by the decision rules.
const (
	OversoldLevel   = 20.0
	CallZoneHigh    = 40.0
	PutZoneLow      = 60.0
	OverboughtLevel = 80.0
)

// Params configures one evaluation.
type Params struct {
	KPeriod      int     // %K lookback (bars)
	DPeriod      int     // %D smoothing window
	BrickSize    float64 // price units per brick
	StrikeOffset float64 // added for calls, subtracted for puts
	StrikeStep   float64 // strike grid
}

// DefaultParams returns the 14/3 stochastic, 20-point bricks and a
// strike 300 points out of the money on a 50-point grid.
func DefaultParams() Params {
	return Params{
		KPeriod:      14,
		DPeriod:      3,
		BrickSize:    20,
		StrikeOffset: 300,
		StrikeStep:   50,
	}
}

// Validate rejects parameters the engine cannot evaluate with.
func (p Params) Validate() error {
	switch {
	case p.KPeriod <= 0 || p.DPeriod <= 0:
		return fmt.Errorf("%w: kPeriod=%d dPeriod=%d", indicator.ErrInvalidParams, p.KPeriod, p.DPeriod)
	case !(p.BrickSize > 0):
		return fmt.Errorf("%w: brickSize=%v", indicator.ErrInvalidParams, p.BrickSize)
	case !(p.StrikeStep > 0) || p.StrikeOffset < 0:
		return fmt.Errorf("%w: strikeOffset=%v strikeStep=%v", indicator.ErrInvalidParams, p.StrikeOffset, p.StrikeStep)
	}
	return nil
}

// MinBars is the shortest series ComputeVerdict accepts.
func (p Params) MinBars() int {
	return p.KPeriod + 1
}
