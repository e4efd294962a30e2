package strategy

import (
	"time"

	"github.com/shopspring/decimal"

	"niftysignal/internal/indicator"
	"niftysignal/internal/model"
)

// DecideInput is everything the decision rules look at.
type DecideInput struct {
	Instrument string
	Date       time.Time
	Price      float64 // latest close
	Current    float64 // latest %K
	Previous   float64 // %K one bar earlier
	D          float64 // latest %D, informational
	DValid     bool
	Bricks     []model.Brick
}

// Decide applies the rules in order, first match wins:
//
//  1. fewer than 3 bricks → NO ENTRY
//  2. classify the trailing 3 bricks
//  3. crossedAbove20 = prev <= 20 && cur > 20; crossedBelow80 = prev >= 80 && cur < 80
//  4. BUY CALL iff all up && (crossedAbove20 || 20 < cur < 40)
//  5. BUY PUT iff all down && (crossedBelow80 || 60 < cur < 80)
//  6. otherwise NO ENTRY
//
// Decide never fails; its caller guarantees both %K values are defined.
func Decide(in DecideInput, p Params) model.Verdict {
	v := model.Verdict{
		Instrument:  in.Instrument,
		Date:        in.Date,
		Price:       in.Price,
		OscCurrent:  in.Current,
		OscPrevious: in.Previous,
		OscD:        in.D,
		OscDValid:   in.DValid,
		Pattern:     indicator.TrailingPattern(in.Bricks),
		Signal:      model.SignalNoEntry,
	}
	if v.Pattern == model.PatternInsufficient {
		return v
	}

	crossedAbove20 := in.Previous <= OversoldLevel && in.Current > OversoldLevel
	crossedBelow80 := in.Previous >= OverboughtLevel && in.Current < OverboughtLevel
	inCallZone := in.Current > OversoldLevel && in.Current < CallZoneHigh
	inPutZone := in.Current > PutZoneLow && in.Current < OverboughtLevel

	switch {
	case v.Pattern == model.PatternAllUp && (crossedAbove20 || inCallZone):
		v.Signal = model.SignalBuyCall
	case v.Pattern == model.PatternAllDown && (crossedBelow80 || inPutZone):
		v.Signal = model.SignalBuyPut
	default:
		return v
	}

	strike := Strike(in.Price, v.Signal, p)
	v.Strike = &strike
	return v
}

// Strike returns the strike for an actionable signal:
//
//	call: round((price + offset) / step) * step
//	put:  round((price - offset) / step) * step
//
// Ties round half away from zero. The arithmetic is decimal so a price like
// 24725.00 lands exactly on the .5 tie instead of a float neighbour of it.
func Strike(price float64, sig model.Signal, p Params) int {
	offset := decimal.NewFromFloat(p.StrikeOffset)
	if sig == model.SignalBuyPut {
		offset = offset.Neg()
	}
	step := decimal.NewFromFloat(p.StrikeStep)

	return int(decimal.NewFromFloat(price).
		Add(offset).
		Div(step).
		Round(0).
		Mul(step).
		IntPart())
}
