package strategy

import (
	"niftysignal/internal/indicator"
	"niftysignal/internal/model"
)

// ComputeVerdict evaluates the latest bar of a daily series.
//
// bars must be oldest first. Errors are typed: *indicator.InsufficientDataError
// for fewer than p.KPeriod+1 bars, *indicator.UndefinedOscillatorError when
// the current or previous %K window is flat, *indicator.InvalidBarError for a
// NaN or infinite price, indicator.ErrInvalidParams for bad parameters. No partial verdict is ever returned with an error.
func ComputeVerdict(instrument string, bars []model.Bar, p Params) (model.Verdict, error) {
	if err := p.Validate(); err != nil {
		return model.Verdict{}, err
	}

	points, err := indicator.Stochastic(bars, p.KPeriod, p.DPeriod)
	if err != nil {
		return model.Verdict{}, err
	}

	last := len(bars) - 1
	for _, i := range []int{last, last - 1} {
		if !points[i].KValid {
			return model.Verdict{}, &indicator.UndefinedOscillatorError{Index: i, Date: bars[i].Date}
		}
	}

	cur := points[last]
	return Decide(DecideInput{
		Instrument: instrument,
		Date:       bars[last].Date,
		Price:      bars[last].Close,
		Current:    cur.K,
		Previous:   points[last-1].K,
		D:          cur.D,
		DValid:     cur.DValid,
		Bricks:     indicator.BuildBricks(bars, p.BrickSize),
	}, p), nil
}
