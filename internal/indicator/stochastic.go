package indicator

import (
	"fmt"

	"niftysignal/internal/model"
)

// Stochastic computes the fast stochastic oscillator over bars.
//
// For every index i >= kPeriod-1:
//
//	%K[i] = 100 * (Close[i] - lowN) / (highN - lowN)
//
// where lowN/highN are the lowest Low and highest High of the trailing
// kPeriod bars. %D[i] is the SMA of the trailing dPeriod %K values and is
// only valid when all of them are. %K is not clamped.
//
// A flat window (highN == lowN) yields a point with KValid=false instead of
// NaN or Inf; the gap also restarts %D smoothing.
//
// The returned slice is aligned with bars. At least kPeriod+1 bars are
// required so that a previous %K exists for crossover detection. Any NaN or
// infinite price yields an *InvalidBarError.
func Stochastic(bars []model.Bar, kPeriod, dPeriod int) ([]model.OscillatorPoint, error) {
	if kPeriod <= 0 || dPeriod <= 0 {
		return nil, fmt.Errorf("%w: kPeriod=%d dPeriod=%d", ErrInvalidParams, kPeriod, dPeriod)
	}
	if len(bars) < kPeriod+1 {
		return nil, &InsufficientDataError{Need: kPeriod + 1, Have: len(bars)}
	}
	if err := checkFinite(bars); err != nil {
		return nil, err
	}

	points := make([]model.OscillatorPoint, len(bars))
	smooth := NewSMA(dPeriod)

	for i := kPeriod - 1; i < len(bars); i++ {
		lowN, highN := windowRange(bars[i-kPeriod+1 : i+1])
		if highN == lowN {
			smooth.Reset()
			continue
		}

		k := 100 * (bars[i].Close - lowN) / (highN - lowN)
		smooth.Update(k)
		points[i] = model.OscillatorPoint{
			K:      k,
			KValid: true,
			D:      smooth.Value(),
			DValid: smooth.Ready(),
		}
	}
	return points, nil
}

// windowRange returns the lowest Low and highest High in window.
func windowRange(window []model.Bar) (low, high float64) {
	low, high = window[0].Low, window[0].High
	for _, b := range window[1:] {
		if b.Low < low {
			low = b.Low
		}
		if b.High > high {
			high = b.High
		}
	}
	return low, high
}
