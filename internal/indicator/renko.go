package indicator

import (
	"math"

	"niftysignal/internal/model"
)

// PatternLen is the number of trailing bricks the trend filter inspects.
const PatternLen = 3

// BuildBricks folds the Close series into fixed-size bricks.
//
// The reference price starts at the first Close. For each later bar, every
// full brickSize between the close and the reference emits one brick in
// that direction and moves the reference by brickSize, so a single bar can
// emit zero, one or many bricks. The reference only moves in whole
// brickSize steps; it never snaps to the close.
//
// Only Close participates. Non-finite closes are skipped. Returns nil for
// an empty series or a non-positive brickSize.
func BuildBricks(bars []model.Bar, brickSize float64) []model.Brick {
	if len(bars) == 0 || !(brickSize > 0) {
		return nil
	}

	var bricks []model.Brick
	ref := bars[0].Close
	for _, b := range bars[1:] {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		diff := b.Close - ref
		n := int(math.Abs(diff) / brickSize)
		if n == 0 {
			continue
		}

		dir, step := model.BrickUp, brickSize
		if diff < 0 {
			dir, step = model.BrickDown, -brickSize
		}
		for j := 0; j < n; j++ {
			bricks = append(bricks, dir)
		}
		ref += float64(n) * step
	}
	return bricks
}

// TrailingPattern classifies the last PatternLen bricks.
func TrailingPattern(bricks []model.Brick) model.BrickPattern {
	if len(bricks) < PatternLen {
		return model.PatternInsufficient
	}

	up, down := 0, 0
	for _, b := range bricks[len(bricks)-PatternLen:] {
		switch b {
		case model.BrickUp:
			up++
		case model.BrickDown:
			down++
		}
	}
	switch {
	case up == PatternLen:
		return model.PatternAllUp
	case down == PatternLen:
		return model.PatternAllDown
	default:
		return model.PatternMixed
	}
}
