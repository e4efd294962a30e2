package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"niftysignal/internal/model"
)

func TestBuildBricks_FlatThenJump(t *testing.T) {
	cs := make([]float64, 20)
	for i := range cs {
		cs[i] = 100
	}
	cs = append(cs, 140)

	bricks := BuildBricks(closes(cs...), 20)
	assert.Equal(t, []model.Brick{model.BrickUp, model.BrickUp}, bricks)
}

func TestBuildBricks_SteadyRiseEmitsN(t *testing.T) {
	// Rises by exactly 7 * 20 in uneven steps with no reversal.
	bricks := BuildBricks(closes(1000, 1013, 1031, 1060, 1075, 1102, 1119, 1140), 20)
	assert.Len(t, bricks, 7)
	for i, b := range bricks {
		assert.Equal(t, model.BrickUp, b, "brick %d", i)
	}
}

func TestBuildBricks_ReferenceMovesInBrickSteps(t *testing.T) {
	// ref 100 → 145 emits 2 up, ref=140 (not 145)
	// 125: diff -15, nothing
	// 119: diff -21 → 1 down, ref=120
	// 139: diff 19, nothing; 140: diff 20 → 1 up
	bricks := BuildBricks(closes(100, 145, 125, 119, 139, 140), 20)
	want := []model.Brick{model.BrickUp, model.BrickUp, model.BrickDown, model.BrickUp}
	assert.Equal(t, want, bricks)
}

func TestBuildBricks_LargeDrop(t *testing.T) {
	bricks := BuildBricks(closes(500, 435), 20)
	assert.Equal(t, []model.Brick{model.BrickDown, model.BrickDown, model.BrickDown}, bricks)
}

func TestBuildBricks_OnlyCloseMatters(t *testing.T) {
	a := closes(100, 130, 90, 170, 150, 210)
	b := make([]model.Bar, len(a))
	for i, x := range a {
		b[i] = x
		b[i].Open = x.Close * 3
		b[i].High = x.Close + 500
		b[i].Low = 1
		b[i].Volume = float64(i * 999)
	}
	assert.Equal(t, BuildBricks(a, 20), BuildBricks(b, 20))
}

func TestBuildBricks_Degenerate(t *testing.T) {
	assert.Nil(t, BuildBricks(nil, 20))
	assert.Nil(t, BuildBricks(closes(100, 200), 0))
	assert.Empty(t, BuildBricks(closes(100), 20))
	assert.Empty(t, BuildBricks(closes(100, 119.99, 80.01), 20))
}

func TestTrailingPattern(t *testing.T) {
	up, down := model.BrickUp, model.BrickDown
	tests := []struct {
		name   string
		bricks []model.Brick
		want   model.BrickPattern
	}{
		{"none", nil, model.PatternInsufficient},
		{"two", []model.Brick{up, up}, model.PatternInsufficient},
		{"all up", []model.Brick{down, up, up, up}, model.PatternAllUp},
		{"all down", []model.Brick{up, up, down, down, down}, model.PatternAllDown},
		{"mixed", []model.Brick{up, up, down, up}, model.PatternMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrailingPattern(tt.bricks))
		})
	}
}
