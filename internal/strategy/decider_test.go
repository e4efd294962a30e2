package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"niftysignal/internal/model"
)

var (
	up   = model.BrickUp
	down = model.BrickDown

	allUp   = []model.Brick{down, up, up, up}
	allDown = []model.Brick{up, down, down, down}
	mixed   = []model.Brick{up, down, up}
)

func input(cur, prev float64, bricks []model.Brick) DecideInput {
	return DecideInput{
		Instrument: "NIFTY",
		Date:       time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		Price:      24812.35,
		Current:    cur,
		Previous:   prev,
		Bricks:     bricks,
	}
}

func TestDecide_Rules(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name    string
		cur     float64
		prev    float64
		bricks  []model.Brick
		want    model.Signal
		pattern model.BrickPattern
	}{
		{"call on cross above 20", 25, 15, allUp, model.SignalBuyCall, model.PatternAllUp},
		{"call on cross from exactly 20", 21, 20, allUp, model.SignalBuyCall, model.PatternAllUp},
		{"call on big cross", 55, 10, allUp, model.SignalBuyCall, model.PatternAllUp},
		{"call in 20-40 zone", 35, 30, allUp, model.SignalBuyCall, model.PatternAllUp},
		{"no call at 40", 40, 30, allUp, model.SignalNoEntry, model.PatternAllUp},
		{"no call at 20", 20, 10, allUp, model.SignalNoEntry, model.PatternAllUp},
		{"no call when strong", 65, 60, allUp, model.SignalNoEntry, model.PatternAllUp},
		{"put on cross below 80", 70, 85, allDown, model.SignalBuyPut, model.PatternAllDown},
		{"put on cross from exactly 80", 79, 80, allDown, model.SignalBuyPut, model.PatternAllDown},
		{"put on big cross", 30, 95, allDown, model.SignalBuyPut, model.PatternAllDown},
		{"put in 60-80 zone", 65, 70, allDown, model.SignalBuyPut, model.PatternAllDown},
		{"no put at 60", 60, 70, allDown, model.SignalNoEntry, model.PatternAllDown},
		{"no put at 80", 80, 90, allDown, model.SignalNoEntry, model.PatternAllDown},
		{"call setup on down bricks", 25, 15, allDown, model.SignalNoEntry, model.PatternAllDown},
		{"put setup on up bricks", 70, 85, allUp, model.SignalNoEntry, model.PatternAllUp},
		{"mixed blocks call", 25, 15, mixed, model.SignalNoEntry, model.PatternMixed},
		{"mixed blocks put", 70, 85, mixed, model.SignalNoEntry, model.PatternMixed},
		{"too few bricks", 25, 15, []model.Brick{up, up}, model.SignalNoEntry, model.PatternInsufficient},
		{"no bricks", 70, 85, nil, model.SignalNoEntry, model.PatternInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decide(input(tt.cur, tt.prev, tt.bricks), p)
			assert.Equal(t, tt.want, v.Signal)
			assert.Equal(t, tt.pattern, v.Pattern)
			assert.Equal(t, tt.cur, v.OscCurrent)
			assert.Equal(t, tt.prev, v.OscPrevious)
			if tt.want.Actionable() {
				require.NotNil(t, v.Strike)
			} else {
				assert.Nil(t, v.Strike)
			}
		})
	}
}

func TestDecide_CallStrike(t *testing.T) {
	v := Decide(input(25, 15, allUp), DefaultParams())
	require.Equal(t, model.SignalBuyCall, v.Signal)
	// (24812.35 + 300) / 50 = 502.247 → 502 * 50
	require.NotNil(t, v.Strike)
	assert.Equal(t, 25100, *v.Strike)
}

func TestDecide_PutStrike(t *testing.T) {
	v := Decide(input(70, 85, allDown), DefaultParams())
	require.Equal(t, model.SignalBuyPut, v.Signal)
	// (24812.35 - 300) / 50 = 490.247 → 490 * 50
	require.NotNil(t, v.Strike)
	assert.Equal(t, 24500, *v.Strike)
}

func TestStrike_HalfAwayFromZero(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		price float64
		sig   model.Signal
		want  int
	}{
		{24725, model.SignalBuyCall, 25050},    // 500.5 → 501
		{24775, model.SignalBuyPut, 24500},     // 489.5 → 490
		{24674.99, model.SignalBuyCall, 24950}, // 499.4998 → 499
		{24675, model.SignalBuyCall, 25000},    // 499.5 → 500
		{24800, model.SignalBuyCall, 25100},
		{24800, model.SignalBuyPut, 24500},
		{275, model.SignalBuyPut, -50}, // -0.5 → -1
		{250, model.SignalBuyPut, -50}, // -1.0
	}
	for _, tt := range tests {
		got := Strike(tt.price, tt.sig, p)
		assert.Equal(t, tt.want, got, "price=%v sig=%s", tt.price, tt.sig)
	}
}

func TestDecide_Invariants(t *testing.T) {
	p := DefaultParams()
	levels := []float64{0, 10, 19.99, 20, 20.01, 25, 39.99, 40, 50, 60, 60.01, 70, 79.99, 80, 80.01, 90, 100}
	for _, bricks := range [][]model.Brick{allUp, allDown, mixed, nil} {
		for _, cur := range levels {
			for _, prev := range levels {
				v := Decide(input(cur, prev, bricks), p)
				switch v.Signal {
				case model.SignalBuyCall:
					assert.Equal(t, model.PatternAllUp, v.Pattern)
				case model.SignalBuyPut:
					assert.Equal(t, model.PatternAllDown, v.Pattern)
				}
				if v.Pattern == model.PatternMixed {
					assert.Equal(t, model.SignalNoEntry, v.Signal)
				}
				assert.Equal(t, v.Signal.Actionable(), v.Strike != nil,
					"cur=%v prev=%v pattern=%s", cur, prev, v.Pattern)
			}
		}
	}
}

// The bot went through simpler revisions: a stochastic-only rule set with no
// brick filter, and one that also required %K above %D. Every signal the
// combined rules emit must also be emitted by the stochastic-only rules.
func TestDecide_StochasticOnlyRulesAreImplied(t *testing.T) {
	p := DefaultParams()
	stochOnlyCall := func(cur, prev float64) bool {
		return (prev <= 20 && cur > 20) || (cur > 20 && cur < 40)
	}
	stochOnlyPut := func(cur, prev float64) bool {
		return (prev >= 80 && cur < 80) || (cur > 60 && cur < 80)
	}

	variants := []struct {
		name   string
		bricks []model.Brick
	}{
		{"all up", allUp},
		{"all down", allDown},
		{"mixed", mixed},
	}
	for _, vt := range variants {
		t.Run(vt.name, func(t *testing.T) {
			for cur := 0.0; cur <= 100; cur += 2.5 {
				for prev := 0.0; prev <= 100; prev += 2.5 {
					v := Decide(input(cur, prev, vt.bricks), p)
					if v.Signal == model.SignalBuyCall {
						assert.True(t, stochOnlyCall(cur, prev), "cur=%v prev=%v", cur, prev)
					}
					if v.Signal == model.SignalBuyPut {
						assert.True(t, stochOnlyPut(cur, prev), "cur=%v prev=%v", cur, prev)
					}
				}
			}
		})
	}
}

func TestParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	bad := []func(p *Params){
		func(p *Params) { p.KPeriod = 0 },
		func(p *Params) { p.DPeriod = -3 },
		func(p *Params) { p.BrickSize = 0 },
		func(p *Params) { p.StrikeStep = 0 },
		func(p *Params) { p.StrikeOffset = -1 },
	}
	for i, mutate := range bad {
		p := DefaultParams()
		mutate(&p)
		assert.Error(t, p.Validate(), "case %d", i)
	}
}
