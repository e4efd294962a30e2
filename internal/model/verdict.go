package model

import (
	"encoding/json"
	"time"
)

// Signal is the trading recommendation carried by a Verdict.
type Signal string

const (
	SignalBuyCall Signal = "BUY CALL"
	SignalBuyPut  Signal = "BUY PUT"
	SignalNoEntry Signal = "NO ENTRY"
)

// Actionable reports whether the signal carries a strike.
func (s Signal) Actionable() bool {
	return s == SignalBuyCall || s == SignalBuyPut
}

// BrickPattern classifies the trailing three bricks.
type BrickPattern string

const (
	PatternAllUp   BrickPattern = "ALL_UP"
	PatternAllDown BrickPattern = "ALL_DOWN"
	PatternMixed   BrickPattern = "MIXED"
	// PatternInsufficient means fewer than three bricks were ever emitted.
	PatternInsufficient BrickPattern = "INSUFFICIENT"
)

// Verdict is the engine's single output record for one evaluation.
// Strike is non-nil iff Signal is actionable.
type Verdict struct {
	Instrument  string       `json:"instrument"`
	Date        time.Time    `json:"date"`
	Price       float64      `json:"price"`
	OscCurrent  float64      `json:"osc_current"`
	OscPrevious float64      `json:"osc_previous"`
	OscD        float64      `json:"osc_d,omitempty"`
	OscDValid   bool         `json:"osc_d_valid"`
	Pattern     BrickPattern `json:"brick_pattern"`
	Signal      Signal       `json:"signal"`
	Strike      *int         `json:"strike,omitempty"`
}

// JSON returns the JSON-encoded verdict.
func (v *Verdict) JSON() []byte {
	b, _ := json.Marshal(v)
	return b
}
