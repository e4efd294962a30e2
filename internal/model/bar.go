package model

import (
	"encoding/json"
	"time"
)

// Bar is one daily OHLC bar for a single instrument.
// Prices are index points (rupees for equities); bars are never mutated
// after the loader produces them.
type Bar struct {
	Date   time.Time `json:"date"` // trading day at 00:00 UTC
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Day returns the bar date as "2006-01-02".
func (b *Bar) Day() string {
	return b.Date.Format("2006-01-02")
}

// JSON returns the JSON-encoded bar (ignoring errors for logging usage).
func (b *Bar) JSON() []byte {
	out, _ := json.Marshal(b)
	return out
}

// OscillatorPoint is one stochastic reading aligned with a Bar.
// KValid is false until the lookback window is full and whenever the
// window is flat (high == low); DValid is false until dPeriod valid %K
// values precede it.
type OscillatorPoint struct {
	K      float64 `json:"k"`
	D      float64 `json:"d"`
	KValid bool    `json:"k_valid"`
	DValid bool    `json:"d_valid"`
}

// Brick is one full brick-size move: +1 up, -1 down.
type Brick int8

const (
	BrickUp   Brick = 1
	BrickDown Brick = -1
)
