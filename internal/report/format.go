// Package report turns verdicts into text and tells the outside world when
// the signal for an instrument changes.
package report

import (
	"fmt"
	"strings"

	"niftysignal/internal/model"
)

var patternLabels = map[model.BrickPattern]string{
	model.PatternAllUp:        "Green, Green, Green",
	model.PatternAllDown:      "Red, Red, Red",
	model.PatternMixed:        "Mixed/Choppy",
	model.PatternInsufficient: "Not enough Renko movement",
}

// PatternLabel returns the display label for a brick pattern.
func PatternLabel(p model.BrickPattern) string {
	if l, ok := patternLabels[p]; ok {
		return l
	}
	return string(p)
}

// Format renders a verdict as the plain-text block sent to chats.
// displayName labels the price line (e.g. "Nifty").
func Format(v model.Verdict, displayName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", v.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "%s Price: %.2f\n", displayName, v.Price)
	fmt.Fprintf(&b, "Stoch: %.2f (Prev: %.2f)\n", v.OscCurrent, v.OscPrevious)
	fmt.Fprintf(&b, "Renko: %s\n", PatternLabel(v.Pattern))
	fmt.Fprintf(&b, "Signal: %s", v.Signal)
	if v.Strike != nil {
		fmt.Fprintf(&b, "\nStrike: %d", *v.Strike)
	}
	return b.String()
}
