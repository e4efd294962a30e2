// Package markethours knows the NSE cash-market calendar: which IST days
// trade and when the daily close falls, so the evaluator can run once per
// session after the final bar is settled.
package markethours

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// Market hours in IST
const (
	OpenHour    = 9
	OpenMinute  = 15
	CloseHour   = 15
	CloseMinute = 30
)

// IsWeekday returns true if t is Mon–Fri in IST.
func IsWeekday(t time.Time) bool {
	wd := t.In(IST).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	ist := t.In(IST)
	return IsWeekday(ist) && !IsHoliday(ist)
}

// IsMarketOpen returns true if t falls within the 9:15–15:30 IST session
// of a trading day.
func IsMarketOpen(t time.Time) bool {
	ist := t.In(IST)
	if !IsTradingDay(ist) {
		return false
	}
	hm := ist.Hour()*60 + ist.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// TodayClose returns the 15:30 IST close on t's IST calendar day.
func TodayClose(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), CloseHour, CloseMinute, 0, 0, IST)
}

// NextEvaluation returns the first moment strictly after t that is delay past
// the close of a trading day.
func NextEvaluation(t time.Time, delay time.Duration) time.Time {
	ist := t.In(IST)
	d := ist
	for i := 0; i < 15; i++ { // longest NSE closure is well under two weeks
		if IsTradingDay(d) {
			at := TodayClose(d).Add(delay)
			if at.After(ist) {
				return at
			}
		}
		d = d.AddDate(0, 0, 1)
	}
	return TodayClose(ist.AddDate(0, 0, 1)).Add(delay)
}

// LastSession returns the IST date (00:00 UTC, matching bar dates) of the
// latest trading day whose close is at or before t.
func LastSession(t time.Time) time.Time {
	d := t.In(IST)
	if d.Before(TodayClose(d)) {
		d = d.AddDate(0, 0, -1)
	}
	for i := 0; i < 15 && !IsTradingDay(d); i++ {
		d = d.AddDate(0, 0, -1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// StatusString returns a human-readable market status.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		return fmt.Sprintf("Market open, closes in %s", fmtDur(TodayClose(t).Sub(t)))
	}
	next := NextEvaluation(t, 0)
	return fmt.Sprintf("Market closed, next close %s %s (%s)",
		next.Weekday().String()[:3], next.Format("2006-01-02 15:04"), fmtDur(next.Sub(t)))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
