package markethours

import "time"

type holiday struct {
	month time.Month
	day   int
}

// NSE equity segment trading holidays, keyed by year.
var nseHolidays = map[int][]holiday{
	2026: {
		{time.January, 26},  // Republic Day
		{time.February, 17}, // Mahashivratri
		{time.March, 14},    // Holi
		{time.March, 31},    // Id-ul-Fitr
		{time.April, 2},     // Ram Navami
		{time.April, 6},     // Mahavir Jayanti
		{time.April, 10},    // Good Friday
		{time.April, 14},    // Dr. Ambedkar Jayanti
		{time.May, 1},       // Maharashtra Day
		{time.June, 7},      // Bakri Id
		{time.July, 6},      // Muharram
		{time.August, 15},   // Independence Day
		{time.August, 16},   // Janmashtami
		{time.September, 5}, // Milad-un-Nabi
		{time.October, 2},   // Gandhi Jayanti
		{time.October, 20},  // Dussehra
		{time.October, 21},  // Dussehra
		{time.November, 5},  // Diwali Laxmi Pujan
		{time.November, 6},  // Diwali Balipratipada
		{time.November, 7},  // Bhai Dooj
		{time.November, 19}, // Guru Nanak Jayanti
		{time.December, 25}, // Christmas
	},
}

var holidaySet = func() map[string]bool {
	set := make(map[string]bool)
	for year, days := range nseHolidays {
		for _, h := range days {
			set[dateKey(year, h.month, h.day)] = true
		}
	}
	return set
}()

// IsHoliday reports whether the IST calendar day of t is an NSE holiday.
// Years without a published list only have weekends off.
func IsHoliday(t time.Time) bool {
	ist := t.In(IST)
	return holidaySet[dateKey(ist.Year(), ist.Month(), ist.Day())]
}

func dateKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, IST).Format("2006-01-02")
}
