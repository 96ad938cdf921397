package utils

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// StartOfDay truncates t to civil midnight in the given location.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// AddMonths advances t by the given number of calendar months, clamping the
// day of month to the last valid day of the target month. time.AddDate cannot
// be used here: it normalizes Jan 31 + 1 month to Mar 2/3 instead of Feb end.
func AddMonths(t time.Time, months int, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, loc)
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, loc)
}

// DaysBetween returns the number of civil days from one date to another in
// the given location. Negative when to is before from.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	a := StartOfDay(from, loc)
	b := StartOfDay(to, loc)
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// FormatDate renders a date as day/month/year.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatAmount renders a monetary value with the currency prefix and a fixed
// two-decimal mask, e.g. "S/ 88.85".
func FormatAmount(prefix string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s", prefix, amount.StringFixed(2))
}
