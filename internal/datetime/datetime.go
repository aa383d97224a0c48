// Package datetime converts between time.Time and the fixed-format local
// strings stored in the search address.
//
// Parsing helpers return (value, ok) instead of an error: a malformed date in
// the address means "no date selected", never a failure.
package datetime

import (
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"          // YYYY-MM-DD
	TimestampLayout = "2006-01-02T15:04:05" // YYYY-MM-DDTHH:MM:SS, no offset
	ClockLayout     = "15:04"               // HH:MM
)

// ToCanonicalDate formats the local calendar fields of t as YYYY-MM-DD.
func ToCanonicalDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseCanonicalDate reads the YYYY-MM-DD prefix of input (anything from the
// first 'T' on is ignored) and returns local midnight of that day.
func ParseCanonicalDate(input string) (time.Time, bool) {
	if i := strings.IndexByte(input, 'T'); i >= 0 {
		input = input[:i]
	}
	parts := strings.Split(strings.TrimSpace(input), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	nums := [3]int{}
	for i, p := range parts {
		if p == "" {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, false
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	if year == 0 || month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// NextDay returns the calendar day after t as YYYY-MM-DD.
func NextDay(t time.Time) string {
	return ToCanonicalDate(time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location()))
}

// ToLocalTimestamp formats t as YYYY-MM-DDTHH:MM:SS using its wall clock.
func ToLocalTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseClock validates an "HH:MM" string.
func ParseClock(s string) (hour, minute int, ok bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// CombineClock places hour:minute on the calendar day of date.
func CombineClock(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// At composes a calendar day (YYYY-MM-DD) and an HH:MM clock into a canonical
// timestamp. The clock must already be valid.
func At(day, clock string) string {
	return day + "T" + clock + ":00"
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
