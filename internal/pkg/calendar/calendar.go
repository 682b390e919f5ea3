package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Location is the shop's civil timezone. All due dates and elapsed-day math are anchored here.
var Location = mustLoad("America/Denver")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("calendar: load " + name + ": " + err.Error())
	}
	return loc
}

// Today returns the Mountain Time civil date (midnight) of the instant now.
func Today(now time.Time) time.Time {
	n := now.In(Location)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, Location)
}

// Civil re-anchors a stored date value to midnight Mountain Time keeping its own year, month and day.
// Use it for DATE columns, which drivers hand back at midnight in whatever zone they parsed.
func Civil(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, Location)
}

// SameDay reports whether two date values fall on the same civil day.
func SameDay(a, b time.Time) bool {
	return Civil(a).Equal(Civil(b))
}

// BusinessDaysBetween counts weekdays in the half-open range [from, to).
// A zero time on either side means the date is unknown and yields 0.
func BusinessDaysBetween(from, to time.Time) int {
	if from.IsZero() || to.IsZero() {
		return 0
	}
	cur, end := Civil(from), Civil(to)
	days := 0
	for cur.Before(end) {
		if wd := cur.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, Location).Day()
}

// Ordinal renders 1 as "1st", 22 as "22nd", 13 as "13th".
func Ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// MonthLabel renders "January 2026".
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month.String(), year)
}
