package schedule

import "time"

// Day truncates t to its calendar date at UTC midnight. All schedule
// arithmetic happens on values returned by Day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay reports whether d falls on Monday through Friday.
// There is no holiday calendar.
func IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// AddBusinessDays returns the n-th business day strictly after start.
// n <= 0 returns start unchanged, even when start is a weekend day.
func AddBusinessDays(start time.Time, n int) time.Time {
	if n <= 0 {
		return start
	}

	// The business days after a weekend day are those after the Friday before.
	d := start
	switch d.Weekday() {
	case time.Saturday:
		d = d.AddDate(0, 0, -1)
	case time.Sunday:
		d = d.AddDate(0, 0, -2)
	}

	weeks, rem := n/5, n%5
	days := weeks*7 + rem
	if int(d.Weekday()-time.Monday)+rem >= 5 {
		days += 2
	}
	return d.AddDate(0, 0, days)
}

// NextBusinessDay returns the first business day strictly after d.
func NextBusinessDay(d time.Time) time.Time {
	next := d.AddDate(0, 0, 1)
	for !IsBusinessDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// daysBetween counts calendar days from a to b. Both must come from Day.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
