// Package dates provides the calendar-day key used to group activity
// snapshots and task schedules. A Day carries no time of day and no
// timezone; two days are equal iff year, month and day match.
package dates

import (
	"fmt"
	"math"
	"time"
)

// Layout is the persisted form of a Day.
const Layout = "2006-01-02"

type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

// Today returns the current day in local time.
func Today() Day {
	return FromTime(time.Now())
}

// FromTime truncates t to its local calendar day.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Dom: d}
}

// Parse reads a YYYY-MM-DD string.
func Parse(s string) (Day, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return FromTime(t), nil
}

func (d Day) String() string {
	return d.Time().Format(Layout)
}

// Time returns midnight local time on d. Used only for arithmetic;
// comparisons never go through this.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, time.Local)
}

// AddDays returns d shifted by n calendar days (n may be negative).
func (d Day) AddDays(n int) Day {
	return FromTime(d.Time().AddDate(0, 0, n))
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }
func (d Day) After(o Day) bool  { return d.Compare(o) > 0 }

// Compare orders two days: -1, 0 or +1.
func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Dom - o.Dom)
	}
}

// Sub returns the number of whole calendar days from o to d. Rounding
// absorbs DST transitions, where a calendar day is not 24 hours long.
func (d Day) Sub(o Day) int {
	return int(math.Round(d.Time().Sub(o.Time()).Hours() / 24))
}

// Weekday returns the day of week (Sunday = 0).
func (d Day) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// IsZero reports whether d is the zero value.
func (d Day) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Dom == 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
