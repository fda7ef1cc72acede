package calendar

import (
	"fmt"
	"time"
)

const isoLayout = "2006-01-02"

// Date is a calendar day in canonical ISO form (YYYY-MM-DD). It never
// carries a time of day; arithmetic happens on UTC midnight.
type Date string

// Parse validates s and returns it as a Date.
func Parse(s string) (Date, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return "", fmt.Errorf("calendar: invalid date %q: %w", s, err)
	}
	if t.Format(isoLayout) != s {
		return "", fmt.Errorf("calendar: non-canonical date %q", s)
	}
	return Date(s), nil
}

// MustParse is Parse for values known to be valid. Invalid input is a
// programming error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	return Date(t.Format(isoLayout))
}

// TodayIn is the calendar day of now as seen in loc.
func TodayIn(now time.Time, loc *time.Location) Date {
	return FromTime(now.In(loc))
}

// MinBookable is the first day a customer may pick. Same-day booking is
// not offered, so this is tomorrow in loc.
func MinBookable(now time.Time, loc *time.Location) Date {
	return TodayIn(now, loc).AddDays(1)
}

// Time returns d at UTC midnight.
func (d Date) Time() time.Time {
	t, err := time.Parse(isoLayout, string(d))
	if err != nil {
		panic(fmt.Sprintf("calendar: invalid date %q", string(d)))
	}
	return t
}

func (d Date) String() string { return string(d) }

// IsZero reports whether d is the empty date.
func (d Date) IsZero() bool { return d == "" }

func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddMonths moves n months and lands on the first of the resulting month.
func (d Date) AddMonths(n int) Date {
	t := d.Time()
	return FromTime(time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

func (d Date) StartOfMonth() Date {
	t := d.Time()
	return FromTime(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
}

func (d Date) EndOfMonth() Date {
	t := d.Time()
	return FromTime(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC))
}

// SameMonth reports whether d and other fall in the same calendar month.
func (d Date) SameMonth(other Date) bool {
	return d.StartOfMonth() == other.StartOfMonth()
}

// Compare returns -1, 0 or 1. Canonical ISO strings order lexically.
func (d Date) Compare(other Date) int {
	switch {
	case d == other:
		return 0
	case d < other:
		return -1
	default:
		return 1
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// MondayIndex is the column of d in a Monday-first week (Monday = 0).
func (d Date) MondayIndex() int {
	return (int(d.Weekday()) + 6) % 7
}

func (d Date) Day() int { return d.Time().Day() }
