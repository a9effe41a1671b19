package dates

import (
	"fmt"
	"time"
)

// Layout is the canonical wire/storage form of a Date.
const Layout = "2006-01-02"

// Date is a plain calendar date with no time-of-day and no zone.
// It is the bucket a completion is attributed to: computed once, at write
// time, from the owning user's timezone, and immutable thereafter.
//
// The zero Date is January 1, year 1.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New constructs a Date. Out-of-range components are normalized the same
// way time.Date normalizes them (e.g. February 30 becomes March 1 or 2).
func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Parse parses a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Time returns midnight UTC of the date. Used for arithmetic only; the
// result carries no bucket meaning.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Time().Format(Layout)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n calendar days after d (negative n goes back).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// DaysUntil returns the signed number of calendar days from d to other.
// Positive when other is later than d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()) / (24 * time.Hour))
}

// ISOWeekday returns the ISO-8601 weekday number: Monday=1 .. Sunday=7.
func (d Date) ISOWeekday() int {
	wd := int(d.Time().Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekStart returns the Monday of the ISO week containing d.
func (d Date) WeekStart() Date {
	return d.AddDays(1 - d.ISOWeekday())
}

// MarshalText implements encoding.TextMarshaler so Date serializes as
// YYYY-MM-DD in JSON and YAML.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
