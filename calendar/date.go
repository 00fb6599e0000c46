/*
Package calendar provides day-granularity dates and periods.

PURPOSE:
  Every record in the incident tracker is keyed by a calendar day: hire
  dates, vacation days, incidents. Date wraps time.Time, normalized to
  midnight UTC, so comparisons never trip over clock time or zones.

KEY CONCEPTS:
  Date:   A single calendar day
  Period: An inclusive [Start, End] range of days

PARSING:
  ParseDate accepts an ISO date, optionally followed by a time part
  ("2024-03-10", "2024-03-10T08:00:00", "2024-03-10 08:00:00").
  The time part is discarded.

SEE ALSO:
  - period.go: Periods and year/week windows
  - vacation/engine.go: Uses MonthsBetween for entitlement
*/
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// ISOLayout is the storage and wire format for dates.
const ISOLayout = "2006-01-02"

var parseLayouts = []string{
	ISOLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	time.RFC3339Nano,
}

// =============================================================================
// DATE
// =============================================================================

// Date is a calendar day. The zero value is not a valid day; check IsZero.
type Date struct {
	Time time.Time
}

// NewDate returns the given day at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar day, in t's own location.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current local day.
func Today() Date {
	return FromTime(time.Now())
}

// ParseDate parses an ISO date with an optional time suffix.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
}

// MustParseDate is ParseDate for literals. It panics on bad input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return FromTime(d.Time.AddDate(0, 0, n)) }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(ISOLayout)
}

// MarshalText encodes the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts anything ParseDate does. Empty input leaves the zero date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// MonthsBetween counts whole months from d1 to d2. A month only counts once
// d2's day-of-month reaches d1's. Negative when d2 is before d1.
func MonthsBetween(d1, d2 Date) int {
	months := (d2.Year()-d1.Year())*12 + int(d2.Month()) - int(d1.Month())
	if d2.Day() < d1.Day() {
		months--
	}
	return months
}

// DaysBetween returns the signed number of days from 'from' to 'to'.
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
