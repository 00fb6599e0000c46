package calendar

import "time"

// =============================================================================
// PERIOD - An inclusive range of days
// =============================================================================

// Period is the window within which days are counted or months measured.
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - Week of 2025-03-12: Mon Mar 10 - Sun Mar 16
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// IsValid reports whether End is not before Start.
func (p Period) IsValid() bool {
	return !p.End.Before(p.Start)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WINDOWS
// =============================================================================

// Year returns [Jan 1, Dec 31] of the given year.
func Year(year int) Period {
	return Period{
		Start: NewDate(year, time.January, 1),
		End:   NewDate(year, time.December, 31),
	}
}

// CurrentYearPeriod returns the calendar year containing ref.
func CurrentYearPeriod(ref Date) Period {
	return Year(ref.Year())
}

// PreviousYearPeriod returns the calendar year before ref's.
func PreviousYearPeriod(ref Date) Period {
	return Year(ref.Year() - 1)
}

// WeekOf returns the Monday-to-Sunday week containing ref.
func WeekOf(ref Date) Period {
	// time.Weekday starts on Sunday; shift so Monday = 0.
	offset := (int(ref.Weekday()) + 6) % 7
	start := ref.AddDays(-offset)
	return Period{Start: start, End: start.AddDays(6)}
}

// MonthToDate returns [first of ref's month, ref].
func MonthToDate(ref Date) Period {
	return Period{Start: NewDate(ref.Year(), ref.Month(), 1), End: ref}
}

// YearToDate returns [Jan 1 of ref's year, ref].
func YearToDate(ref Date) Period {
	return Period{Start: NewDate(ref.Year(), time.January, 1), End: ref}
}
