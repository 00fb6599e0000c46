package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/incidencias/calendar"
)

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		name   string
		from   string
		to     string
		expect int
	}{
		{"day of month not reached", "2024-01-15", "2024-03-10", 1},
		{"day of month passed", "2024-01-15", "2024-03-20", 2},
		{"same day of month", "2024-01-15", "2024-03-15", 2},
		{"same day", "2024-05-01", "2024-05-01", 0},
		{"across years", "2023-11-30", "2024-02-29", 2},
		{"inverted", "2024-03-20", "2024-01-15", -3},
		{"full year", "2024-01-01", "2024-12-31", 11},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := calendar.MonthsBetween(calendar.MustParseDate(tc.from), calendar.MustParseDate(tc.to))
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestParseDate_AcceptsTimeSuffix(t *testing.T) {
	for _, s := range []string{"2024-03-10", "2024-03-10T08:30:00", "2024-03-10 08:30:00", " 2024-03-10 "} {
		d, err := calendar.ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, "2024-03-10", d.String())
	}
}

func TestParseDate_Rejects(t *testing.T) {
	for _, s := range []string{"", "10/03/2024", "2024-13-01", "not a date"} {
		_, err := calendar.ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestYearPeriods(t *testing.T) {
	ref := calendar.NewDate(2025, time.June, 14)

	cy := calendar.CurrentYearPeriod(ref)
	assert.Equal(t, "[2025-01-01, 2025-12-31]", cy.String())

	py := calendar.PreviousYearPeriod(ref)
	assert.Equal(t, "[2024-01-01, 2024-12-31]", py.String())
	assert.True(t, py.Contains(calendar.NewDate(2024, time.February, 29)))
	assert.False(t, py.Contains(calendar.NewDate(2025, time.January, 1)))
}

func TestPeriod_IsValid(t *testing.T) {
	day := calendar.MustParseDate("2025-03-10")
	assert.True(t, calendar.Period{Start: day, End: day}.IsValid(), "single day")
	assert.True(t, calendar.Period{Start: day, End: day.AddDays(1)}.IsValid())
	assert.False(t, calendar.Period{Start: day, End: day.AddDays(-1)}.IsValid())
}

func TestWeekOf_StartsMonday(t *testing.T) {
	// 2025-03-16 is a Sunday
	week := calendar.WeekOf(calendar.NewDate(2025, time.March, 16))
	assert.Equal(t, "2025-03-10", week.Start.String())
	assert.Equal(t, "2025-03-16", week.End.String())
	assert.Len(t, week.Days(), 7)
	assert.Equal(t, time.Monday, week.Start.Weekday())

	same := calendar.WeekOf(calendar.NewDate(2025, time.March, 10))
	assert.Equal(t, week, same)
}

func TestDaysBetween(t *testing.T) {
	end := calendar.NewDate(2024, time.December, 31)
	assert.Equal(t, 365, calendar.DaysBetween(end, end.AddDays(365)))
	assert.Equal(t, -10, calendar.DaysBetween(end, end.AddDays(-10)))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		At calendar.Date `json:"at"`
	}
	b, err := json.Marshal(wrapper{At: calendar.NewDate(2024, time.July, 4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2024-07-04"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2024-07-04T00:00:00"}`), &w))
	assert.Equal(t, calendar.NewDate(2024, time.July, 4), w.At)
}
