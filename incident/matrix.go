package incident

import (
	"fmt"
	"sort"
	"strings"

	"github.com/warp/incidencias/calendar"
)

// =============================================================================
// WEEKLY MATRIX - employees x Monday..Sunday
// =============================================================================

// Week is the editable grid for one Monday-to-Sunday week.
type Week struct {
	Period calendar.Period
	Days   []calendar.Date
	Rows   []WeekRow
}

// WeekRow holds one employee's seven cells, Monday first. A cell is an
// incident type or EmptyCell.
type WeekRow struct {
	Employee string
	Cells    []string
}

// CellChange is one cell to persist. An EmptyCell (or "") type clears the day.
type CellChange struct {
	Employee string
	Date     calendar.Date
	Type     string
}

// Clears reports whether the change removes the day's incidents.
func (c CellChange) Clears() bool {
	return NormalizeCell(c.Type) == EmptyCell
}

// NormalizeCell upper-cases a cell value and maps blanks to EmptyCell.
func NormalizeCell(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return EmptyCell
	}
	return v
}

// CellOptions returns the values a matrix cell may take.
func CellOptions(types TypeSet) []string {
	return append([]string{EmptyCell}, types.Options()...)
}

// BuildWeek lays out the week containing ref for the given employees.
// When an employee has several incidents on one day the latest recorded
// one (highest ID) wins. Incidents of other employees or outside the week
// are ignored.
func BuildWeek(ref calendar.Date, employees []string, incidents []Incident) Week {
	period := calendar.WeekOf(ref)
	days := period.Days()

	dayIndex := make(map[string]int, len(days))
	for i, d := range days {
		dayIndex[d.String()] = i
	}

	rows := make([]WeekRow, len(employees))
	rowIndex := make(map[string]int, len(employees))
	for i, name := range employees {
		cells := make([]string, len(days))
		for j := range cells {
			cells[j] = EmptyCell
		}
		rows[i] = WeekRow{Employee: name, Cells: cells}
		rowIndex[name] = i
	}

	ordered := append([]Incident(nil), incidents...)
	sort.SliceStable(ordered, func(a, b int) bool { return ordered[a].ID < ordered[b].ID })

	for _, inc := range ordered {
		r, ok := rowIndex[inc.Employee]
		if !ok {
			continue
		}
		d, ok := dayIndex[inc.Date.String()]
		if !ok {
			continue
		}
		rows[r].Cells[d] = NormalizeCell(inc.Type)
	}

	return Week{Period: period, Days: days, Rows: rows}
}

// Changes flattens an edited week into one change per cell, the way the
// grid is saved: every cell of every row replaces its day.
func (w Week) Changes() []CellChange {
	out := make([]CellChange, 0, len(w.Rows)*len(w.Days))
	for _, row := range w.Rows {
		for j, d := range w.Days {
			if j >= len(row.Cells) {
				break
			}
			out = append(out, CellChange{Employee: row.Employee, Date: d, Type: NormalizeCell(row.Cells[j])})
		}
	}
	return out
}

// ValidateChanges rejects changes whose type is neither EmptyCell nor an
// allowed type, and changes outside the period.
func ValidateChanges(changes []CellChange, types TypeSet, period calendar.Period) error {
	for _, c := range changes {
		if strings.TrimSpace(c.Employee) == "" {
			return ErrEmployeeRequired
		}
		if !period.Contains(c.Date) {
			return fmt.Errorf("date %s is outside week %s", c.Date, period)
		}
		if c.Clears() {
			continue
		}
		if !types.Allows(c.Type) {
			return fmt.Errorf("%w: %q", ErrUnknownType, c.Type)
		}
	}
	return nil
}

// Recorded counts the changes that write an incident.
func Recorded(changes []CellChange) int {
	n := 0
	for _, c := range changes {
		if !c.Clears() {
			n++
		}
	}
	return n
}
