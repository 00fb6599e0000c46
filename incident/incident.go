/*
Package incident models daily HR incidents: absences, late arrivals,
permits, sick leave and vacation days.

PURPOSE:
  One Incident is one employee on one day. Vacation days are incidents of
  type VACACIONES; the vacation engine counts them.

INCIDENT TYPES:
  The configurable list (TypeSet) is an explicit value loaded from the
  store and passed to every operation that validates or lists types.
  VACACIONES is always available on top of the configured list.

SEE ALSO:
  - matrix.go: Weekly employee x day grid
  - summary.go: Consolidated counts and top-N charts
  - store/sqlite: Persistence of incidents and the type list
*/
package incident

import (
	"errors"
	"fmt"
	"strings"

	"github.com/warp/incidencias/calendar"
)

// TypeVacation marks a vacation day.
const TypeVacation = "VACACIONES"

// EmptyCell is the matrix placeholder for "no incident".
const EmptyCell = "—"

// All is the filter value meaning "no filter".
const All = "TODAS"

// DefaultTypes is the type list of a fresh installation.
var DefaultTypes = []string{"FALTA", "RETARDO", "PERMISO", "INCAPACIDAD", "OTRO"}

var (
	// ErrEmployeeRequired is returned when capturing without an employee.
	ErrEmployeeRequired = errors.New("employee name is required")

	// ErrUnknownType is returned for a type outside the configured set.
	ErrUnknownType = errors.New("unknown incident type")

	// ErrEmptyTypes is returned when configuring an empty type list.
	ErrEmptyTypes = errors.New("at least one incident type is required")
)

// Incident is one recorded event for one employee on one day.
type Incident struct {
	ID       int64
	Date     calendar.Date
	Employee string
	Plant    string
	Type     string
	Hours    *float64
	Notes    string
	Company  string // joined from the employee catalog when listing
}

// Normalize trims text fields and upper-cases employee, plant and type so
// incidents join the catalog by name.
func (i Incident) Normalize() Incident {
	i.Employee = strings.ToUpper(strings.TrimSpace(i.Employee))
	i.Plant = strings.ToUpper(strings.TrimSpace(i.Plant))
	i.Type = strings.ToUpper(strings.TrimSpace(i.Type))
	i.Notes = strings.TrimSpace(i.Notes)
	return i
}

// Validate checks a normalized incident against the configured types.
func (i Incident) Validate(types TypeSet) error {
	if i.Employee == "" {
		return ErrEmployeeRequired
	}
	if i.Date.IsZero() {
		return fmt.Errorf("incident date is required")
	}
	if !types.Allows(i.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownType, i.Type)
	}
	return nil
}

// IsVacation reports whether the incident is a vacation day.
func (i Incident) IsVacation() bool {
	return i.Type == TypeVacation
}

// =============================================================================
// FILTER
// =============================================================================

// Filter narrows incident listings. Zero dates and empty or "TODAS"
// plant/company mean no restriction.
type Filter struct {
	From    calendar.Date
	To      calendar.Date
	Plant   string
	Company string
	Type    string
	Limit   int
}

// PlantFilter returns the plant to filter on, or "" for all.
func (f Filter) PlantFilter() string { return activeFilter(f.Plant) }

// CompanyFilter returns the company to filter on, or "" for all.
func (f Filter) CompanyFilter() string { return activeFilter(f.Company) }

// TypeFilter returns the type to filter on, or "" for all.
func (f Filter) TypeFilter() string { return activeFilter(f.Type) }

func activeFilter(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == All {
		return ""
	}
	return v
}

// =============================================================================
// TYPE SET
// =============================================================================

// TypeSet is the configured list of incident types, upper-cased, in order.
type TypeSet struct {
	types []string
}

// NewTypeSet normalizes and de-duplicates types. VACACIONES is dropped from
// the configured list since it is always offered.
func NewTypeSet(types []string) (TypeSet, error) {
	seen := make(map[string]bool, len(types))
	var out []string
	for _, t := range types {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || t == TypeVacation || t == EmptyCell || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return TypeSet{}, ErrEmptyTypes
	}
	return TypeSet{types: out}, nil
}

// DefaultTypeSet returns the built-in type list.
func DefaultTypeSet() TypeSet {
	ts, _ := NewTypeSet(DefaultTypes)
	return ts
}

// ParseTypes reads one type per line, as typed into a text area.
func ParseTypes(text string) (TypeSet, error) {
	return NewTypeSet(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

// Configured returns the configured types without VACACIONES.
func (ts TypeSet) Configured() []string {
	return append([]string(nil), ts.types...)
}

// Options returns the selectable types: configured ones plus VACACIONES.
func (ts TypeSet) Options() []string {
	return append(ts.Configured(), TypeVacation)
}

// Allows reports whether t may be captured.
func (ts TypeSet) Allows(t string) bool {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == TypeVacation {
		return true
	}
	for _, c := range ts.types {
		if c == t {
			return true
		}
	}
	return false
}

// String renders the set one type per line.
func (ts TypeSet) String() string {
	return strings.Join(ts.types, "\n")
}

// =============================================================================
// COLORS
// =============================================================================

var colors = map[string]string{
	"FALTA":       "#ffcccc",
	"RETARDO":     "#fff3cd",
	"PERMISO":     "#d1e7dd",
	"INCAPACIDAD": "#cfe2ff",
	TypeVacation:  "#e6ccff",
	"OTRO":        "#f0f0f0",
	EmptyCell:     "white",
}

// Color is the background color used for a type in grids. Unknown types
// and empty cells are white.
func Color(t string) string {
	if c, ok := colors[strings.ToUpper(strings.TrimSpace(t))]; ok {
		return c
	}
	return "white"
}
