/*
Package catalog holds the employee and plant catalog.

PURPOSE:
  Employees are identified by their full name, upper-cased. Every write goes
  through Normalize, so the catalog never holds "Juan Perez" and
  "JUAN PEREZ " as two people.

BULK IMPORT:
  Two CSV layouts are accepted (see csv.go):
  - internal: name, plant, hire_date, days_per_year, rest_day, company
  - master:   EMPRESA, ZONA, NOMBRE, PATERNO, MATERNO, INGRESO,
              DIA DE DESCANSO, DIAS CORRESPONDIENTES

SEE ALSO:
  - store/sqlite: Upsert keyed by name
  - vacation: Consumes employees as EmployeeRecord
*/
package catalog

import (
	"errors"
	"strings"

	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/vacation"
)

var (
	// ErrNameRequired is returned for an employee or plant without a name.
	ErrNameRequired = errors.New("name is required")

	// ErrPlantRequired is returned for an employee without a plant.
	ErrPlantRequired = errors.New("plant is required")

	// ErrInvalidHireDate is returned for a hire date that is not YYYY-MM-DD.
	ErrInvalidHireDate = errors.New("invalid hire date")
)

// Employee is a catalog entry.
type Employee struct {
	Name       string
	Plant      string // shown as "zona" in the UI
	HireDate   string // YYYY-MM-DD
	AnnualDays int
	RestDay    string // LUN..DOM or empty
	Company    string
}

// Normalize trims and upper-cases identity fields and defaults the allotment.
func (e Employee) Normalize() Employee {
	e.Name = NormalizeName(e.Name)
	e.Plant = NormalizeName(e.Plant)
	e.HireDate = strings.TrimSpace(e.HireDate)
	if e.AnnualDays <= 0 {
		e.AnnualDays = vacation.DefaultAnnualDays
	}
	e.RestDay = strings.ToUpper(strings.TrimSpace(e.RestDay))
	e.Company = strings.ToUpper(strings.TrimSpace(e.Company))
	return e
}

// Validate checks a normalized employee.
func (e Employee) Validate() error {
	if e.Name == "" {
		return ErrNameRequired
	}
	if e.Plant == "" {
		return ErrPlantRequired
	}
	if _, err := calendar.ParseDate(e.HireDate); err != nil {
		return errors.Join(ErrInvalidHireDate, err)
	}
	return nil
}

// Record converts the employee to the vacation engine's input.
func (e Employee) Record() vacation.EmployeeRecord {
	return vacation.EmployeeRecord{
		Name:       e.Name,
		Plant:      e.Plant,
		HireDate:   e.HireDate,
		AnnualDays: e.AnnualDays,
	}
}

// NormalizeName upper-cases and trims a name or plant.
func NormalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// =============================================================================
// REST DAYS
// =============================================================================

// RestDays are the accepted rest-day codes, Monday first.
var RestDays = []string{"LUN", "MAR", "MIE", "JUE", "VIE", "SAB", "DOM"}

var restDayAliases = map[string]string{
	"LUNES": "LUN", "MARTES": "MAR", "MIERCOLES": "MIE", "JUEVES": "JUE",
	"VIERNES": "VIE", "SABADO": "SAB", "DOMINGO": "DOM",
	"LUN": "LUN", "MAR": "MAR", "MIE": "MIE", "JUE": "JUE",
	"VIE": "VIE", "SAB": "SAB", "DOM": "DOM",
}

var accentReplacer = strings.NewReplacer("Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U")

// NormalizeRestDay maps "miércoles", "Sábado", "dom" and the like to their
// three-letter code. Unknown values map to "".
func NormalizeRestDay(raw string) string {
	s := accentReplacer.Replace(strings.ToUpper(strings.TrimSpace(raw)))
	return restDayAliases[s]
}
