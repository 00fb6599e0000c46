/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  catalog, incident and vacation models from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

AMOUNTS:
  Vacation amounts are decimal strings with two places ("8.17"), never
  floats, so clients display exactly what the engine computed.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/incidencias/catalog"
	"github.com/warp/incidencias/incident"
	"github.com/warp/incidencias/vacation"
)

// =============================================================================
// CATALOG
// =============================================================================

// EmployeeDTO represents an employee in API responses and upserts.
type EmployeeDTO struct {
	Name       string `json:"name"`
	Plant      string `json:"plant"`
	HireDate   string `json:"hire_date"`
	AnnualDays int    `json:"days_per_year"`
	RestDay    string `json:"rest_day,omitempty"`
	Company    string `json:"company,omitempty"`
}

func toEmployeeDTO(e catalog.Employee) EmployeeDTO {
	return EmployeeDTO{
		Name:       e.Name,
		Plant:      e.Plant,
		HireDate:   e.HireDate,
		AnnualDays: e.AnnualDays,
		RestDay:    e.RestDay,
		Company:    e.Company,
	}
}

func (d EmployeeDTO) toEmployee() catalog.Employee {
	return catalog.Employee{
		Name:       d.Name,
		Plant:      d.Plant,
		HireDate:   d.HireDate,
		AnnualDays: d.AnnualDays,
		RestDay:    d.RestDay,
		Company:    d.Company,
	}
}

// CreatePlantRequest adds a plant.
type CreatePlantRequest struct {
	Name string `json:"name"`
}

// ImportResponse reports a bulk import.
type ImportResponse struct {
	Format    string        `json:"format"`
	DryRun    bool          `json:"dry_run"`
	Imported  int           `json:"imported"`
	Skipped   []RowIssueDTO `json:"skipped"`
	Employees []EmployeeDTO `json:"employees,omitempty"`
}

// RowIssueDTO is one CSV row left out of an import.
type RowIssueDTO struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// =============================================================================
// INCIDENTS
// =============================================================================

// IncidentDTO represents an incident in API responses.
type IncidentDTO struct {
	ID       int64    `json:"id"`
	Date     string   `json:"date"`
	Employee string   `json:"employee"`
	Plant    string   `json:"plant"`
	Type     string   `json:"type"`
	Hours    *float64 `json:"hours,omitempty"`
	Notes    string   `json:"notes,omitempty"`
	Company  string   `json:"company"`
}

func toIncidentDTOs(incs []incident.Incident) []IncidentDTO {
	out := make([]IncidentDTO, len(incs))
	for i, inc := range incs {
		out[i] = IncidentDTO{
			ID:       inc.ID,
			Date:     inc.Date.String(),
			Employee: inc.Employee,
			Plant:    inc.Plant,
			Type:     inc.Type,
			Hours:    inc.Hours,
			Notes:    inc.Notes,
			Company:  inc.Company,
		}
	}
	return out
}

// CreateIncidentRequest captures one incident. Date defaults to today.
type CreateIncidentRequest struct {
	Date     string   `json:"date"`
	Employee string   `json:"employee"`
	Plant    string   `json:"plant"`
	Type     string   `json:"type"`
	Hours    *float64 `json:"hours,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// IncidentTypesDTO lists configured types, selectable options and colors.
type IncidentTypesDTO struct {
	Types   []string          `json:"types"`
	Options []string          `json:"options"`
	Colors  map[string]string `json:"colors"`
}

func toIncidentTypesDTO(ts incident.TypeSet) IncidentTypesDTO {
	colors := make(map[string]string)
	for _, t := range incident.CellOptions(ts) {
		colors[t] = incident.Color(t)
	}
	return IncidentTypesDTO{Types: ts.Configured(), Options: ts.Options(), Colors: colors}
}

// UpdateIncidentTypesRequest replaces the configured types. Either a list
// or one-per-line text is accepted.
type UpdateIncidentTypesRequest struct {
	Types []string `json:"types"`
	Text  string   `json:"text"`
}

// =============================================================================
// WEEKLY MATRIX
// =============================================================================

// WeekDTO is the weekly grid.
type WeekDTO struct {
	Start   string       `json:"start"`
	End     string       `json:"end"`
	Days    []string     `json:"days"`
	Options []string     `json:"options"`
	Rows    []WeekRowDTO `json:"rows"`
}

// WeekRowDTO is one employee's cells, Monday first.
type WeekRowDTO struct {
	Employee string   `json:"employee"`
	Cells    []string `json:"cells"`
	Colors   []string `json:"colors,omitempty"`
}

func toWeekDTO(w incident.Week, types incident.TypeSet) WeekDTO {
	days := make([]string, len(w.Days))
	for i, d := range w.Days {
		days[i] = d.String()
	}
	rows := make([]WeekRowDTO, len(w.Rows))
	for i, r := range w.Rows {
		colors := make([]string, len(r.Cells))
		for j, c := range r.Cells {
			colors[j] = incident.Color(c)
		}
		rows[i] = WeekRowDTO{Employee: r.Employee, Cells: r.Cells, Colors: colors}
	}
	return WeekDTO{
		Start:   w.Period.Start.String(),
		End:     w.Period.End.String(),
		Days:    days,
		Options: incident.CellOptions(types),
		Rows:    rows,
	}
}

// SaveWeekRequest saves an edited grid. Date is any day of the week.
type SaveWeekRequest struct {
	Date string       `json:"date"`
	Rows []WeekRowDTO `json:"rows"`
}

// SaveWeekResponse reports how many incidents the grid recorded.
type SaveWeekResponse struct {
	Recorded int `json:"recorded"`
}

// =============================================================================
// CONSOLIDATED AND CHARTS
// =============================================================================

// SummaryRowDTO counts incidents per company, plant and type.
type SummaryRowDTO struct {
	Company string `json:"company"`
	Plant   string `json:"plant"`
	Type    string `json:"type"`
	Count   int    `json:"count"`
}

// ConsolidatedResponse is the consolidated view.
type ConsolidatedResponse struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Data    []IncidentDTO   `json:"data"`
	Summary []SummaryRowDTO `json:"summary"`
}

func toSummaryDTOs(rows []incident.SummaryRow) []SummaryRowDTO {
	out := make([]SummaryRowDTO, len(rows))
	for i, r := range rows {
		out[i] = SummaryRowDTO{Company: r.Company, Plant: r.Plant, Type: r.Type, Count: r.Count}
	}
	return out
}

// TopChartResponse ranks employees by incident count.
type TopChartResponse struct {
	Type string                   `json:"type"`
	From string                   `json:"from"`
	To   string                   `json:"to"`
	Bars []incident.EmployeeCount `json:"bars"`
}

// =============================================================================
// VACATIONS
// =============================================================================

// VacationStatusDTO is one employee's balance.
type VacationStatusDTO struct {
	Name               string `json:"name"`
	Plant              string `json:"plant"`
	HireDate           string `json:"hire_date"`
	AnnualDays         int    `json:"days_per_year"`
	MonthsWorked       int    `json:"months_worked"`
	CurrentEntitlement string `json:"current_entitlement"`
	CurrentTaken       int    `json:"current_taken"`
	CurrentRemaining   string `json:"current_remaining"`
	PriorEntitlement   string `json:"prior_entitlement"`
	PriorTaken         int    `json:"prior_taken"`
	PriorRemaining     string `json:"prior_remaining"`
	PriorExpiry        string `json:"prior_expiry"`
	DaysToExpiry       int    `json:"days_to_expiry"`
	Alert              bool   `json:"alert"`
	ExpiryState        string `json:"expiry_state"`
	Highlight          string `json:"highlight,omitempty"`
}

// SkippedRecordDTO is an employee the report could not evaluate.
type SkippedRecordDTO struct {
	Employee string `json:"employee"`
	Field    string `json:"field"`
	Value    string `json:"value"`
	Reason   string `json:"reason"`
}

// VacationReportResponse is the annual or monthly vacation report.
type VacationReportResponse struct {
	ReferenceDate string              `json:"reference_date"`
	Month         int                 `json:"month,omitempty"`
	Rows          []VacationStatusDTO `json:"rows"`
	Alerts        int                 `json:"alerts"`
	Skipped       []SkippedRecordDTO  `json:"skipped"`
	Error         string              `json:"error,omitempty"`
}

func toVacationReport(r vacation.Report, month int) VacationReportResponse {
	rows := make([]VacationStatusDTO, len(r.Rows))
	for i, s := range r.Rows {
		rows[i] = VacationStatusDTO{
			Name:               s.Name,
			Plant:              s.Plant,
			HireDate:           s.HireDate.String(),
			AnnualDays:         s.AnnualDays,
			MonthsWorked:       s.MonthsWorked,
			CurrentEntitlement: s.CurrentEntitlement.StringFixed(2),
			CurrentTaken:       s.CurrentTaken,
			CurrentRemaining:   s.CurrentRemaining.StringFixed(2),
			PriorEntitlement:   s.PriorEntitlement.StringFixed(2),
			PriorTaken:         s.PriorTaken,
			PriorRemaining:     s.PriorRemaining.StringFixed(2),
			PriorExpiry:        s.PriorExpiry.String(),
			DaysToExpiry:       s.DaysToExpiry,
			Alert:              s.Alert,
			ExpiryState:        string(s.ExpiryState),
			Highlight:          s.Highlight(),
		}
	}
	skipped := make([]SkippedRecordDTO, len(r.Skipped))
	for i, e := range r.Skipped {
		skipped[i] = SkippedRecordDTO{Employee: e.Employee, Field: e.Field, Value: e.Value, Reason: e.Error()}
	}
	return VacationReportResponse{
		ReferenceDate: r.ReferenceDate.String(),
		Month:         month,
		Rows:          rows,
		Alerts:        len(r.Alerts()),
		Skipped:       skipped,
	}
}

// =============================================================================
// SETTINGS AND ERRORS
// =============================================================================

// SettingsDTO shows the active configuration. The PIN itself is never
// returned.
type SettingsDTO struct {
	DBPath               string `json:"db_path"`
	SeedsPath            string `json:"seeds_path"`
	PINEnabled           bool   `json:"pin_enabled"`
	VacationStrict       bool   `json:"vacation_strict"`
	VacationExpiredState bool   `json:"vacation_expired_state"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
