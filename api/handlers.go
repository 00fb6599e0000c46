/*
handlers.go - HTTP API handlers for the incident service

PURPOSE:
  Exposes the catalog, incident capture, weekly matrix, consolidated
  export and vacation reports via a JSON API. Handles HTTP request and
  response, and delegates to the store and the vacation engine.

ENDPOINTS:
  Catalog:
    GET    /api/plants                      List plants
    POST   /api/plants                      Add plant
    GET    /api/zones                       Distinct employee plants
    GET    /api/companies                   Distinct employee companies
    GET    /api/employees                   List employees (?plant&company)
    GET    /api/employees/{name}            Employee detail
    POST   /api/employees                   Upsert employee
    POST   /api/employees/import            CSV bulk import (?format&dry_run)

  Incidents:
    GET    /api/incident-types              Configured types and colors
    PUT    /api/incident-types              Replace configured types
    POST   /api/incidents                   Capture one incident
    GET    /api/incidents                   List (?from&to&plant&company&type&limit)
    GET    /api/matrix/week                 Weekly grid (?date&plant&company)
    PUT    /api/matrix/week                 Save weekly grid

  Reports:
    GET    /api/consolidated                Data + summary (PIN)
    GET    /api/consolidated/export         xlsx download (PIN)
    GET    /api/charts/top                  Top employees by type
    GET    /api/vacations                   Annual vacation report (?date)
    GET    /api/vacations/monthly           Anniversary month view (?month&date)
    GET    /api/vacations/alerts            Rows with an expiry alert
    GET    /api/vacations/export            CSV or xlsx (?date&month&format)
    GET    /api/settings                    Active configuration

QUERY CONVENTIONS:
  Dates are YYYY-MM-DD. Plant and company filters accept TODAS or empty
  for "all".

ERROR HANDLING:
  Errors are returned as JSON {"error", "details"}:
  - 400: Validation errors, invalid input
  - 401: Missing or wrong admin PIN
  - 404: Employee not found
  - 422: Strict vacation report with malformed employee records
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - watcher.go: Background expiry alerts
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/catalog"
	"github.com/warp/incidencias/config"
	"github.com/warp/incidencias/export"
	"github.com/warp/incidencias/incident"
	"github.com/warp/incidencias/logging"
	"github.com/warp/incidencias/store/sqlite"
	"github.com/warp/incidencias/vacation"
)

// DefaultTopLimit is the size of the ranking chart.
const DefaultTopLimit = 10

// maxImportSize caps CSV uploads.
const maxImportSize = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Vacations *vacation.Service
	Config    config.Config
	Log       logrus.FieldLogger

	// Today returns the reference date for requests that omit one.
	Today func() calendar.Date
}

// NewHandler creates a handler over the store with the given settings.
func NewHandler(store *sqlite.Store, cfg config.Config, log logrus.FieldLogger) *Handler {
	return &Handler{
		Store:     store,
		Vacations: vacation.NewService(store, cfg.VacationPolicy()),
		Config:    cfg,
		Log:       log,
		Today:     calendar.Today,
	}
}

// =============================================================================
// PLANT HANDLERS
// =============================================================================

// ListPlants returns the plant catalog.
func (h *Handler) ListPlants(w http.ResponseWriter, r *http.Request) {
	plants, err := h.Store.ListPlants(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list plants", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(plants))
}

// CreatePlant adds a plant; an existing name is a no-op.
func (h *Handler) CreatePlant(w http.ResponseWriter, r *http.Request) {
	var req CreatePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Store.AddPlant(r.Context(), req.Name); err != nil {
		h.writeStoreError(w, "Failed to add plant", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": catalog.NormalizeName(req.Name)})
}

// ListZones returns the plants employees are assigned to.
func (h *Handler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.Store.ListZones(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list zones", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(zones))
}

// ListCompanies returns the companies employees belong to.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.ListCompanies(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list companies", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(companies))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns employees, optionally filtered by plant and company.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employees, err := h.Store.ListEmployees(r.Context(), sqlite.EmployeeFilter{
		Plant:   q.Get("plant"),
		Company: q.Get("company"),
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee by name.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid employee name", err)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), name)
	if err != nil {
		h.writeStoreError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// UpsertEmployee creates or updates an employee keyed by name.
func (h *Handler) UpsertEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp := req.toEmployee().Normalize()
	if err := emp.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	if err := h.Store.UpsertEmployee(r.Context(), emp); err != nil {
		h.writeStoreError(w, "Failed to save employee", err)
		return
	}

	h.Log.WithField(logging.FieldEmployee, emp.Name).Info("Employee saved")
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// ImportEmployees bulk-loads employees from a CSV body or a multipart
// "file" field. With dry_run=true nothing is written and the parsed
// employees are echoed back.
func (h *Handler) ImportEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := catalog.ParseFormat(q.Get("format"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid import format", err)
		return
	}
	dryRun, _ := strconv.ParseBool(q.Get("dry_run"))

	body, closeBody, err := importBody(w, r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Missing CSV upload", err)
		return
	}
	defer closeBody()

	res, err := catalog.ParseCSV(body, format)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read CSV", err)
		return
	}

	resp := ImportResponse{
		Format:   string(format),
		DryRun:   dryRun,
		Imported: len(res.Employees),
		Skipped:  make([]RowIssueDTO, len(res.Skipped)),
	}
	for i, s := range res.Skipped {
		resp.Skipped[i] = RowIssueDTO{Row: s.Row, Reason: s.Reason}
		h.Log.WithFields(logrus.Fields{
			logging.FieldFormat: format,
			logging.FieldReason: s.Reason,
			"row":               s.Row,
		}).Warn("Import row skipped")
	}

	if dryRun {
		resp.Employees = make([]EmployeeDTO, len(res.Employees))
		for i, e := range res.Employees {
			resp.Employees[i] = toEmployeeDTO(e)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if err := h.Store.UpsertEmployees(r.Context(), res.Employees); err != nil {
		h.writeStoreError(w, "Failed to import employees", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		logging.FieldFormat: format,
		logging.FieldCount:  len(res.Employees),
		"skipped":           len(res.Skipped),
	}).Info("Employees imported")
	writeJSON(w, http.StatusOK, resp)
}

func importBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}

// =============================================================================
// INCIDENT HANDLERS
// =============================================================================

// GetIncidentTypes returns the configured types, options and colors.
func (h *Handler) GetIncidentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.IncidentTypes(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load incident types", err)
		return
	}
	writeJSON(w, http.StatusOK, toIncidentTypesDTO(types))
}

// UpdateIncidentTypes replaces the configured incident types.
func (h *Handler) UpdateIncidentTypes(w http.ResponseWriter, r *http.Request) {
	var req UpdateIncidentTypesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		types incident.TypeSet
		err   error
	)
	if len(req.Types) > 0 {
		types, err = incident.NewTypeSet(req.Types)
	} else {
		types, err = incident.ParseTypes(req.Text)
	}
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid incident types", err)
		return
	}

	if err := h.Store.SaveIncidentTypes(r.Context(), types); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save incident types", err)
		return
	}
	h.Log.WithField(logging.FieldCount, len(types.Configured())).Info("Incident types updated")
	writeJSON(w, http.StatusOK, toIncidentTypesDTO(types))
}

// CreateIncident captures one incident.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day := h.Today()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := calendar.ParseDate(req.Date)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		day = parsed
	}

	types, err := h.Store.IncidentTypes(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load incident types", err)
		return
	}

	inc := incident.Incident{
		Date:     day,
		Employee: req.Employee,
		Plant:    req.Plant,
		Type:     req.Type,
		Hours:    req.Hours,
		Notes:    req.Notes,
	}.Normalize()
	if err := inc.Validate(types); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid incident", err)
		return
	}

	id, err := h.Store.InsertIncident(r.Context(), inc)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save incident", err)
		return
	}
	inc.ID = id

	h.Log.WithFields(logrus.Fields{
		logging.FieldEmployee: inc.Employee,
		logging.FieldPlant:    inc.Plant,
		"type":                inc.Type,
	}).Info("Incident captured")
	writeJSON(w, http.StatusCreated, toIncidentDTOs([]incident.Incident{inc})[0])
}

// ListIncidents lists incidents. Without filters it returns the latest
// captures.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	f, err := incidentFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	if f.Limit == 0 {
		f.Limit = sqlite.RecentLimit
	}

	incs, err := h.Store.ListIncidents(r.Context(), f)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list incidents", err)
		return
	}
	writeJSON(w, http.StatusOK, toIncidentDTOs(incs))
}

// =============================================================================
// WEEKLY MATRIX HANDLERS
// =============================================================================

// GetWeek returns the Monday-to-Sunday grid containing ?date (default today)
// for the employees matching ?plant and ?company.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ref, err := h.dateParam(r, "date")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	q := r.URL.Query()
	names, err := h.Store.EmployeeNames(ctx, sqlite.EmployeeFilter{Plant: q.Get("plant"), Company: q.Get("company")})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	types, err := h.Store.IncidentTypes(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load incident types", err)
		return
	}
	incs, err := h.Store.IncidentsInPeriod(ctx, calendar.WeekOf(ref))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load incidents", err)
		return
	}

	writeJSON(w, http.StatusOK, toWeekDTO(incident.BuildWeek(ref, names, incs), types))
}

// SaveWeek replaces every day of every submitted row.
func (h *Handler) SaveWeek(w http.ResponseWriter, r *http.Request) {
	var req SaveWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ref := h.Today()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := calendar.ParseDate(req.Date)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		ref = parsed
	}

	names := make([]string, len(req.Rows))
	for i, row := range req.Rows {
		names[i] = catalog.NormalizeName(row.Employee)
	}
	week := incident.BuildWeek(ref, names, nil)
	for i, row := range req.Rows {
		if len(row.Cells) != len(week.Days) {
			h.writeError(w, http.StatusBadRequest, "Invalid row",
				fmt.Errorf("row %q has %d cells, want %d", row.Employee, len(row.Cells), len(week.Days)))
			return
		}
		copy(week.Rows[i].Cells, row.Cells)
	}

	ctx := r.Context()
	types, err := h.Store.IncidentTypes(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load incident types", err)
		return
	}
	changes := week.Changes()
	if err := incident.ValidateChanges(changes, types, week.Period); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid week", err)
		return
	}

	n, err := h.Store.SaveWeek(ctx, changes)
	if err != nil {
		h.writeStoreError(w, "Failed to save week", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		logging.FieldPeriod: week.Period.String(),
		logging.FieldCount:  n,
	}).Info("Weekly matrix saved")
	writeJSON(w, http.StatusOK, SaveWeekResponse{Recorded: n})
}

// =============================================================================
// CONSOLIDATED AND CHART HANDLERS
// =============================================================================

// GetConsolidated returns incidents in range (default month to date) and
// their company/plant/type summary.
func (h *Handler) GetConsolidated(w http.ResponseWriter, r *http.Request) {
	f, err := h.rangeFilter(r, calendar.MonthToDate(h.Today()))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	incs, err := h.Store.ListIncidents(r.Context(), f)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list incidents", err)
		return
	}

	writeJSON(w, http.StatusOK, ConsolidatedResponse{
		From:    f.From.String(),
		To:      f.To.String(),
		Data:    toIncidentDTOs(incs),
		Summary: toSummaryDTOs(incident.Summarize(incs)),
	})
}

// ExportConsolidated downloads the consolidated view as xlsx.
func (h *Handler) ExportConsolidated(w http.ResponseWriter, r *http.Request) {
	f, err := h.rangeFilter(r, calendar.MonthToDate(h.Today()))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	incs, err := h.Store.ListIncidents(r.Context(), f)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list incidents", err)
		return
	}

	w.Header().Set("Content-Type", export.XLSXContentType)
	w.Header().Set("Content-Disposition", attachment(export.ConsolidatedFileName(h.Today())))
	if err := export.WriteConsolidated(w, incs, incident.Summarize(incs)); err != nil {
		h.Log.WithError(err).Error("Failed to write consolidated workbook")
	}
}

// TopChart ranks employees by incident count of ?type (default FALTA) in
// range (default year to date).
func (h *Handler) TopChart(w http.ResponseWriter, r *http.Request) {
	f, err := h.rangeFilter(r, calendar.YearToDate(h.Today()))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	typ := f.TypeFilter()
	if typ == "" {
		typ = "FALTA"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	f.Type, f.Limit = "", 0

	incs, err := h.Store.ListIncidents(r.Context(), f)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list incidents", err)
		return
	}

	writeJSON(w, http.StatusOK, TopChartResponse{
		Type: typ,
		From: f.From.String(),
		To:   f.To.String(),
		Bars: incident.TopByType(incs, typ, limit),
	})
}

// =============================================================================
// VACATION HANDLERS
// =============================================================================

// GetVacations returns the annual vacation report at ?date (default today).
func (h *Handler) GetVacations(w http.ResponseWriter, r *http.Request) {
	ref, err := h.dateParam(r, "date")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	report, err := h.Vacations.AnnualReport(r.Context(), ref)
	h.writeReport(w, report, 0, err)
}

// GetMonthlyVacations returns the rows whose hire anniversary is ?month.
func (h *Handler) GetMonthlyVacations(w http.ResponseWriter, r *http.Request) {
	ref, err := h.dateParam(r, "date")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid month", vacation.ErrInvalidMonth)
		return
	}
	report, err := h.Vacations.MonthlyView(r.Context(), ref, month)
	h.writeReport(w, report, month, err)
}

// GetVacationAlerts returns only the rows with an expiry alert.
func (h *Handler) GetVacationAlerts(w http.ResponseWriter, r *http.Request) {
	ref, err := h.dateParam(r, "date")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	report, err := h.Vacations.AnnualReport(r.Context(), ref)
	report.Rows = report.Alerts()
	h.writeReport(w, report, 0, err)
}

// ExportVacations downloads the report (or one month of it) as CSV, or as
// xlsx with format=xlsx.
func (h *Handler) ExportVacations(w http.ResponseWriter, r *http.Request) {
	ref, err := h.dateParam(r, "date")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	q := r.URL.Query()
	var report vacation.Report
	if m := q.Get("month"); m != "" {
		month, convErr := strconv.Atoi(m)
		if convErr != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid month", vacation.ErrInvalidMonth)
			return
		}
		report, err = h.Vacations.MonthlyView(ctx, ref, month)
	} else {
		report, err = h.Vacations.AnnualReport(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, vacation.ErrMalformedRecord) {
			h.writeReport(w, report, 0, err)
			return
		}
		h.writeVacationError(w, err)
		return
	}

	if strings.EqualFold(q.Get("format"), "xlsx") {
		w.Header().Set("Content-Type", export.XLSXContentType)
		w.Header().Set("Content-Disposition", attachment(export.VacationFileName(ref, "xlsx")))
		if err := export.WriteVacationWorkbook(w, report.Rows); err != nil {
			h.Log.WithError(err).Error("Failed to write vacation workbook")
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(export.VacationFileName(ref, "csv")))
	if err := export.WriteVacationCSV(w, report.Rows); err != nil {
		h.Log.WithError(err).Error("Failed to write vacation CSV")
	}
}

// writeReport renders a report. A strict-mode malformed-record error still
// carries the rows, with status 422.
func (h *Handler) writeReport(w http.ResponseWriter, report vacation.Report, month int, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, toVacationReport(report, month))
		return
	}
	if errors.Is(err, vacation.ErrMalformedRecord) {
		resp := toVacationReport(report, month)
		resp.Error = err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	h.writeVacationError(w, err)
}

func (h *Handler) writeVacationError(w http.ResponseWriter, err error) {
	if errors.Is(err, vacation.ErrInvalidMonth) {
		h.writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	h.writeError(w, http.StatusInternalServerError, "Failed to compute vacation report", err)
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings shows the active configuration.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SettingsDTO{
		DBPath:               h.Config.DBPath,
		SeedsPath:            h.Config.SeedsPath,
		PINEnabled:           h.Config.PINEnabled(),
		VacationStrict:       h.Config.VacationStrict,
		VacationExpiredState: h.Config.VacationExpiredState,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	if status >= http.StatusInternalServerError {
		h.Log.WithError(err).Error(message)
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps store and validation errors to a status.
func (h *Handler) writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, sqlite.ErrEmployeeNotFound):
		h.writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, catalog.ErrPlantRequired),
		errors.Is(err, catalog.ErrInvalidHireDate),
		errors.Is(err, incident.ErrUnknownType),
		errors.Is(err, incident.ErrEmployeeRequired):
		h.writeError(w, http.StatusBadRequest, message, err)
	default:
		h.writeError(w, http.StatusInternalServerError, message, err)
	}
}

// dateParam reads a YYYY-MM-DD query parameter, defaulting to today.
func (h *Handler) dateParam(r *http.Request, key string) (calendar.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return h.Today(), nil
	}
	return calendar.ParseDate(v)
}

// rangeFilter reads an incident filter whose missing bounds come from def.
func (h *Handler) rangeFilter(r *http.Request, def calendar.Period) (incident.Filter, error) {
	f, err := incidentFilter(r)
	if err != nil {
		return f, err
	}
	if f.From.IsZero() {
		f.From = def.Start
	}
	if f.To.IsZero() {
		f.To = def.End
	}
	if p := (calendar.Period{Start: f.From, End: f.To}); !p.IsValid() {
		return f, fmt.Errorf("invalid range %s", p)
	}
	return f, nil
}

func incidentFilter(r *http.Request) (incident.Filter, error) {
	q := r.URL.Query()
	f := incident.Filter{
		Plant:   q.Get("plant"),
		Company: q.Get("company"),
		Type:    q.Get("type"),
	}

	var err error
	if v := q.Get("from"); v != "" {
		if f.From, err = calendar.ParseDate(v); err != nil {
			return f, fmt.Errorf("invalid from: %w", err)
		}
	}
	if v := q.Get("to"); v != "" {
		if f.To, err = calendar.ParseDate(v); err != nil {
			return f, fmt.Errorf("invalid to: %w", err)
		}
	}
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil || f.Limit < 0 {
			return f, fmt.Errorf("invalid limit %q", v)
		}
	}
	return f, nil
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
