/*
handlers_test.go - Tests for API handlers

Tests for:
- Catalog: plants, employee upsert, import (dry run and real)
- Incident capture and listing
- Weekly matrix round trip
- Consolidated view behind the admin PIN
- Vacation reports, strict mode and exports
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/catalog"
	"github.com/warp/incidencias/config"
	"github.com/warp/incidencias/export"
	"github.com/warp/incidencias/incident"
	"github.com/warp/incidencias/logging"
	"github.com/warp/incidencias/store/sqlite"
	"github.com/warp/incidencias/vacation"
	"github.com/xuri/excelize/v2"
)

type testServer struct {
	store   *sqlite.Store
	handler *Handler
	router  http.Handler
}

func newTestServer(t *testing.T, cfg config.Config) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, cfg, logging.Discard())
	h.Today = func() calendar.Date { return calendar.MustParseDate("2025-12-01") }
	return &testServer{store: store, handler: h, router: NewRouter(h, nil)}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ts.store.UpsertEmployees(ctx, []catalog.Employee{
		{Name: "ANA", Plant: "NORTE", HireDate: "2020-01-15", Company: "ACME"},
		{Name: "BETO", Plant: "SUR", HireDate: "2024-07-01", Company: "GLOBEX"},
	}))
	for _, day := range []string{"2024-06-03", "2024-06-04"} {
		_, err := ts.store.InsertIncident(ctx, incident.Incident{
			Date: calendar.MustParseDate(day), Employee: "ANA", Plant: "NORTE", Type: incident.TypeVacation,
		})
		require.NoError(t, err)
	}
}

// =============================================================================
// CATALOG
// =============================================================================

func TestPlants_CreateAndList(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(t, http.MethodPost, "/api/plants", CreatePlantRequest{Name: " norte "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/plants", CreatePlantRequest{Name: " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/plants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"NORTE"}, decode[[]string](t, rec))
}

func TestEmployees_UpsertGetAndFilter(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.seed(t)

	rec := ts.do(t, http.MethodPost, "/api/employees", EmployeeDTO{
		Name: " carla ruiz ", Plant: "norte", HireDate: "2023-03-01", AnnualDays: 14, Company: "acme",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "CARLA RUIZ", decode[EmployeeDTO](t, rec).Name)

	rec = ts.do(t, http.MethodGet, "/api/employees/CARLA%20RUIZ", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	emp := decode[EmployeeDTO](t, rec)
	assert.Equal(t, 14, emp.AnnualDays)
	assert.Equal(t, "NORTE", emp.Plant)

	rec = ts.do(t, http.MethodGet, "/api/employees/NADIE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/employees?plant=NORTE&company=TODAS", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]EmployeeDTO](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "ANA", list[0].Name)

	rec = ts.do(t, http.MethodPost, "/api/employees", EmployeeDTO{Name: "X", Plant: "NORTE", HireDate: "ayer"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportEmployees_DryRunThenImport(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	csv := "name,plant,hire_date,days_per_year,rest_day,company\n" +
		"ana,norte,2020-01-15,12,domingo,acme\n" +
		",sur,2021-01-01,12,,\n"

	req := httptest.NewRequest(http.MethodPost, "/api/employees/import?dry_run=true", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ImportResponse](t, rec)
	assert.True(t, resp.DryRun)
	assert.Equal(t, 1, resp.Imported)
	assert.Len(t, resp.Skipped, 1)
	require.Len(t, resp.Employees, 1)

	names, err := ts.store.EmployeeNames(context.Background(), sqlite.EmployeeFilter{})
	require.NoError(t, err)
	assert.Empty(t, names, "dry run writes nothing")

	// Multipart upload
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "empleados.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/employees/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	names, err = ts.store.EmployeeNames(context.Background(), sqlite.EmployeeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ANA"}, names)
}

func TestImportEmployees_BadFormat(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	rec := ts.do(t, http.MethodPost, "/api/employees/import?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// INCIDENTS
// =============================================================================

func TestIncidentTypes_Update(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(t, http.MethodGet, "/api/incident-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	types := decode[IncidentTypesDTO](t, rec)
	assert.Equal(t, incident.DefaultTypes, types.Types)
	assert.Contains(t, types.Options, incident.TypeVacation)

	rec = ts.do(t, http.MethodPut, "/api/incident-types", UpdateIncidentTypesRequest{Text: "falta\nhome office\n"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"FALTA", "HOME OFFICE"}, decode[IncidentTypesDTO](t, rec).Types)

	rec = ts.do(t, http.MethodPut, "/api/incident-types", UpdateIncidentTypesRequest{Types: []string{"—", " "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateIncident_ValidatesAndDefaultsDate(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.seed(t)

	rec := ts.do(t, http.MethodPost, "/api/incidents", CreateIncidentRequest{Employee: "ana", Plant: "norte", Type: "falta"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[IncidentDTO](t, rec)
	assert.Equal(t, "2025-12-01", created.Date)
	assert.Equal(t, "ANA", created.Employee)
	assert.NotZero(t, created.ID)

	rec = ts.do(t, http.MethodPost, "/api/incidents", CreateIncidentRequest{Employee: "ana", Type: "SIESTA"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/incidents", CreateIncidentRequest{Date: "01/12/2025x", Employee: "ana", Type: "FALTA"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/incidents?type=FALTA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]IncidentDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "ACME", list[0].Company)
}

// =============================================================================
// WEEKLY MATRIX
// =============================================================================

func TestWeek_SaveAndReload(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.seed(t)

	rec := ts.do(t, http.MethodGet, "/api/matrix/week?date=2025-12-03&plant=NORTE", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	week := decode[WeekDTO](t, rec)
	assert.Equal(t, "2025-12-01", week.Start)
	assert.Equal(t, "2025-12-07", week.End)
	require.Len(t, week.Rows, 1)
	assert.Equal(t, "ANA", week.Rows[0].Employee)

	cells := []string{"FALTA", "—", "", "VACACIONES", "—", "—", "—"}
	rec = ts.do(t, http.MethodPut, "/api/matrix/week", SaveWeekRequest{
		Date: "2025-12-03",
		Rows: []WeekRowDTO{{Employee: "ANA", Cells: cells}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[SaveWeekResponse](t, rec).Recorded)

	rec = ts.do(t, http.MethodGet, "/api/matrix/week?date=2025-12-07&plant=NORTE", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	week = decode[WeekDTO](t, rec)
	assert.Equal(t, []string{"FALTA", "—", "—", "VACACIONES", "—", "—", "—"}, week.Rows[0].Cells)
	assert.Equal(t, incident.Color("FALTA"), week.Rows[0].Colors[0])
}

func TestWeek_RejectsBadRows(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.seed(t)

	rec := ts.do(t, http.MethodPut, "/api/matrix/week", SaveWeekRequest{
		Date: "2025-12-03",
		Rows: []WeekRowDTO{{Employee: "ANA", Cells: []string{"FALTA"}}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/matrix/week", SaveWeekRequest{
		Date: "2025-12-03",
		Rows: []WeekRowDTO{{Employee: "ANA", Cells: []string{"SIESTA", "—", "—", "—", "—", "—", "—"}}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// CONSOLIDATED AND CHARTS
// =============================================================================

func TestConsolidated_RequiresPIN(t *testing.T) {
	ts := newTestServer(t, config.Config{AdminPIN: "1234"})
	ts.seed(t)
	_, err := ts.store.InsertIncident(context.Background(), incident.Incident{
		Date: calendar.MustParseDate("2025-12-01"), Employee: "BETO", Plant: "SUR", Type: "FALTA",
	})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/consolidated", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/consolidated", nil, PINHeader, "0000")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/consolidated", nil, PINHeader, "1234")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ConsolidatedResponse](t, rec)
	assert.Equal(t, "2025-12-01", resp.From)
	assert.Equal(t, "2025-12-01", resp.To)
	require.Len(t, resp.Data, 1, "default range is month to date")
	assert.Equal(t, []SummaryRowDTO{{Company: "GLOBEX", Plant: "SUR", Type: "FALTA", Count: 1}}, resp.Summary)

	rec = ts.do(t, http.MethodGet, "/api/consolidated/export?pin=1234&from=2024-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "incidencias_consolidado_2025-12-01.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	rows, err := f.GetRows(export.SheetData)
	require.NoError(t, err)
	assert.Len(t, rows, 4, "header plus three incidents")
}

func TestConsolidated_OpenWithoutPIN(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	rec := ts.do(t, http.MethodGet, "/api/consolidated", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTopChart_Defaults(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.seed(t)
	ctx := context.Background()
	for _, inc := range []incident.Incident{
		{Date: calendar.MustParseDate("2025-03-01"), Employee: "BETO", Type: "FALTA"},
		{Date: calendar.MustParseDate("2025-03-02"), Employee: "BETO", Type: "FALTA"},
		{Date: calendar.MustParseDate("2025-03-03"), Employee: "ANA", Type: "FALTA"},
		{Date: calendar.MustParseDate("2025-03-04"), Employee: "ANA", Type: "RETARDO"},
		{Date: calendar.MustParseDate("2024-03-04"), Employee: "ANA", Type: "FALTA"},
	} {
		_, err := ts.store.InsertIncident(ctx, inc)
		require.NoError(t, err)
	}

	rec := ts.do(t, http.MethodGet, "/api/charts/top", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[TopChartResponse](t, rec)
	assert.Equal(t, "FALTA", resp.Type)
	assert.Equal(t, "2025-01-01", resp.From)
	assert.Equal(t, []incident.EmployeeCount{{Employee: "BETO", Count: 2}, {Employee: "ANA", Count: 1}}, resp.Bars)

	rec = ts.do(t, http.MethodGet, "/api/charts/top?type=retardo&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []incident.EmployeeCount{{Employee: "ANA", Count: 1}}, decode[TopChartResponse](t, rec).Bars)
}

func TestRangeFilter_RejectsInvertedRange(t *testing.T) {
	ts := newTestServer(t, config.Config{})

	rec := ts.do(t, http.MethodGet, "/api/charts/top?from=2025-06-01&to=2025-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/consolidated?from=2026-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "from after the default end")

	rec = ts.do(t, http.MethodGet, "/api/consolidated?from=2025-12-01&to=2025-12-01", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// VACATIONS
// =============================================================================

func TestVacations_ReportAndAlerts(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.seed(t)

	rec := ts.do(t, http.MethodGet, "/api/vacations", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[VacationReportResponse](t, rec)
	assert.Equal(t, "2025-12-01", report.ReferenceDate)
	require.Len(t, report.Rows, 2)

	ana := report.Rows[0]
	assert.Equal(t, "ANA", ana.Name)
	assert.Equal(t, "12.00", ana.PriorEntitlement)
	assert.Equal(t, "10.00", ana.PriorRemaining)
	assert.Equal(t, "2025-12-31", ana.PriorExpiry)
	assert.Equal(t, 30, ana.DaysToExpiry)
	assert.True(t, ana.Alert)
	assert.Equal(t, "alert", ana.Highlight)

	rec = ts.do(t, http.MethodGet, "/api/vacations/alerts?date=2025-07-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[VacationReportResponse](t, rec).Rows)

	rec = ts.do(t, http.MethodGet, "/api/vacations/monthly?month=7", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	monthly := decode[VacationReportResponse](t, rec)
	require.Len(t, monthly.Rows, 1)
	assert.Equal(t, "BETO", monthly.Rows[0].Name)

	rec = ts.do(t, http.MethodGet, "/api/vacations/monthly?month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/vacations?date=mañana", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVacations_StrictModeReportsMalformedRecords(t *testing.T) {
	ts := newTestServer(t, config.Config{VacationStrict: true})
	ts.seed(t)
	ts.handler.Vacations.Source = brokenDirectory{ts.store}

	rec := ts.do(t, http.MethodGet, "/api/vacations", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	report := decode[VacationReportResponse](t, rec)
	assert.NotEmpty(t, report.Error)
	assert.Len(t, report.Rows, 2)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "ROTO", report.Skipped[0].Employee)
}

// brokenDirectory adds an employee with an unreadable hire date.
type brokenDirectory struct {
	*sqlite.Store
}

func (b brokenDirectory) ReadSnapshot(ctx context.Context, fn func(vacation.Directory, vacation.Ledger) error) error {
	return b.Store.ReadSnapshot(ctx, func(dir vacation.Directory, ledger vacation.Ledger) error {
		return fn(brokenView{dir}, ledger)
	})
}

type brokenView struct {
	vacation.Directory
}

func (v brokenView) Employees(ctx context.Context) ([]vacation.EmployeeRecord, error) {
	records, err := v.Directory.Employees(ctx)
	return append(records, vacation.EmployeeRecord{Name: "ROTO", Plant: "SUR", HireDate: "31/02/2020", AnnualDays: 12}), err
}

func TestExportVacations_CSVAndWorkbook(t *testing.T) {
	ts := newTestServer(t, config.Config{})
	ts.seed(t)

	rec := ts.do(t, http.MethodGet, "/api/vacations/export", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "vacaciones_2025-12-01.csv")

	rows, err := gocsv.CSVToMaps(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ANA", rows[0]["Empleado"])
	assert.Equal(t, export.AlertMark, rows[0]["ALERTA"])

	rec = ts.do(t, http.MethodGet, "/api/vacations/export?format=xlsx&month=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	sheet, err := f.GetRows(export.SheetVacation)
	require.NoError(t, err)
	require.Len(t, sheet, 2, "header plus the January anniversary")
	assert.Equal(t, "ANA", sheet[1][0])
}

func TestSettings_HidesPIN(t *testing.T) {
	ts := newTestServer(t, config.Config{DBPath: "x.db", AdminPIN: "1234"})
	rec := ts.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "1234")
	assert.True(t, decode[SettingsDTO](t, rec).PINEnabled)
}
