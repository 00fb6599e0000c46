package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/export"
	"github.com/warp/incidencias/incident"
	"github.com/warp/incidencias/vacation"
	"github.com/xuri/excelize/v2"
)

func TestWriteConsolidated(t *testing.T) {
	// GIVEN: two incidents and their summary
	incs := []incident.Incident{
		{Date: calendar.MustParseDate("2025-03-10"), Employee: "ANA", Plant: "NORTE", Type: "FALTA", Company: "ACME", Notes: "sin aviso"},
		{Date: calendar.MustParseDate("2025-03-11"), Employee: "ANA", Plant: "NORTE", Type: "FALTA", Company: "ACME"},
	}
	summary := incident.Summarize(incs)

	// WHEN: the workbook is written
	var buf bytes.Buffer
	require.NoError(t, export.WriteConsolidated(&buf, incs, summary))

	// THEN: both sheets read back with Spanish headers
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Datos", "Resumen"}, f.GetSheetList())

	data, err := f.GetRows(export.SheetData)
	require.NoError(t, err)
	require.Len(t, data, 3)
	assert.Equal(t, []string{"Fecha", "Empleado", "Planta", "Tipo", "Empresa", "Observaciones"}, data[0])
	assert.Equal(t, []string{"2025-03-10", "ANA", "NORTE", "FALTA", "ACME", "sin aviso"}, data[1])

	res, err := f.GetRows(export.SheetSummary)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, []string{"Empresa", "Planta", "Tipo", "Incidencias"}, res[0])
	assert.Equal(t, []string{"ACME", "NORTE", "FALTA", "2"}, res[1])
}

func TestConsolidatedFileName(t *testing.T) {
	assert.Equal(t, "incidencias_consolidado_2025-03-10.xlsx",
		export.ConsolidatedFileName(calendar.MustParseDate("2025-03-10")))
}

func sampleRows() []vacation.Status {
	return []vacation.Status{
		{
			Name: "ANA", Plant: "NORTE", HireDate: calendar.MustParseDate("2020-01-15"), AnnualDays: 12,
			MonthsWorked: 6, CurrentEntitlement: decimal.NewFromInt(6), CurrentTaken: 1,
			CurrentRemaining: decimal.NewFromInt(5), PriorRemaining: decimal.NewFromInt(3),
			PriorExpiry: calendar.MustParseDate("2025-12-31"), DaysToExpiry: 30, Alert: true,
		},
		{
			Name: "BETO", Plant: "SUR", HireDate: calendar.MustParseDate("2024-07-01"), AnnualDays: 14,
			CurrentEntitlement: decimal.RequireFromString("8.17"), CurrentRemaining: decimal.RequireFromString("8.17"),
			PriorRemaining: decimal.Zero, PriorExpiry: calendar.MustParseDate("2025-12-31"), DaysToExpiry: 30,
		},
	}
}

func TestWriteVacationCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteVacationCSV(&buf, sampleRows()))

	rows, err := gocsv.CSVToMaps(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "ANA", rows[0]["Empleado"])
	assert.Equal(t, "6.00", rows[0]["Derecho año actual"])
	assert.Equal(t, "3.00", rows[0]["Saldo año anterior"])
	assert.Equal(t, export.AlertMark, rows[0]["ALERTA"])
	assert.Equal(t, "8.17", rows[1]["Saldo año actual"])
	assert.Equal(t, "", rows[1]["ALERTA"])
}

func TestWriteVacationCSV_EmptyKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteVacationCSV(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "Empleado,Planta,Ingreso,"))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))

	// The workbook header carries the same columns.
	var wb bytes.Buffer
	require.NoError(t, export.WriteVacationWorkbook(&wb, nil))
	f, err := excelize.OpenReader(&wb)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetVacation)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, strings.TrimSpace(buf.String()), strings.Join(rows[0], ","))
}

func TestWriteVacationWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteVacationWorkbook(&buf, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetVacation)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Empleado", rows[0][0])
	assert.Equal(t, "ALERTA", rows[0][11])
	assert.Equal(t, "BETO", rows[2][0])
}
