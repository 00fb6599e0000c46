/*
Package export renders reports as downloadable files.

PURPOSE:
  - Consolidated incidents as an xlsx workbook (sheets Datos and Resumen)
  - The vacation report as CSV or as an xlsx sheet

Column headers are in Spanish, as HR reads them.

SEE ALSO:
  - incident: Incident and SummaryRow
  - vacation: Report rows
*/
package export

import (
	"fmt"
	"io"

	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/incident"
	"github.com/xuri/excelize/v2"
)

const (
	SheetData     = "Datos"
	SheetSummary  = "Resumen"
	SheetVacation = "Vacaciones"
)

// XLSXContentType is the MIME type of the workbooks written here.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	dataHeader    = []interface{}{"Fecha", "Empleado", "Planta", "Tipo", "Empresa", "Observaciones"}
	summaryHeader = []interface{}{"Empresa", "Planta", "Tipo", "Incidencias"}
)

// ConsolidatedFileName is the download name for the consolidated workbook.
func ConsolidatedFileName(day calendar.Date) string {
	return fmt.Sprintf("incidencias_consolidado_%s.xlsx", day)
}

// VacationFileName is the download name for the vacation report.
func VacationFileName(ref calendar.Date, ext string) string {
	return fmt.Sprintf("vacaciones_%s.%s", ref, ext)
}

// WriteConsolidated writes the incidents and their summary as a two-sheet
// workbook.
func WriteConsolidated(w io.Writer, incidents []incident.Incident, summary []incident.SummaryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetData); err != nil {
		return fmt.Errorf("failed to name data sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	data := make([][]interface{}, 0, len(incidents))
	for _, inc := range incidents {
		data = append(data, []interface{}{
			inc.Date.String(), inc.Employee, inc.Plant, inc.Type, inc.Company, inc.Notes,
		})
	}
	if err := writeSheet(f, SheetData, dataHeader, data, header); err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, []interface{}{s.Company, s.Plant, s.Type, s.Count})
	}
	if err := writeSheet(f, SheetSummary, summaryHeader, rows, header); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func headerStyle(f *excelize.File) (int, error) {
	id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	return id, nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyleID int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyleID); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
