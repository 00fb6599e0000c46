package export

import (
	"fmt"
	"io"
	"reflect"

	"github.com/gocarina/gocsv"
	"github.com/warp/incidencias/vacation"
	"github.com/xuri/excelize/v2"
)

// AlertMark fills the ALERTA column of rows whose prior balance expires soon.
const AlertMark = "⚠"

// VacationRow is one vacation report line as exported.
type VacationRow struct {
	Employee           string `csv:"Empleado"`
	Plant              string `csv:"Planta"`
	HireDate           string `csv:"Ingreso"`
	AnnualDays         int    `csv:"Dias/Año"`
	MonthsWorked       int    `csv:"Meses trabajados (año)"`
	CurrentEntitlement string `csv:"Derecho año actual"`
	CurrentTaken       int    `csv:"Tomado año actual"`
	CurrentRemaining   string `csv:"Saldo año actual"`
	PriorRemaining     string `csv:"Saldo año anterior"`
	PriorExpiry        string `csv:"Vence saldo anterior"`
	DaysToExpiry       int    `csv:"Días para vencer"`
	Alert              string `csv:"ALERTA"`
}

// VacationRows flattens report rows for export. Amounts keep two decimals.
func VacationRows(rows []vacation.Status) []VacationRow {
	out := make([]VacationRow, 0, len(rows))
	for _, s := range rows {
		r := VacationRow{
			Employee:           s.Name,
			Plant:              s.Plant,
			HireDate:           s.HireDate.String(),
			AnnualDays:         s.AnnualDays,
			MonthsWorked:       s.MonthsWorked,
			CurrentEntitlement: s.CurrentEntitlement.StringFixed(2),
			CurrentTaken:       s.CurrentTaken,
			CurrentRemaining:   s.CurrentRemaining.StringFixed(2),
			PriorRemaining:     s.PriorRemaining.StringFixed(2),
			PriorExpiry:        s.PriorExpiry.String(),
			DaysToExpiry:       s.DaysToExpiry,
		}
		if s.Alert {
			r.Alert = AlertMark
		}
		out = append(out, r)
	}
	return out
}

// WriteVacationCSV writes the report rows as CSV. The header line is
// written even when there are no rows.
func WriteVacationCSV(w io.Writer, rows []vacation.Status) error {
	out := VacationRows(rows)
	if err := gocsv.Marshal(&out, w); err != nil {
		return fmt.Errorf("failed to write vacation CSV: %w", err)
	}
	return nil
}

// WriteVacationWorkbook writes the report as a single-sheet workbook with
// alert rows filled in the alert color.
func WriteVacationWorkbook(w io.Writer, rows []vacation.Status) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetVacation); err != nil {
		return fmt.Errorf("failed to name vacation sheet: %w", err)
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	alert, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFCCCC"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create alert style: %w", err)
	}

	headers := vacationHeaders()
	data := make([][]interface{}, 0, len(rows))
	for _, r := range VacationRows(rows) {
		data = append(data, []interface{}{
			r.Employee, r.Plant, r.HireDate, r.AnnualDays, r.MonthsWorked,
			r.CurrentEntitlement, r.CurrentTaken, r.CurrentRemaining,
			r.PriorRemaining, r.PriorExpiry, r.DaysToExpiry, r.Alert,
		})
	}
	if err := writeSheet(f, SheetVacation, headers, data, header); err != nil {
		return err
	}

	for i, s := range rows {
		if !s.Alert {
			continue
		}
		first, _ := excelize.CoordinatesToCellName(1, i+2)
		last, _ := excelize.CoordinatesToCellName(len(headers), i+2)
		if err := f.SetCellStyle(SheetVacation, first, last, alert); err != nil {
			return fmt.Errorf("failed to highlight row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// vacationHeaders reads the column names off VacationRow's csv tags so the
// CSV and xlsx layouts cannot drift.
func vacationHeaders() []interface{} {
	t := reflect.TypeOf(VacationRow{})
	out := make([]interface{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		out[i] = t.Field(i).Tag.Get("csv")
	}
	return out
}
