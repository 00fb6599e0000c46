package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/vacation"
)

// ErrMissingColumns is wrapped by MissingColumnsError.
var ErrMissingColumns = errors.New("missing CSV columns")

// MissingColumnsError lists the required columns a CSV lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingColumns, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }

// Format selects the CSV layout of a bulk import.
type Format string

const (
	FormatInternal Format = "internal" // name, plant, hire_date, days_per_year, rest_day, company
	FormatMaster   Format = "master"   // EMPRESA, ZONA, NOMBRE, PATERNO, MATERNO, INGRESO, ...
)

// ParseFormat validates a format name. Empty means internal.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatInternal:
		return FormatInternal, nil
	case FormatMaster:
		return FormatMaster, nil
	default:
		return "", fmt.Errorf("unknown import format %q (use internal or master)", s)
	}
}

// RowIssue explains why a CSV row was not imported. Row counts data rows
// from 1, header excluded.
type RowIssue struct {
	Row    int
	Reason string
}

// ImportResult holds the employees ready to upsert and the rows left out.
type ImportResult struct {
	Employees []Employee
	Skipped   []RowIssue
}

// ParseCSV reads a bulk employee import in the given layout.
// Required columns are checked against the header line, so a file with no
// data rows still fails when columns are missing.
func ParseCSV(r io.Reader, format Format) (ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("error reading CSV: %w", err)
	}
	header, err := readHeader(data)
	if err != nil {
		return ImportResult{}, err
	}
	rows, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return ImportResult{}, fmt.Errorf("error reading CSV: %w", err)
	}
	switch format {
	case FormatMaster:
		return transformMaster(header, rows)
	case FormatInternal, "":
		return transformInternal(header, rows)
	default:
		return ImportResult{}, fmt.Errorf("unknown import format %q", format)
	}
}

// readHeader returns the column names of the first line. Empty input has
// no columns.
func readHeader(data []byte) ([]string, error) {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	return header, nil
}

// normalizeKey trims a header name (and a leading BOM), upper- or lower-cased.
func normalizeKey(k string, upper bool) string {
	k = strings.TrimSpace(strings.TrimPrefix(k, "\ufeff"))
	if upper {
		return strings.ToUpper(k)
	}
	return strings.ToLower(k)
}

// normalizeKeys rekeys a row by normalized header.
func normalizeKeys(row map[string]string, upper bool) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[normalizeKey(k, upper)] = strings.TrimSpace(v)
	}
	return out
}

func missing(header []string, upper bool, required []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[normalizeKey(h, upper)] = true
	}
	var absent []string
	for _, col := range required {
		if !present[col] {
			absent = append(absent, col)
		}
	}
	if len(absent) == 0 {
		return nil
	}
	sort.Strings(absent)
	return &MissingColumnsError{Columns: absent}
}

// =============================================================================
// INTERNAL LAYOUT
// =============================================================================

var internalColumns = []string{"name", "plant", "hire_date", "days_per_year"}

func transformInternal(header []string, raw []map[string]string) (ImportResult, error) {
	if err := missing(header, false, internalColumns); err != nil {
		return ImportResult{}, err
	}
	rows := make([]map[string]string, len(raw))
	for i, r := range raw {
		rows[i] = normalizeKeys(r, false)
	}

	var res ImportResult
	for i, r := range rows {
		days, err := strconv.Atoi(r["days_per_year"])
		if err != nil {
			res.Skipped = append(res.Skipped, RowIssue{Row: i + 1, Reason: fmt.Sprintf("invalid days_per_year %q", r["days_per_year"])})
			continue
		}
		hire := r["hire_date"]
		if len(hire) > 10 {
			hire = hire[:10]
		}
		emp := Employee{
			Name:       r["name"],
			Plant:      r["plant"],
			HireDate:   hire,
			AnnualDays: days,
			RestDay:    r["rest_day"],
			Company:    r["company"],
		}.Normalize()
		if err := emp.Validate(); err != nil {
			res.Skipped = append(res.Skipped, RowIssue{Row: i + 1, Reason: err.Error()})
			continue
		}
		res.Employees = append(res.Employees, emp)
	}
	return res, nil
}

// =============================================================================
// MASTER LAYOUT (HR spreadsheet exported to CSV)
// =============================================================================

var masterColumns = []string{
	"EMPRESA", "ZONA", "NOMBRE", "PATERNO", "MATERNO",
	"INGRESO", "DIA DE DESCANSO", "DIAS CORRESPONDIENTES",
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// transformMaster maps the HR master sheet to catalog employees. Extra
// columns (FECHA DE SALIDA, DISPONIBLES, ...) are ignored. Rows without a
// name, zone or readable hire date are skipped.
func transformMaster(header []string, raw []map[string]string) (ImportResult, error) {
	if err := missing(header, true, masterColumns); err != nil {
		return ImportResult{}, err
	}
	rows := make([]map[string]string, len(raw))
	for i, r := range raw {
		rows[i] = normalizeKeys(r, true)
	}

	var res ImportResult
	for i, r := range rows {
		fullName := strings.Join([]string{r["NOMBRE"], r["PATERNO"], r["MATERNO"]}, " ")
		fullName = strings.TrimSpace(strings.ReplaceAll(strings.ToUpper(fullName), "  ", " "))
		plant := NormalizeName(r["ZONA"])
		hire := ParseDayMonthYear(r["INGRESO"])

		if fullName == "" || plant == "" || hire == "" {
			res.Skipped = append(res.Skipped, RowIssue{Row: i + 1, Reason: "missing name, zone or hire date"})
			continue
		}

		res.Employees = append(res.Employees, Employee{
			Name:       fullName,
			Plant:      plant,
			HireDate:   hire,
			AnnualDays: parseAllotment(r["DIAS CORRESPONDIENTES"]),
			RestDay:    NormalizeRestDay(r["DIA DE DESCANSO"]),
			Company:    NormalizeName(r["EMPRESA"]),
		})
	}
	return res, nil
}

// ParseDayMonthYear converts dd/mm/yyyy or dd-mm-yyyy to YYYY-MM-DD.
// Returns "" when the value does not parse.
func ParseDayMonthYear(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "/")
	if s == "" {
		return ""
	}
	t, err := time.Parse("2/1/2006", s)
	if err != nil {
		return ""
	}
	return calendar.FromTime(t).String()
}

// parseAllotment keeps the digits of "15 días" and the like; anything
// unusable falls back to the default allotment.
func parseAllotment(s string) int {
	n, err := strconv.Atoi(nonDigits.ReplaceAllString(s, ""))
	if err != nil || n <= 0 {
		return vacation.DefaultAnnualDays
	}
	return n
}
