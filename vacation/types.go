/*
Package vacation computes vacation entitlement and balances.

PURPOSE:
  Answers "how many vacation days has this employee earned, used and got
  left?" for the current and the prior calendar year, and flags prior-year
  balances that are about to expire.

KEY CONCEPTS:
  EmployeeRecord: Directory row as stored (hire date unparsed)
  Status:         Computed balance row for one employee at a reference date
  Report:         All rows for a reference date, plus skipped records
  Policy:         Strict/lenient handling of malformed rows, expiry rules

ACCRUAL:
  Days accrue monthly: entitlement = annual allotment / 12 x months worked,
  rounded to 2 decimals. The current year is measured up to the reference
  date; the prior year is always treated as fully elapsed.

CARRYOVER:
  The prior-year balance expires 365 days after Dec 31 of that year. A
  positive balance within 60 days of expiry raises an alert.

PURITY:
  Nothing in this package writes. Directory and Ledger are read-only views;
  Service runs every report over one snapshot.

SEE ALSO:
  - engine.go: ComputeStatus and BuildAnnualReport
  - service.go: Snapshot-backed report service
  - store/sqlite: Directory and Ledger over SQLite
*/
package vacation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/incidencias/calendar"
)

// =============================================================================
// INPUTS
// =============================================================================

// EmployeeRecord is an employee as the directory stores it.
// HireDate stays raw so a malformed value can be reported per row.
type EmployeeRecord struct {
	Name       string
	Plant      string
	HireDate   string
	AnnualDays int
}

// Directory lists employees.
type Directory interface {
	Employees(ctx context.Context) ([]EmployeeRecord, error)
}

// Ledger counts vacation days taken.
type Ledger interface {
	// CountVacationDays returns the number of vacation records for the
	// employee whose date falls within the period, inclusive.
	CountVacationDays(ctx context.Context, employee string, period calendar.Period) (int, error)
}

// Snapshotter runs fn against a consistent read view of directory and ledger.
type Snapshotter interface {
	ReadSnapshot(ctx context.Context, fn func(Directory, Ledger) error) error
}

// =============================================================================
// OUTPUTS
// =============================================================================

// ExpiryState classifies the prior-year balance.
type ExpiryState string

const (
	ExpiryNone     ExpiryState = "none"     // nothing to lose, or expiry is far
	ExpiryExpiring ExpiryState = "expiring" // positive balance inside the alert window
	ExpiryExpired  ExpiryState = "expired"  // positive balance past its expiry date
)

// Status is the computed vacation balance of one employee.
type Status struct {
	// Identity
	Name       string
	Plant      string
	HireDate   calendar.Date
	AnnualDays int

	// Current calendar year
	MonthsWorked       int
	CurrentEntitlement decimal.Decimal
	CurrentTaken       int
	CurrentRemaining   decimal.Decimal

	// Prior calendar year
	PriorEntitlement decimal.Decimal
	PriorTaken       int
	PriorRemaining   decimal.Decimal

	// Carryover expiry
	PriorExpiry  calendar.Date
	DaysToExpiry int
	Alert        bool
	ExpiryState  ExpiryState
}

// AnniversaryMonth is the calendar month of the hire date.
func (s Status) AnniversaryMonth() time.Month {
	return s.HireDate.Month()
}

// Highlight tells a display how to color the row: "alert" for an expiry
// alert, "positive" for an available current-year balance, "" otherwise.
func (s Status) Highlight() string {
	switch {
	case s.Alert:
		return "alert"
	case s.CurrentRemaining.IsPositive():
		return "positive"
	default:
		return ""
	}
}

// Report is the annual vacation report for a reference date.
type Report struct {
	ReferenceDate calendar.Date
	Rows          []Status
	Skipped       []*RecordError
}

// Alerts returns the rows with an expiry alert.
func (r Report) Alerts() []Status {
	var out []Status
	for _, row := range r.Rows {
		if row.Alert {
			out = append(out, row)
		}
	}
	return out
}
