package vacation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/incidencias/calendar"
)

var twelve = decimal.NewFromInt(12)

// =============================================================================
// ENTITLEMENT
// =============================================================================

// Entitlement returns annualDays/12 x months, months capped to [0, 12],
// rounded to 2 decimals.
func Entitlement(annualDays, months int) decimal.Decimal {
	months = clampMonths(months)
	return decimal.NewFromInt(int64(annualDays) * int64(months)).Div(twelve).Round(2)
}

func clampMonths(m int) int {
	if m < 0 {
		return 0
	}
	if m > 12 {
		return 12
	}
	return m
}

// remaining is entitlement minus taken. Never clamped: a negative result
// means the employee used more than they earned.
func remaining(entitlement decimal.Decimal, taken int) decimal.Decimal {
	return entitlement.Sub(decimal.NewFromInt(int64(taken))).Round(2)
}

// =============================================================================
// STATUS
// =============================================================================

// ComputeStatus evaluates one employee at ref.
//
// Returns a *RecordError when the hire date cannot be parsed or the
// allotment is not positive. Ledger failures are returned as-is.
func ComputeStatus(ctx context.Context, emp EmployeeRecord, ref calendar.Date, ledger Ledger, policy Policy) (Status, error) {
	hire, err := calendar.ParseDate(emp.HireDate)
	if err != nil {
		return Status{}, &RecordError{Employee: emp.Name, Field: "hire_date", Value: emp.HireDate, Cause: err}
	}
	if emp.AnnualDays <= 0 {
		return Status{}, &RecordError{Employee: emp.Name, Field: "annual_days", Value: fmt.Sprint(emp.AnnualDays)}
	}

	current := calendar.CurrentYearPeriod(ref)
	prior := calendar.PreviousYearPeriod(ref)

	// Current year: months from the later of hire date and Jan 1, up to ref.
	months := calendar.MonthsBetween(calendar.MaxDate(hire, current.Start), ref)
	if months < 0 {
		months = 0
	}
	currentEntitlement := Entitlement(emp.AnnualDays, months)
	currentTaken, err := ledger.CountVacationDays(ctx, emp.Name, current)
	if err != nil {
		return Status{}, fmt.Errorf("failed to count current-year vacation for %s: %w", emp.Name, err)
	}

	// Prior year: always measured to the end of that year, not to ref.
	priorEntitlement := decimal.Zero
	if hire.BeforeOrEqual(prior.End) {
		start := calendar.MaxDate(hire, prior.Start)
		// The year closes at the end of Dec 31, so measure to Jan 1.
		priorMonths := calendar.MonthsBetween(start, prior.End.AddDays(1))
		priorEntitlement = Entitlement(emp.AnnualDays, priorMonths)
	}
	priorTaken, err := ledger.CountVacationDays(ctx, emp.Name, prior)
	if err != nil {
		return Status{}, fmt.Errorf("failed to count prior-year vacation for %s: %w", emp.Name, err)
	}

	st := Status{
		Name:               emp.Name,
		Plant:              emp.Plant,
		HireDate:           hire,
		AnnualDays:         emp.AnnualDays,
		MonthsWorked:       months,
		CurrentEntitlement: currentEntitlement,
		CurrentTaken:       currentTaken,
		CurrentRemaining:   remaining(currentEntitlement, currentTaken),
		PriorEntitlement:   priorEntitlement,
		PriorTaken:         priorTaken,
		PriorRemaining:     remaining(priorEntitlement, priorTaken),
		PriorExpiry:        prior.End.AddDays(policy.carryover()),
	}
	st.DaysToExpiry = calendar.DaysBetween(ref, st.PriorExpiry)
	st.ExpiryState, st.Alert = expiry(st.PriorRemaining, st.DaysToExpiry, policy)
	return st, nil
}

// expiry classifies the prior-year balance. By default an already expired
// positive balance still alerts; DistinguishExpired turns that off.
func expiry(priorRemaining decimal.Decimal, daysToExpiry int, policy Policy) (ExpiryState, bool) {
	if !priorRemaining.IsPositive() || daysToExpiry > policy.alertWindow() {
		return ExpiryNone, false
	}
	if daysToExpiry < 0 {
		return ExpiryExpired, !policy.DistinguishExpired
	}
	return ExpiryExpiring, true
}

// =============================================================================
// REPORTS
// =============================================================================

// BuildAnnualReport computes one row per employee, ordered by plant then
// name. Malformed rows land in Report.Skipped; under a strict policy the
// report is returned together with an error joining them.
func BuildAnnualReport(ctx context.Context, dir Directory, ledger Ledger, ref calendar.Date, policy Policy) (Report, error) {
	employees, err := dir.Employees(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list employees: %w", err)
	}

	report := Report{ReferenceDate: ref, Rows: make([]Status, 0, len(employees))}
	for _, emp := range employees {
		st, err := ComputeStatus(ctx, emp, ref, ledger, policy)
		if err != nil {
			var recErr *RecordError
			if errors.As(err, &recErr) {
				report.Skipped = append(report.Skipped, recErr)
				continue
			}
			return Report{}, err
		}
		report.Rows = append(report.Rows, st)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i], report.Rows[j]
		if a.Plant != b.Plant {
			return a.Plant < b.Plant
		}
		return a.Name < b.Name
	})

	if policy.Strict {
		return report, joinRecordErrors(report.Skipped)
	}
	return report, nil
}

// MonthlyView keeps the rows whose hire date falls in month (1-12).
func MonthlyView(report Report, month int) (Report, error) {
	if month < 1 || month > 12 {
		return Report{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	out := Report{ReferenceDate: report.ReferenceDate, Skipped: report.Skipped, Rows: []Status{}}
	for _, row := range report.Rows {
		if int(row.AnniversaryMonth()) == month {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}
