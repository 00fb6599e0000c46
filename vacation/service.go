package vacation

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/incidencias/calendar"
)

// Service builds reports over a consistent snapshot of the store.
type Service struct {
	Source Snapshotter
	Policy Policy
}

// NewService creates a report service.
func NewService(source Snapshotter, policy Policy) *Service {
	return &Service{Source: source, Policy: policy}
}

// AnnualReport returns every employee's status at ref.
//
// Under a strict policy the report may come back together with an error
// wrapping ErrMalformedRecord; any other error means no report.
func (s *Service) AnnualReport(ctx context.Context, ref calendar.Date) (Report, error) {
	var (
		report   Report
		buildErr error
	)
	err := s.Source.ReadSnapshot(ctx, func(dir Directory, ledger Ledger) error {
		report, buildErr = BuildAnnualReport(ctx, dir, ledger, ref, s.Policy)
		if buildErr != nil && !errors.Is(buildErr, ErrMalformedRecord) {
			return buildErr
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	return report, buildErr
}

// MonthlyView returns the statuses of employees whose hire anniversary
// falls in month. Errors follow AnnualReport.
func (s *Service) MonthlyView(ctx context.Context, ref calendar.Date, month int) (Report, error) {
	if month < 1 || month > 12 {
		return Report{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	report, err := s.AnnualReport(ctx, ref)
	if err != nil && !errors.Is(err, ErrMalformedRecord) {
		return Report{}, err
	}
	view, viewErr := MonthlyView(report, month)
	if viewErr != nil {
		return Report{}, viewErr
	}
	return view, err
}
