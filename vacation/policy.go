package vacation

const (
	// DefaultAnnualDays is the allotment assumed when none is recorded.
	DefaultAnnualDays = 12

	// DefaultAlertWindowDays is how close to expiry a balance starts alerting.
	DefaultAlertWindowDays = 60

	// DefaultCarryoverDays is how long after year end a balance survives.
	DefaultCarryoverDays = 365
)

// Policy tunes how reports treat bad rows and expiring balances.
//
// The zero value is lenient with the default windows.
type Policy struct {
	// Strict makes BuildAnnualReport return an error for malformed rows,
	// alongside the rows it could compute. Lenient only lists them in
	// Report.Skipped.
	Strict bool

	// DistinguishExpired stops alerting on balances that already expired;
	// those rows keep ExpiryState "expired" with Alert false.
	DistinguishExpired bool

	AlertWindowDays int
	CarryoverDays   int
}

// DefaultPolicy returns the lenient policy with a 60-day alert window.
func DefaultPolicy() Policy {
	return Policy{
		AlertWindowDays: DefaultAlertWindowDays,
		CarryoverDays:   DefaultCarryoverDays,
	}
}

func (p Policy) alertWindow() int {
	if p.AlertWindowDays <= 0 {
		return DefaultAlertWindowDays
	}
	return p.AlertWindowDays
}

func (p Policy) carryover() int {
	if p.CarryoverDays <= 0 {
		return DefaultCarryoverDays
	}
	return p.CarryoverDays
}
