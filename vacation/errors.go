package vacation

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is wrapped by every RecordError.
	ErrMalformedRecord = errors.New("malformed employee record")

	// ErrInvalidMonth is returned for an anniversary month outside 1-12.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// RecordError describes an employee row the engine could not evaluate.
type RecordError struct {
	Employee string
	Field    string
	Value    string
	Cause    error
}

func (e *RecordError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("employee %q: invalid %s %q: %v", e.Employee, e.Field, e.Value, e.Cause)
	}
	return fmt.Sprintf("employee %q: invalid %s %q", e.Employee, e.Field, e.Value)
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}

func joinRecordErrors(errs []*RecordError) error {
	if len(errs) == 0 {
		return nil
	}
	all := make([]error, len(errs))
	for i, e := range errs {
		all[i] = e
	}
	return errors.Join(all...)
}
