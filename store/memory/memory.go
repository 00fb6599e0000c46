// Package memory provides an in-memory vacation snapshot source.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/vacation"
)

// =============================================================================
// MEMORY STORE - In-memory directory + vacation ledger (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[string]vacation.EmployeeRecord
	taken     map[string][]calendar.Date // sorted by day
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[string]vacation.EmployeeRecord),
		taken:     make(map[string][]calendar.Date),
	}
}

// PutEmployee inserts or replaces an employee, keyed by name.
func (m *Memory) PutEmployee(rec vacation.EmployeeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[rec.Name] = rec
}

// AddVacationDay records one vacation day. Each call is one ledger record,
// so the same day added twice counts twice, as it does in the incidences table.
func (m *Memory) AddVacationDay(employee string, day calendar.Date) {
	m.mu.Lock()
	defer m.mu.Unlock()

	days := m.taken[employee]
	i := sort.Search(len(days), func(i int) bool {
		return days[i].After(day)
	})
	days = append(days, calendar.Date{})
	copy(days[i+1:], days[i:])
	days[i] = day
	m.taken[employee] = days
}

// Employees returns all employees ordered by name.
func (m *Memory) Employees(ctx context.Context) ([]vacation.EmployeeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.employeesLocked(), nil
}

// CountVacationDays counts recorded days within the period.
func (m *Memory) CountVacationDays(ctx context.Context, employee string, period calendar.Period) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countLocked(employee, period), nil
}

// ReadSnapshot holds the read lock while fn runs, so writers wait.
func (m *Memory) ReadSnapshot(ctx context.Context, fn func(vacation.Directory, vacation.Ledger) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	view := &snapshotView{parent: m}
	return fn(view, view)
}

func (m *Memory) employeesLocked() []vacation.EmployeeRecord {
	out := make([]vacation.EmployeeRecord, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Memory) countLocked(employee string, period calendar.Period) int {
	days := m.taken[employee]
	lo := sort.Search(len(days), func(i int) bool { return !days[i].Before(period.Start) })
	hi := sort.Search(len(days), func(i int) bool { return days[i].After(period.End) })
	if hi < lo {
		return 0
	}
	return hi - lo
}

// snapshotView reads without locking; the snapshot already holds the lock.
type snapshotView struct {
	parent *Memory
}

func (v *snapshotView) Employees(ctx context.Context) ([]vacation.EmployeeRecord, error) {
	return v.parent.employeesLocked(), nil
}

func (v *snapshotView) CountVacationDays(ctx context.Context, employee string, period calendar.Period) (int, error) {
	return v.parent.countLocked(employee, period), nil
}

var (
	_ vacation.Directory   = (*Memory)(nil)
	_ vacation.Ledger      = (*Memory)(nil)
	_ vacation.Snapshotter = (*Memory)(nil)
)
