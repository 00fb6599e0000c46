/*
watcher.go - Background vacation expiry alerts

PURPOSE:
  Periodically computes the vacation report and logs every employee whose
  prior-year balance is about to expire (or has expired), so alerts reach
  the logs even when nobody opens the vacation screen.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Checks once immediately on start
  - Never writes to the store; the report is read-only
  - Keeps the last check result for RunNow callers and tests

CONFIGURATION:
  - EXPIRY_CHECK_INTERVAL: How often to check (0 disables the watcher)

USAGE:
  watcher := NewExpiryWatcher(service, log, interval)
  watcher.Start()
  // ... later
  watcher.Stop()

SEE ALSO:
  - handlers.go: GetVacationAlerts endpoint (on-demand alerts)
  - vacation/engine.go: Alert computation
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/logging"
	"github.com/warp/incidencias/vacation"
)

// CheckResult summarizes one expiry check.
type CheckResult struct {
	ReferenceDate calendar.Date
	Alerts        []vacation.Status
	Skipped       int
}

// ExpiryWatcher logs vacation expiry alerts on a schedule.
type ExpiryWatcher struct {
	Vacations     *vacation.Service
	Log           logrus.FieldLogger
	CheckInterval time.Duration
	Today         func() calendar.Date

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	last   CheckResult
}

// NewExpiryWatcher creates a watcher. An interval <= 0 leaves it disabled.
func NewExpiryWatcher(svc *vacation.Service, log logrus.FieldLogger, interval time.Duration) *ExpiryWatcher {
	return &ExpiryWatcher{
		Vacations:     svc,
		Log:           log,
		CheckInterval: interval,
		Today:         calendar.Today,
	}
}

// Enabled reports whether Start launches the background loop.
func (w *ExpiryWatcher) Enabled() bool {
	return w.CheckInterval > 0
}

// Start begins the watcher.
func (w *ExpiryWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.Enabled() {
		w.Log.Info("Expiry watcher disabled")
		return
	}
	if w.ticker != nil {
		return
	}

	w.ticker = time.NewTicker(w.CheckInterval)
	w.stop = make(chan struct{})
	w.wg.Add(1)

	go w.run(w.ticker, w.stop)

	w.Log.WithField("interval", w.CheckInterval.String()).Info("Expiry watcher started")
}

// Stop stops the watcher and waits for a running check to finish.
func (w *ExpiryWatcher) Stop() {
	w.mu.Lock()
	ticker, stop := w.ticker, w.stop
	w.ticker = nil
	w.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	w.wg.Wait()
	w.Log.Info("Expiry watcher stopped")
}

func (w *ExpiryWatcher) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer w.wg.Done()

	w.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			w.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow performs one check immediately and logs its alerts.
func (w *ExpiryWatcher) RunNow(ctx context.Context) (CheckResult, error) {
	start := time.Now()
	ref := w.Today()

	report, err := w.Vacations.AnnualReport(ctx, ref)
	if err != nil && !errors.Is(err, vacation.ErrMalformedRecord) {
		w.Log.WithError(err).Error("Expiry check failed")
		return CheckResult{}, err
	}

	result := CheckResult{
		ReferenceDate: ref,
		Alerts:        report.Alerts(),
		Skipped:       len(report.Skipped),
	}
	for _, s := range result.Alerts {
		w.Log.WithFields(logrus.Fields{
			logging.FieldEmployee: s.Name,
			logging.FieldPlant:    s.Plant,
			"prior_remaining":     s.PriorRemaining.StringFixed(2),
			"expires":             s.PriorExpiry.String(),
			"days_to_expiry":      s.DaysToExpiry,
		}).Warn("Prior-year vacation balance expiring")
	}
	if err != nil {
		w.Log.WithError(err).Warn("Expiry check found malformed employee records")
	}

	w.Log.WithFields(logrus.Fields{
		logging.FieldCount:    len(result.Alerts),
		"skipped":             result.Skipped,
		logging.FieldDuration: time.Since(start).Milliseconds(),
	}).Info("Expiry check completed")

	w.mu.Lock()
	w.last = result
	w.mu.Unlock()
	return result, nil
}

// LastResult returns the outcome of the most recent check.
func (w *ExpiryWatcher) LastResult() CheckResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}
