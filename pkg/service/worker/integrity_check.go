package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
)

// IntegrityChecker reports broken employee/department references without modifying data
type IntegrityChecker interface {
	Check(ctx context.Context) (*usecase.ValidationResult, error)
}

// IntegrityCheckWorker periodically runs the integrity check and logs what it finds.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Read only, so concurrent instances only duplicate the log output
type IntegrityCheckWorker struct {
	checker  IntegrityChecker
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu   sync.RWMutex
	last *usecase.ValidationResult
}

func NewIntegrityCheckWorker(checker IntegrityChecker, interval time.Duration) *IntegrityCheckWorker {
	return &IntegrityCheckWorker{
		checker:  checker,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background check loop. The first check runs immediately in the background.
func (w *IntegrityCheckWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("integrity check interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("Integrity check worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *IntegrityCheckWorker) Stop() {
	logging.Default().Info("Integrity check worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Integrity check worker stopped")
}

// LastResult returns the result of the most recent successful check, or nil before the first one
func (w *IntegrityCheckWorker) LastResult() *usecase.ValidationResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

func (w *IntegrityCheckWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.check(ctx); err != nil {
		logging.Default().Error("Initial integrity check failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.check(ctx); err != nil {
				logging.Default().Error("Integrity check failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Integrity check worker context cancelled")
			return
		}
	}
}

func (w *IntegrityCheckWorker) check(ctx context.Context) error {
	startTime := time.Now()

	result, err := w.checker.Check(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to check integrity")
	}

	w.mu.Lock()
	w.last = result
	w.mu.Unlock()

	if result.HasIssues() {
		for _, issue := range result.Issues {
			logging.Default().Warn("Integrity issue found",
				"kind", issue.Kind,
				"employee_id", issue.EmployeeID,
				"department_id", issue.DepartmentID,
				"message", issue.Message,
			)
		}
	}

	logging.Default().Info("Integrity check completed",
		"issues", len(result.Issues),
		"duration", time.Since(startTime).String())

	return nil
}
