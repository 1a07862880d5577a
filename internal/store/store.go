package store

// Store defines the interface for run report persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if the report doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveReport atomically saves the report for the given run.
	// An existing report for runID is overwritten.
	SaveReport(runID string, report *Report) error

	// LoadReport retrieves the report for the given run.
	// Returns ErrNotFound if no report exists for this runID.
	LoadReport(runID string) (*Report, error)

	// ListReports returns metadata for all available reports.
	// The returned slice may be empty if no reports exist.
	ListReports() ([]ReportInfo, error)

	// DeleteReport removes the report directory for the given run.
	// Returns ErrNotFound if no report exists for this runID.
	DeleteReport(runID string) error
}

// ErrNotFound is returned when a requested report does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing report.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "report not found: " + e.RunID
	}
	return "report not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
