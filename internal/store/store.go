package store

// Store persists finished and in-flight optimization runs.
//
// Error handling conventions:
//   - nil on success
//   - *NotFoundError when the run does not exist (Load/Delete)
//   - descriptive errors, wrapped with %w, for I/O and serialization failures
type Store interface {
	// SaveRun atomically writes the record for its RunID, overwriting any
	// previous record for the same run.
	SaveRun(record *RunRecord) error

	// LoadRun retrieves a run record by ID.
	LoadRun(runID string) (*RunRecord, error)

	// ListRuns returns metadata for all persisted runs, without loading
	// parameter vectors.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the record and its energy trace.
	DeleteRun(runID string) error
}

// ErrNotFound is a sentinel for errors.Is checks.
var ErrNotFound = &NotFoundError{}

// NotFoundError reports a missing run.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
