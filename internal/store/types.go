package store

import (
	"time"

	"github.com/agallais/Quantum-aqora/internal/config"
)

// RunRecord is the persisted outcome of one optimization run. It is the
// external reporting boundary of the pipeline: the final parameters and
// energy, plus enough context to reproduce the run.
type RunRecord struct {
	// RunID uniquely identifies the run.
	RunID string `json:"runId"`

	// Formula is the elemental formula of the optimized molecule.
	Formula string `json:"formula"`

	// Geometry is the raw geometry text the run was started from.
	Geometry string `json:"geometry"`

	// Params is the final parameter vector.
	Params []float64 `json:"params"`

	// Energy is the evaluator's reading at Params.
	Energy float64 `json:"energy"`

	// Iterations is the number of completed optimizer steps.
	Iterations int `json:"iterations"`

	// Converged reports whether the tolerance test stopped the run.
	Converged bool `json:"converged"`

	// Timestamp records when the run finished.
	Timestamp time.Time `json:"timestamp"`

	// Config is the settings snapshot the run used.
	Config config.RunConfig `json:"config"`
}

// RunInfo is run metadata without the parameter payload, for listings.
type RunInfo struct {
	RunID      string    `json:"runId"`
	Formula    string    `json:"formula"`
	Energy     float64   `json:"energy"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Timestamp  time.Time `json:"timestamp"`
}

// ToInfo strips a record down to listing metadata.
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:      r.RunID,
		Formula:    r.Formula,
		Energy:     r.Energy,
		Iterations: r.Iterations,
		Converged:  r.Converged,
		Timestamp:  r.Timestamp,
	}
}

// Validate checks the fields every persisted record must carry.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.Geometry == "" {
		return &ValidationError{Field: "Geometry", Reason: "cannot be empty"}
	}
	if r.Params == nil {
		return &ValidationError{Field: "Params", Reason: "cannot be nil"}
	}
	if r.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError reports an invalid run record field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
