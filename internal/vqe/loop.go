package vqe

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/agallais/Quantum-aqora/internal/opt"
)

// Evaluator measures the scalar cost (energy) of a parameter vector.
// It matches opt.Objective structurally, so one implementation serves both
// the loop and the optimizers it drives. Evaluations are assumed expensive
// and are never retried; any failure aborts the run.
type Evaluator interface {
	Evaluate(params []float64) (float64, error)
}

// Settings controls a convergence run.
type Settings struct {
	// MaxIterations bounds the number of optimizer steps. Must be >= 1.
	MaxIterations int

	// Tolerance is the maximum absolute change in cost across one step for
	// that step to count toward convergence. Must be >= 0. Callers needing
	// scale-invariant behavior pre-normalize this value.
	Tolerance float64

	// Patience is the number of consecutive iterations the tolerance test
	// must hold before the run is declared converged. 1 is the plain
	// |Δcost| <= tolerance rule; larger values guard against stochastic
	// evaluators whose readings dip below tolerance by chance. Zero means 1.
	Patience int

	// Observe, if set, is called synchronously after each completed step
	// with the 1-based iteration number and the freshly measured cost.
	// It must not block for long; the loop has no suspension points.
	Observe func(iteration int, cost float64)
}

// SettingsError reports an invalid convergence setting.
type SettingsError struct {
	Field  string
	Reason string
}

func (e *SettingsError) Error() string {
	return "invalid setting: " + e.Field + " " + e.Reason
}

func (s *Settings) validate() error {
	if s.MaxIterations < 1 {
		return &SettingsError{Field: "MaxIterations", Reason: "must be at least 1"}
	}
	if s.Tolerance < 0 {
		return &SettingsError{Field: "Tolerance", Reason: "cannot be negative"}
	}
	if s.Patience < 0 {
		return &SettingsError{Field: "Patience", Reason: "cannot be negative"}
	}
	return nil
}

func (s *Settings) patience() int {
	if s.Patience < 1 {
		return 1
	}
	return s.Patience
}

// Result is the immutable outcome of a convergence run.
type Result struct {
	// Params is the parameter vector after the last completed step.
	Params []float64

	// Cost is the evaluator's reading at Params.
	Cost float64

	// Iterations is the 1-based count of completed optimizer steps.
	Iterations int

	// Converged reports whether the tolerance test stopped the run.
	// False means MaxIterations was exhausted, which is not an error;
	// callers decide whether the exhausted result is usable.
	Converged bool
}

// Optimize drives repeated optimizer steps until the cost stabilizes or
// MaxIterations is exhausted.
//
// Each iteration performs one StepAndCost call, which yields the new
// parameters plus the cost measured at the old point, then one fresh
// Evaluate at the new point. The convergence test compares those two
// readings, so it measures whether the most recent step still changed the
// cost meaningfully rather than whether two stale values agree.
//
// The loop owns its parameter vector exclusively: collaborators receive
// copies and never alias loop state. There are no retries and no internal
// cancellation; callers bound wall-clock time around this call if needed.
func Optimize(eval Evaluator, optimizer opt.StepOptimizer, initial []float64, s Settings) (*Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	params := append([]float64(nil), initial...)
	patience := s.patience()
	stable := 0
	var current float64

	for iter := 1; iter <= s.MaxIterations; iter++ {
		next, previous, err := optimizer.StepAndCost(eval, append([]float64(nil), params...))
		if err != nil {
			return nil, fmt.Errorf("optimizer step %d: %w", iter, err)
		}
		params = append(params[:0], next...)

		current, err = eval.Evaluate(append([]float64(nil), params...))
		if err != nil {
			return nil, fmt.Errorf("cost evaluation after step %d: %w", iter, err)
		}

		slog.Debug("Optimization step",
			"iteration", iter,
			"previous_cost", previous,
			"current_cost", current,
			"delta", current-previous,
		)
		if s.Observe != nil {
			s.Observe(iter, current)
		}

		if math.Abs(current-previous) <= s.Tolerance {
			stable++
			if stable >= patience {
				slog.Info("Converged", "iterations", iter, "cost", current)
				return &Result{
					Params:     append([]float64(nil), params...),
					Cost:       current,
					Iterations: iter,
					Converged:  true,
				}, nil
			}
		} else {
			stable = 0
		}
	}

	slog.Info("Iteration budget exhausted without convergence",
		"iterations", s.MaxIterations,
		"cost", current,
	)
	return &Result{
		Params:     append([]float64(nil), params...),
		Cost:       current,
		Iterations: s.MaxIterations,
		Converged:  false,
	}, nil
}
