package opt

// Objective is the cost capability optimizers drive: it maps a parameter
// vector to a scalar to be minimized. Implementations may be stochastic;
// nothing here assumes repeated evaluations at the same point agree.
type Objective interface {
	Evaluate(params []float64) (float64, error)
}

// StepOptimizer advances a single optimization step.
//
// StepAndCost returns the updated parameter vector together with the cost
// measured at the *input* parameters. That cost is a byproduct of computing
// the step (a gradient estimate already evaluates the current point), so it
// is returned for reuse instead of forcing callers to re-evaluate.
// Implementations must not retain or mutate the params slice they receive.
type StepOptimizer interface {
	StepAndCost(obj Objective, params []float64) (next []float64, cost float64, err error)
}

// Seeder proposes a starting parameter vector inside the given bounds,
// typically by a coarse global search. lower and upper have the problem's
// dimensionality.
type Seeder interface {
	Seed(obj Objective, lower, upper []float64) ([]float64, error)
}
