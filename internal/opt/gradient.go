package opt

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// GradientDescent takes fixed-rate steps along a central finite-difference
// gradient estimate. The default rate matches the variational-chemistry
// setting this repo targets, where cost surfaces are smooth and low
// dimensional.
type GradientDescent struct {
	LearnRate float64 // step length along the negative gradient
	FDStep    float64 // displacement used for the finite differences
}

const (
	defaultLearnRate = 0.4
	defaultFDStep    = 1e-4
)

// NewGradientDescent creates a gradient-descent step optimizer.
// Non-positive arguments select the defaults.
func NewGradientDescent(learnRate, fdStep float64) *GradientDescent {
	if learnRate <= 0 {
		learnRate = defaultLearnRate
	}
	if fdStep <= 0 {
		fdStep = defaultFDStep
	}
	return &GradientDescent{LearnRate: learnRate, FDStep: fdStep}
}

// StepAndCost evaluates the objective at params, estimates the gradient by
// central differences (two evaluations per dimension), and returns the
// descended point plus the cost at the input point.
func (g *GradientDescent) StepAndCost(obj Objective, params []float64) ([]float64, float64, error) {
	cost, err := obj.Evaluate(append([]float64(nil), params...))
	if err != nil {
		return nil, 0, fmt.Errorf("evaluating current point: %w", err)
	}

	grad := make([]float64, len(params))
	probe := append([]float64(nil), params...)
	for i := range params {
		probe[i] = params[i] + g.FDStep
		fp, err := obj.Evaluate(probe)
		if err != nil {
			return nil, 0, fmt.Errorf("forward probe of dimension %d: %w", i, err)
		}
		probe[i] = params[i] - g.FDStep
		fm, err := obj.Evaluate(probe)
		if err != nil {
			return nil, 0, fmt.Errorf("backward probe of dimension %d: %w", i, err)
		}
		probe[i] = params[i]
		grad[i] = (fp - fm) / (2 * g.FDStep)
	}

	next := append([]float64(nil), params...)
	floats.AddScaled(next, -g.LearnRate, grad)
	return next, cost, nil
}
