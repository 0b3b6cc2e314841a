package opt

import (
	"errors"
	"math"
	"testing"
)

// sphereObjective counts evaluations of f(x) = sum(x_i^2).
type sphereObjective struct {
	calls int
}

func (s *sphereObjective) Evaluate(x []float64) (float64, error) {
	s.calls++
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum, nil
}

func TestGradientDescentOnSphere(t *testing.T) {
	obj := &sphereObjective{}
	gd := NewGradientDescent(0.25, 1e-5)

	params := []float64{2, -3}
	for i := 0; i < 50; i++ {
		next, _, err := gd.StepAndCost(obj, params)
		if err != nil {
			t.Fatalf("StepAndCost failed: %v", err)
		}
		params = next
	}

	for i, v := range params {
		if math.Abs(v) > 1e-3 {
			t.Errorf("Parameter %d = %g, expected near 0", i, v)
		}
	}
}

func TestStepAndCostReturnsCostAtInput(t *testing.T) {
	obj := &sphereObjective{}
	gd := NewGradientDescent(0.1, 1e-5)

	params := []float64{1, 2}
	_, cost, err := gd.StepAndCost(obj, params)
	if err != nil {
		t.Fatalf("StepAndCost failed: %v", err)
	}

	// f(1,2) = 5, measured at the input point, not the descended one.
	if cost != 5 {
		t.Errorf("Expected cost 5 at input point, got %g", cost)
	}

	// One central evaluation plus two probes per dimension.
	if obj.calls != 1+2*len(params) {
		t.Errorf("Expected %d evaluations, got %d", 1+2*len(params), obj.calls)
	}
}

func TestStepAndCostDoesNotMutateInput(t *testing.T) {
	obj := &sphereObjective{}
	gd := NewGradientDescent(0.5, 1e-5)

	params := []float64{1, -1}
	next, _, err := gd.StepAndCost(obj, params)
	if err != nil {
		t.Fatalf("StepAndCost failed: %v", err)
	}

	if params[0] != 1 || params[1] != -1 {
		t.Errorf("Input params mutated: %v", params)
	}
	if &next[0] == &params[0] {
		t.Error("Expected a fresh slice for the updated parameters")
	}
}

type failingObjective struct{}

var errBackend = errors.New("backend unavailable")

func (failingObjective) Evaluate([]float64) (float64, error) {
	return 0, errBackend
}

func TestStepAndCostPropagatesFailure(t *testing.T) {
	gd := NewGradientDescent(0.1, 1e-5)
	_, _, err := gd.StepAndCost(failingObjective{}, []float64{0})
	if !errors.Is(err, errBackend) {
		t.Errorf("Expected wrapped backend error, got %v", err)
	}
}

func TestGradientDescentDefaults(t *testing.T) {
	gd := NewGradientDescent(0, 0)
	if gd.LearnRate != defaultLearnRate {
		t.Errorf("Expected default learn rate %g, got %g", defaultLearnRate, gd.LearnRate)
	}
	if gd.FDStep != defaultFDStep {
		t.Errorf("Expected default FD step %g, got %g", defaultFDStep, gd.FDStep)
	}
}
