package vqe

import (
	"fmt"
	"log/slog"

	"github.com/agallais/Quantum-aqora/internal/geom"
	"github.com/agallais/Quantum-aqora/internal/opt"
)

// Dimensioned is implemented by evaluators that know their parameter count.
// The pipeline uses it to size the initial vector when none is supplied.
type Dimensioned interface {
	Dimension() int
}

// Bounded is implemented by evaluators with box-bounded parameters.
// Required when a Seeder is configured.
type Bounded interface {
	Bounds() (lower, upper []float64)
}

// Pipeline wires the full run: geometry text in, optimization result out.
// Build turns a parsed molecule into the cost evaluator; everything past
// that boundary (Hamiltonian construction, circuit simulation) is the
// evaluator's business and opaque to this package.
type Pipeline struct {
	Build     func(*geom.Molecule) (Evaluator, error)
	Optimizer opt.StepOptimizer
	Seeder    opt.Seeder // optional global search for the starting point
	Initial   []float64  // optional explicit starting point; wins over Seeder
	Settings  Settings
}

// Run parses the geometry text, builds the evaluator, picks a starting
// point and drives the convergence loop. Parse failures surface as
// *geom.FormatError; evaluator and optimizer failures propagate unwrapped
// beyond a short context prefix.
func (p *Pipeline) Run(text string) (*Result, error) {
	mol, err := geom.Parse(text)
	if err != nil {
		return nil, err
	}
	slog.Info("Parsed geometry", "formula", mol.Formula(), "atoms", mol.NumAtoms())

	eval, err := p.Build(mol)
	if err != nil {
		return nil, fmt.Errorf("building evaluator: %w", err)
	}

	initial, err := p.startingPoint(eval)
	if err != nil {
		return nil, err
	}

	result, err := Optimize(eval, p.Optimizer, initial, p.Settings)
	if err != nil {
		return nil, err
	}

	slog.Info("Optimization finished",
		"cost", result.Cost,
		"iterations", result.Iterations,
		"converged", result.Converged,
	)
	return result, nil
}

func (p *Pipeline) startingPoint(eval Evaluator) ([]float64, error) {
	if p.Initial != nil {
		return append([]float64(nil), p.Initial...), nil
	}

	if p.Seeder != nil {
		bounded, ok := eval.(Bounded)
		if !ok {
			return nil, fmt.Errorf("seeding requested but evaluator exposes no parameter bounds")
		}
		lower, upper := bounded.Bounds()
		seed, err := p.Seeder.Seed(eval, lower, upper)
		if err != nil {
			return nil, fmt.Errorf("seeding starting point: %w", err)
		}
		slog.Debug("Seeded starting point", "dim", len(seed))
		return seed, nil
	}

	dimensioned, ok := eval.(Dimensioned)
	if !ok {
		return nil, fmt.Errorf("no initial parameters given and evaluator exposes no dimension")
	}
	return make([]float64, dimensioned.Dimension()), nil
}
