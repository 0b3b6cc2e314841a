package opt

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflySeeder runs the external Mayfly swarm optimizer as a coarse global
// search to pick a starting point for the gradient loop. Useful when the
// cost surface has several local minima and a zero vector would start the
// descent in the wrong basin.
type MayflySeeder struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayflySeeder creates a Mayfly-backed seeder.
// popSize must be at least 20 for mayfly v0.1.0.
func NewMayflySeeder(maxIters, popSize int, seed int64) *MayflySeeder {
	return &MayflySeeder{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Seed searches inside [lower, upper] and returns the best position found.
// Objective failures during the search abort seeding; they are reported
// after the swarm finishes since the library offers no early exit.
func (m *MayflySeeder) Seed(obj Objective, lower, upper []float64) ([]float64, error) {
	if len(lower) == 0 || len(lower) != len(upper) {
		return nil, fmt.Errorf("seeding bounds mismatch: %d lower vs %d upper", len(lower), len(upper))
	}

	var evalErr error
	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(x []float64) float64 {
		v, err := obj.Evaluate(append([]float64(nil), x...))
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			return math.Inf(1)
		}
		return v
	}
	config.ProblemSize = len(lower)
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize

	// The library takes scalar bounds shared by all dimensions.
	config.LowerBound = lower[0]
	config.UpperBound = upper[0]

	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, fmt.Errorf("mayfly search: %w", err)
	}
	if evalErr != nil {
		return nil, fmt.Errorf("objective failed during seeding: %w", evalErr)
	}

	return result.GlobalBest.Position, nil
}
