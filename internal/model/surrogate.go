// Package model provides a self-contained stand-in for the quantum backend
// that would normally measure a molecular energy. It builds a small
// symmetric surrogate Hamiltonian from the geometry and exposes it through
// the same evaluator capability a real backend would implement, so the
// convergence loop never knows the difference.
package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/agallais/Quantum-aqora/internal/geom"
)

// atomicNumber covers the light elements this surrogate is meant for.
// Unknown symbols are rejected at construction, not at evaluation time.
var atomicNumber = map[string]int{
	"H": 1, "He": 2,
	"Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8, "F": 9, "Ne": 10,
	"Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15, "S": 16, "Cl": 17, "Ar": 18,
}

// DimensionError reports a parameter vector whose length does not match
// the evaluator's variational dimension.
type DimensionError struct {
	Want, Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("parameter dimension mismatch: evaluator expects %d, got %d", e.Want, e.Got)
}

// Surrogate evaluates E(theta) = <psi(theta)|H|psi(theta)> + Vnn for a
// geometry-derived symmetric H and the hyperspherical ansatz state
// psi(theta). It is deterministic and safe for concurrent use once built.
type Surrogate struct {
	h         *mat.SymDense
	repulsion float64
	dim       int
}

// New builds the surrogate for mol. Diagonal entries are per-site element
// terms, off-diagonal entries couple atom pairs with an exponential decay
// in their distance, and Vnn is the usual pairwise Coulomb repulsion.
// Fails for unknown element symbols and for coincident atoms.
func New(mol *geom.Molecule) (*Surrogate, error) {
	n := mol.NumAtoms()
	if n < 2 {
		return nil, fmt.Errorf("surrogate model needs at least 2 atoms, got %d", n)
	}

	charges := make([]float64, n)
	for i, a := range mol.Atoms {
		z, ok := atomicNumber[a.Symbol]
		if !ok {
			return nil, fmt.Errorf("unknown element symbol %q at atom %d", a.Symbol, i)
		}
		charges[i] = float64(z)
	}

	h := mat.NewSymDense(n, nil)
	var repulsion float64
	for i := 0; i < n; i++ {
		h.SetSym(i, i, -charges[i])
		for j := i + 1; j < n; j++ {
			r := mol.Distance(i, j)
			if r == 0 {
				return nil, fmt.Errorf("atoms %d and %d coincide", i, j)
			}
			h.SetSym(i, j, -math.Exp(-r))
			repulsion += charges[i] * charges[j] / r
		}
	}

	return &Surrogate{h: h, repulsion: repulsion, dim: n - 1}, nil
}

// Dimension returns the number of variational angles.
func (s *Surrogate) Dimension() int { return s.dim }

// Bounds returns the box the angles live in. One period of the
// hyperspherical map covers every normalized state, so [-pi, pi] suffices.
func (s *Surrogate) Bounds() (lower, upper []float64) {
	lower = make([]float64, s.dim)
	upper = make([]float64, s.dim)
	for i := range lower {
		lower[i] = -math.Pi
		upper[i] = math.Pi
	}
	return lower, upper
}

// Evaluate computes the surrogate energy at the given angles.
func (s *Surrogate) Evaluate(params []float64) (float64, error) {
	if len(params) != s.dim {
		return 0, &DimensionError{Want: s.dim, Got: len(params)}
	}

	psi := state(params)
	v := mat.NewVecDense(len(psi), psi)
	var hv mat.VecDense
	hv.MulVec(s.h, v)
	return mat.Dot(v, &hv) + s.repulsion, nil
}

// state maps d angles to a unit vector in d+1 dimensions via hyperspherical
// coordinates: every normalized real state is reachable.
func state(angles []float64) []float64 {
	psi := make([]float64, len(angles)+1)
	sinProduct := 1.0
	for i, a := range angles {
		psi[i] = sinProduct * math.Cos(a)
		sinProduct *= math.Sin(a)
	}
	psi[len(angles)] = sinProduct
	return psi
}
