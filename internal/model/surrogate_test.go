package model

import (
	"errors"
	"math"
	"testing"

	"github.com/agallais/Quantum-aqora/internal/geom"
)

func h2() *geom.Molecule {
	mol, err := geom.Parse("2\nH2\nH 0.3710 0.0 0.0\nH -0.3710 0.0 0.0")
	if err != nil {
		panic(err)
	}
	return mol
}

func TestNewH2(t *testing.T) {
	s, err := New(h2())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.Dimension() != 1 {
		t.Errorf("Expected 1 variational angle for 2 atoms, got %d", s.Dimension())
	}

	lower, upper := s.Bounds()
	if len(lower) != 1 || len(upper) != 1 {
		t.Fatalf("Expected 1-dimensional bounds, got %d/%d", len(lower), len(upper))
	}
	if lower[0] != -math.Pi || upper[0] != math.Pi {
		t.Errorf("Expected [-pi, pi] bounds, got [%g, %g]", lower[0], upper[0])
	}
}

func TestEvaluateH2(t *testing.T) {
	s, err := New(h2())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// At theta = 0 the state is (1, 0): energy is h00 + Vnn.
	// h00 = -1 (hydrogen site term), Vnn = 1*1/0.742.
	e, err := s.Evaluate([]float64{0})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	want := -1 + 1/0.742
	if math.Abs(e-want) > 1e-12 {
		t.Errorf("Expected energy %g at theta=0, got %g", want, e)
	}
}

func TestEvaluateSymmetricMinimum(t *testing.T) {
	s, err := New(h2())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Both site terms are equal, so the ground state is the symmetric
	// combination at theta = pi/4 with energy h00 - |h01| + Vnn.
	r := 0.742
	groundState := -1 - math.Exp(-r) + 1/r

	e, err := s.Evaluate([]float64{math.Pi / 4})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if math.Abs(e-groundState) > 1e-12 {
		t.Errorf("Expected ground energy %g at theta=pi/4, got %g", groundState, e)
	}

	// Every other angle must sit at or above the ground state.
	for theta := -math.Pi; theta <= math.Pi; theta += 0.1 {
		v, err := s.Evaluate([]float64{theta})
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if v < groundState-1e-12 {
			t.Errorf("Energy %g at theta=%g below ground state %g", v, theta, groundState)
		}
	}
}

func TestEvaluateDimensionMismatch(t *testing.T) {
	s, err := New(h2())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = s.Evaluate([]float64{0, 0})
	var derr *DimensionError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected *DimensionError, got %v", err)
	}
	if derr.Want != 1 || derr.Got != 2 {
		t.Errorf("Expected Want=1 Got=2, got %+v", derr)
	}
}

func TestNewRejectsUnknownElement(t *testing.T) {
	mol, err := geom.Parse("2\nmystery\nXx 0 0 0\nH 1 0 0")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := New(mol); err == nil {
		t.Error("Expected error for unknown element symbol")
	}
}

func TestNewRejectsCoincidentAtoms(t *testing.T) {
	mol, err := geom.Parse("2\noverlap\nH 1 1 1\nH 1 1 1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := New(mol); err == nil {
		t.Error("Expected error for coincident atoms")
	}
}

func TestNewRejectsTooFewAtoms(t *testing.T) {
	mol, err := geom.Parse("1\nlone\nH 0 0 0")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := New(mol); err == nil {
		t.Error("Expected error for single-atom molecule")
	}
}

func TestStateIsNormalized(t *testing.T) {
	angles := []float64{0.3, -1.2, 2.5}
	psi := state(angles)
	if len(psi) != len(angles)+1 {
		t.Fatalf("Expected state dimension %d, got %d", len(angles)+1, len(psi))
	}
	var norm float64
	for _, v := range psi {
		norm += v * v
	}
	if math.Abs(norm-1) > 1e-12 {
		t.Errorf("Expected unit norm, got %g", norm)
	}
}
