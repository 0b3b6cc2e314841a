package geom

import (
	"fmt"
	"math"
	"strings"
)

// Atom is a single element placed in 3-D space. Coordinates are in the
// unit declared by the input file (Angstrom for the XYZ inputs we read).
type Atom struct {
	Symbol  string
	X, Y, Z float64
}

// Molecule is an ordered collection of atoms plus the free-form comment
// from the geometry input. Atom order is meaningful: downstream orbital
// and qubit indices are assigned in this order, so it must match the
// input line order exactly.
type Molecule struct {
	Comment string
	Atoms   []Atom
}

// NumAtoms returns the number of atoms in the molecule.
func (m *Molecule) NumAtoms() int {
	return len(m.Atoms)
}

// Distance returns the Euclidean distance between atoms i and j.
func (m *Molecule) Distance(i, j int) float64 {
	a, b := m.Atoms[i], m.Atoms[j]
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Formula returns a compact elemental formula such as "H2" or "CH4".
// Elements appear in order of first occurrence; a count of one is omitted.
func (m *Molecule) Formula() string {
	counts := map[string]int{}
	var order []string
	for _, a := range m.Atoms {
		if counts[a.Symbol] == 0 {
			order = append(order, a.Symbol)
		}
		counts[a.Symbol]++
	}

	var b strings.Builder
	for _, sym := range order {
		b.WriteString(sym)
		if counts[sym] > 1 {
			fmt.Fprintf(&b, "%d", counts[sym])
		}
	}
	return b.String()
}
