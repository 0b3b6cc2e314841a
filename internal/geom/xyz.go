package geom

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// FormatError describes malformed geometry text. Line is 1-based; Token
// holds the offending token when one can be pinpointed.
type FormatError struct {
	Line  int
	Token string
	Msg   string
}

func (e *FormatError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("geometry line %d: %s: %q", e.Line, e.Msg, e.Token)
	}
	return fmt.Sprintf("geometry line %d: %s", e.Line, e.Msg)
}

func (e *FormatError) Is(target error) bool {
	_, ok := target.(*FormatError)
	return ok
}

// Parse reads an XYZ-style molecular geometry:
//
//	<N>                  atom count
//	<comment>            verbatim, may be empty
//	<symbol> <x> <y> <z> repeated exactly N times
//
// Any content after the N-th atom line is ignored. Symbols are taken as-is;
// chemical plausibility is not checked here. Parse is a pure function of its
// input and never partially succeeds: on malformed input it returns a
// *FormatError and no Molecule.
func Parse(text string) (*Molecule, error) {
	sc := bufio.NewScanner(strings.NewReader(text))

	if !sc.Scan() {
		return nil, &FormatError{Line: 1, Msg: "missing atom count line"}
	}
	head := strings.TrimSpace(sc.Text())
	n, err := strconv.Atoi(head)
	if err != nil {
		return nil, &FormatError{Line: 1, Token: head, Msg: "atom count is not an integer"}
	}
	if n < 0 {
		return nil, &FormatError{Line: 1, Token: head, Msg: "atom count is negative"}
	}

	if !sc.Scan() {
		return nil, &FormatError{Line: 2, Msg: "missing comment line"}
	}
	comment := sc.Text()

	atoms := make([]Atom, 0, n)
	for i := 0; i < n; i++ {
		line := 3 + i
		if !sc.Scan() {
			return nil, &FormatError{
				Line: line,
				Msg:  fmt.Sprintf("declared %d atoms but input ends after %d atom lines", n, i),
			}
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			return nil, &FormatError{Line: line, Msg: "atom line needs a symbol and three coordinates"}
		}
		var c [3]float64
		for j := 0; j < 3; j++ {
			tok := fields[1+j]
			if !decimalToken(tok) {
				return nil, &FormatError{Line: line, Token: tok, Msg: "coordinate is not a number"}
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &FormatError{Line: line, Token: tok, Msg: "coordinate is not a number"}
			}
			c[j] = v
		}
		atoms = append(atoms, Atom{Symbol: fields[0], X: c[0], Y: c[1], Z: c[2]})
	}

	return &Molecule{Comment: comment, Atoms: atoms}, nil
}

// decimalToken reports whether tok is limited to decimal or scientific
// notation. strconv.ParseFloat alone would also admit inf, NaN, hex floats
// and underscore digit separators, none of which belong in a geometry file.
func decimalToken(tok string) bool {
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == '.' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	return true
}

// Write serializes mol back to the grammar Parse accepts. Coordinates use
// the shortest representation that round-trips through float64, so
// Parse(Write(mol)) reproduces mol exactly.
func Write(mol *Molecule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n%s\n", len(mol.Atoms), mol.Comment)
	for _, a := range mol.Atoms {
		fmt.Fprintf(&b, "%s %g %g %g\n", a.Symbol, a.X, a.Y, a.Z)
	}
	return b.String()
}
