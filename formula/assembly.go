package formula

import "github.com/crillab/gophermus/collab"

// BuildInstrumented installs f into s with one selector literal per clause
// (or per clause-group, when f has a group map). When instrumentSubset is
// non-nil, only clauses whose 1-based selector is in instrumentSubset get
// an actual selector literal; every other clause is added bare, and its
// otherwise-unused selector variable is pinned to true by a unit clause —
// this avoids the solver making free decisions on Y-variables that no
// longer gate anything. Returns false iff the resulting instance is
// trivially UNSAT.
func BuildInstrumented(s *collab.Solver, f *Formula, instrumentSubset IntSet) bool {
	for i := 0; i < f.NbVars+f.NbSelectors; i++ {
		s.NewVar()
	}
	for i := range f.Clauses {
		y := f.SelectorOf(ClauseIdx(i))
		yLit := f.NbVars + int(y) + 1
		lits := append([]int(nil), f.Clauses[i]...)

		if instrumentSubset == nil || instrumentSubset.Has(int(y)+1) {
			lits = append(lits, -yLit)
			s.AddClause(lits, int(y)+1)
		} else {
			s.AddUnit(yLit, 0)
			if len(lits) == 1 {
				s.AddUnit(lits[0], int(y)+1)
			} else {
				s.AddClause(lits, int(y)+1)
			}
		}
	}
	for _, yc := range f.ExtraYClauses {
		lits := make([]int, len(yc))
		for i, lit := range yc {
			v := f.NbVars + abs(lit)
			if lit > 0 {
				lits[i] = v
			} else {
				lits[i] = -v
			}
		}
		s.AddClause(lits, 0)
	}
	return s.Build()
}

// BuildPlain installs f into s without selector variables: every clause is
// tagged with its (1-based) selector index for derivation tracking. When
// exclude is non-nil, clauses whose selector is in exclude are skipped
// entirely. When reverseOrder is set, clauses are installed from last to
// first, used to recompute a structurally different UNSAT core for
// intersection.
func BuildPlain(s *collab.Solver, f *Formula, exclude IntSet, reverseOrder bool) bool {
	for i := 0; i < f.NbVars; i++ {
		s.NewVar()
	}
	n := len(f.Clauses)
	indices := make([]int, n)
	for i := range indices {
		if reverseOrder {
			indices[i] = n - 1 - i
		} else {
			indices[i] = i
		}
	}
	for _, i := range indices {
		y := f.SelectorOf(ClauseIdx(i))
		if exclude != nil && exclude.Has(int(y)+1) {
			continue
		}
		lits := f.Clauses[i]
		if len(lits) == 1 {
			s.AddUnit(lits[0], int(y)+1)
		} else {
			s.AddClause(append([]int(nil), lits...), int(y)+1)
		}
	}
	return s.Build()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
