package formula

// A Formula is a CNF, optionally grouped into clause-groups that share a
// single selector. Clauses are immutable once parsed.
type Formula struct {
	Clauses []Clause // original clauses, indexed by ClauseIdx
	NbVars  int      // number of original (non-selector) variables

	// GroupMap maps a ClauseIdx to its Selector. Nil means the default,
	// ungrouped mode: Selector(i) == Selector(ClauseIdx(i)) and
	// NbSelectors == len(Clauses).
	GroupMap []Selector

	// NbSelectors is the number of distinct Y-variables.
	NbSelectors int

	// ExtraYClauses are user-supplied constraints over the Y-variable
	// space, expressed as 1-based signed Y-variable literals, read from
	// the extra-Y-clauses file.
	ExtraYClauses [][]int
}

// Clause is an immutable ordered sequence of literals, signed 1-based
// variable indices in DIMACS convention.
type Clause []int

// NewUngrouped builds a Formula with the default one-selector-per-clause
// mapping (Y = n, selector y = i).
func NewUngrouped(clauses [][]int, nbVars int) *Formula {
	cs := make([]Clause, len(clauses))
	for i, c := range clauses {
		cs[i] = Clause(c)
	}
	return &Formula{
		Clauses:     cs,
		NbVars:      nbVars,
		NbSelectors: len(clauses),
	}
}

// SelectorOf returns the selector that gates clause i.
func (f *Formula) SelectorOf(i ClauseIdx) Selector {
	if f.GroupMap == nil {
		return Selector(i)
	}
	return f.GroupMap[i]
}

// SetGroupMap installs a clause->selector mapping and the resulting
// selector count, switching the Formula out of the default ungrouped mode.
func (f *Formula) SetGroupMap(groupMap []Selector, nbSelectors int) {
	f.GroupMap = groupMap
	f.NbSelectors = nbSelectors
}
