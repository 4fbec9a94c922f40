// Package mss grows a partial satisfiable assignment into a maximal
// satisfiable subset of clauses, greedily and without backtracking.
package mss

import (
	"github.com/crillab/gophermus/collab"
	"github.com/crillab/gophermus/formula"
)

// Grow extends seed, a set of selectors already known to hold in some
// model, into a maximal satisfiable subset by trying to additionally
// activate each remaining selector in mcs, in ascending order. Selectors
// that turn out to be satisfiable are removed from mcs, directly or
// "collaterally" when the resulting model happens to already satisfy a
// later one. mcs is mutated in place to the grown MCS; s is left with no
// assumptions on return.
//
// gophersat's Assume always replays its full argument from the solver's
// root level rather than pushing on top of the current trail, so unlike
// the reference implementation's assume/cancel pair, each trial here
// re-sends the whole committed assumption list plus the one literal under
// test; a failed trial is simply dropped instead of popped.
func Grow(s *collab.Solver, nbVars int, seed formula.IntSet, mcs formula.IntSet, lowBound int) {
	committed := make([]int, 0, len(seed)+len(mcs))
	for y := range seed {
		committed = append(committed, nbVars+y+1)
	}
	s.Assume(committed)

	order := mcs.Slice()
	curSize := len(mcs)

	for _, y := range order {
		if !mcs.Has(y) {
			continue
		}
		yLit := nbVars + y + 1
		trial := append(append([]int(nil), committed...), yLit)
		status := s.Assume(trial)
		if status != collab.Unsat {
			status = s.Solve()
		}
		if status != collab.Sat {
			continue
		}

		committed = trial
		mcs.Remove(y)
		curSize--

		model := s.Model()
		for _, y2 := range order {
			if y2 <= y || !mcs.Has(y2) {
				continue
			}
			if !model[nbVars+y2] {
				continue
			}
			mcs.Remove(y2)
			curSize--
			committed = append(committed, nbVars+y2+1)
			s.Assume(committed)
			if lowBound > 0 && curSize == lowBound {
				s.CancelAll()
				return
			}
		}

		if lowBound > 0 && curSize == lowBound {
			s.CancelAll()
			return
		}
	}

	s.CancelAll()
}
