package mcs

import (
	"github.com/crillab/gophermus/collab"
	"github.com/crillab/gophermus/formula"
	"github.com/crillab/gophermus/mss"
	"github.com/sirupsen/logrus"
)

// Enumerator drives the iterated-AtMost MCS enumeration loop. Each round
// builds a fresh collab.Solver: the previous round's solver, and any
// clauses it learned, are discarded.
type Enumerator struct {
	f    *formula.Formula
	opts Options

	// Logger receives Debug-level milestone lines (bound changed, MCS
	// found) and defaults to logrus.StandardLogger() when nil.
	Logger *logrus.Logger
	Stats  Stats

	mcses        []formula.IntSet
	ignored      formula.IntSet
	cannotIgnore formula.IntSet
}

// NewEnumerator builds an Enumerator over f, optionally resuming from a
// previously discovered MCS family (may be nil).
func NewEnumerator(f *formula.Formula, opts Options, resume []formula.IntSet) *Enumerator {
	return &Enumerator{
		f:            f,
		opts:         opts.normalize(),
		mcses:        append([]formula.IntSet(nil), resume...),
		ignored:      formula.NewIntSet(),
		cannotIgnore: formula.NewIntSet(),
	}
}

func (e *Enumerator) log() *logrus.Logger {
	if e.Logger == nil {
		return logrus.StandardLogger()
	}
	return e.Logger
}

// Enumerate runs the full outer loop until no more MCSes remain, calling
// onMCS as soon as each is safe to report (immediately when SizeLimit is 0,
// otherwise only once, at the very end, since PCS truncation makes
// intermediate output unsafe until subsumed PCSes have been removed).
func (e *Enumerator) Enumerate(onMCS func(formula.IntSet)) []formula.IntSet {
	bound := e.opts.InitialBound
	included := formula.NewIntSet()
	if e.opts.UseCores {
		included = e.getCore()
		if len(included) == 0 {
			// gophersat only ever certifies the empty clause, never a learned
			// clause along the way, so replaying the certificate reduces to
			// unit propagation over the original CNF: on an instance that
			// needs actual search to refute (no unit-propagation-derivable
			// contradiction), that yields an empty core. Instrumenting on an
			// empty included set would pin every selector active forever and
			// never make progress, so fall back to the uncored path instead.
			e.log().Debug("mcs: UNSAT core came back empty, falling back to full instrumentation")
			e.opts.UseCores = false
		}
	}

	// A resumed family that already blocks every MCS leaves nothing to find;
	// every bounded round would be UNSAT and never reach checkForMore.
	complete := len(e.mcses) > 0 && !e.checkForMore()
	for !complete {
		e.Stats.Rounds++
		e.log().WithField("bound", bound).Debug("mcs: starting round")
		s := collab.New()
		if e.opts.UseCores {
			s.EnableDerivation()
		}
		var instrumentSubset formula.IntSet
		if e.opts.UseCores {
			instrumentSubset = included
		}
		if !formula.BuildInstrumented(s, e.f, instrumentSubset) {
			break
		}
		e.addBlockingClauses(s)
		for y := range e.ignored {
			s.AddUnit(-(e.f.NbVars + y + 1), 0)
		}
		s.AddAtMost(e.atMostLits(included), bound)

		foundAny := e.solveRound(s, bound-e.opts.BoundIncrement+1, bound, onMCS)

		if foundAny && e.opts.MaxSAT {
			break
		}
		if e.opts.SizeLimit > 0 {
			e.removeSubsumed()
		}
		if foundAny {
			if e.opts.ReportThreshold > 0 && bound >= e.opts.ReportThreshold {
				break
			}
			if !e.checkForMore() {
				break
			}
		}
		if e.opts.UseCores {
			for tag := range s.AncestorTagSum() {
				included.Add(tag)
			}
		}
		bound += e.opts.BoundIncrement
	}

	if e.opts.SizeLimit > 0 {
		for _, m := range e.mcses {
			onMCS(m)
		}
	}
	return e.mcses
}

func (e *Enumerator) atMostLits(included formula.IntSet) []int {
	var lits []int
	if e.opts.UseCores {
		for _, tag := range included.Slice() {
			lits = append(lits, -(e.f.NbVars + (tag - 1) + 1))
		}
		return lits
	}
	for y := 0; y < e.f.NbSelectors; y++ {
		lits = append(lits, -(e.f.NbVars + y + 1))
	}
	return lits
}

// addBlockingClauses forbids every previously found MCS from being
// re-discovered: for MCS m, at least one of its selectors must now be
// reactivated (∨_{y∈m} Y_y).
func (e *Enumerator) addBlockingClauses(s *collab.Solver) {
	for _, m := range e.mcses {
		lits := make([]int, 0, len(m))
		for _, y := range m.Slice() {
			lits = append(lits, e.f.NbVars+y+1)
		}
		if len(lits) == 1 {
			s.AddUnit(lits[0], 0)
		} else {
			s.AddClause(lits, 0)
		}
	}
}

// solveRound repeatedly solves s, reading each model's deactivated
// selectors as a candidate MCS, growing it when lower != upper, applying
// truncation, and blocking it before continuing.
func (e *Enumerator) solveRound(s *collab.Solver, lower, upper int, onMCS func(formula.IntSet)) bool {
	foundAny := false
	doGrow := lower != upper

	for {
		e.Stats.SolveCalls++
		status := s.Solve()
		if status != collab.Sat {
			break
		}
		foundAny = true

		model := s.Model()
		mcsCandidate := formula.NewIntSet()
		seed := formula.NewIntSet()
		for y := 0; y < e.f.NbSelectors; y++ {
			if !model[e.f.NbVars+y] {
				mcsCandidate.Add(y)
			} else if doGrow {
				seed.Add(y)
			}
		}

		if doGrow && len(mcsCandidate) != lower {
			mss.Grow(s, e.f.NbVars, seed, mcsCandidate, lower)
		}

		reported := e.applyTruncation(mcsCandidate)

		if e.opts.SizeLimit == 0 {
			onMCS(reported)
		}
		e.mcses = append(e.mcses, reported)
		e.Stats.MCSesFound++
		e.log().WithField("size", len(reported)).Debug("mcs: found MCS")

		if e.opts.MaxSAT {
			return true
		}

		lits := make([]int, 0, len(reported))
		for _, y := range reported.Slice() {
			lits = append(lits, e.f.NbVars+y+1)
		}
		if len(lits) == 1 {
			s.AddUnit(lits[0], 0)
		} else {
			s.AddClause(lits, 0)
		}
	}
	return foundAny
}

// applyTruncation reduces mcsCandidate to at most SizeLimit selectors when
// truncation is active, updating ignored/cannotIgnore accordingly.
func (e *Enumerator) applyTruncation(mcsCandidate formula.IntSet) formula.IntSet {
	if e.opts.SizeLimit == 0 {
		return mcsCandidate
	}
	// Exclude anything already globally ignored.
	for y := range e.ignored {
		mcsCandidate.Remove(y)
	}
	if len(mcsCandidate) <= e.opts.SizeLimit {
		e.cannotIgnore = e.cannotIgnore.Union(mcsCandidate.Clone())
		return mcsCandidate
	}

	pcs := formula.NewIntSet()
	remaining := mcsCandidate.Clone()
	for y := range e.cannotIgnore {
		if remaining.Has(y) {
			pcs.Add(y)
			remaining.Remove(y)
		}
	}
	for _, y := range remaining.Slice() {
		if len(pcs) >= e.opts.SizeLimit {
			break
		}
		pcs.Add(y)
		remaining.Remove(y)
	}
	for y := range remaining {
		e.ignored.Add(y)
	}
	e.cannotIgnore = e.cannotIgnore.Union(pcs.Clone())
	return pcs
}

// removeSubsumed drops any MCS that strictly contains another, needed
// whenever truncation can leave a non-minimal PCS in the family.
func (e *Enumerator) removeSubsumed() {
	kept := make([]formula.IntSet, 0, len(e.mcses))
	for i, mi := range e.mcses {
		subsumed := false
		for j, mj := range e.mcses {
			if i == j || len(mj) >= len(mi) {
				continue
			}
			if isSubset(mj, mi) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, mi)
		}
	}
	e.mcses = kept
}

func isSubset(small, big formula.IntSet) bool {
	for y := range small {
		if !big.Has(y) {
			return false
		}
	}
	return true
}

// checkForMore builds a fresh, unbounded instrumented solver (no AtMost)
// with every found MCS blocked and every ignored selector forced out; if
// it is UNSAT, the current family is complete.
func (e *Enumerator) checkForMore() bool {
	s := collab.New()
	if !formula.BuildInstrumented(s, e.f, nil) {
		return false
	}
	e.addBlockingClauses(s)
	for y := range e.ignored {
		s.AddUnit(-(e.f.NbVars + y + 1), 0)
	}
	return s.Solve() == collab.Sat
}

// getCore extracts a single, possibly non-minimal UNSAT core over
// selectors from a plain (selector-free-clause, tagged) solve of the whole
// CNF, seeding UseCores' initial `included` set.
func (e *Enumerator) getCore() formula.IntSet {
	s := collab.New()
	s.EnableDerivation()
	if !formula.BuildPlain(s, e.f, nil, false) {
		return formula.NewIntSet()
	}
	if s.Solve() != collab.Unsat {
		return formula.NewIntSet()
	}
	core := formula.NewIntSet()
	for tag := range s.AncestorTagSum() {
		core.Add(tag)
	}
	return core
}
