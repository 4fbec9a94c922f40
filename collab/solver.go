// Package collab adapts a single-use gophersat solver.Solver to the
// narrower SAT Collaborator contract the MCS/MUS engines need: variable
// allocation, tagged clause/unit/AtMost-k addition, assumption-based
// incremental solving, and resolution-derivation tag extraction. Formula
// Assembly, MSS Growth, the MCS Enumerator and the Hitting-Set Engine only
// ever talk to this package, never to solver directly.
package collab

import (
	"github.com/crillab/gophermus/solver"
)

// Status is the outcome of a solve or assumption: Sat, Unsat, or Indet.
type Status = solver.Status

// Re-exported so callers never need to import solver directly.
const (
	Indet = solver.Indet
	Sat   = solver.Sat
	Unsat = solver.Unsat
)

// Solver is a single-round SAT Collaborator. It is built up by NewVar,
// AddClause/AddUnit and AddAtMost calls, then finalized once by Build; only
// after Build may Assume/Solve/Model be called. A Solver is meant to be
// used for exactly one phase: build it, solve it (possibly through several
// Assume/Solve cycles), then discard it. Learned clauses do not carry over
// to a fresh Solver.
type Solver struct {
	nbVars  int
	pending [][]int
	atMosts []atMostSpec

	built *solver.Solver

	derivation bool
	replay     *replayProblem
}

type atMostSpec struct {
	lits []int
	k    int
}

// New returns an empty, unbuilt Solver.
func New() *Solver {
	return &Solver{}
}

// NewVar allocates a fresh variable and returns its 1-based index. Must be
// called before Build; the returned index is only meaningful once some
// clause or unit added later actually references it.
func (s *Solver) NewVar() int {
	s.nbVars++
	return s.nbVars
}

func (s *Solver) ensureVars(lits []int) {
	for _, l := range lits {
		v := l
		if v < 0 {
			v = -v
		}
		if v > s.nbVars {
			s.nbVars = v
		}
	}
	if s.replay != nil {
		s.replay.ensureVars(s.nbVars)
	}
}

// AddClause adds a clause, optionally tagged with an origin identifier.
// Before Build, the clause is queued; after Build, it is appended live to
// the running solver (used by the MCS Enumerator to add blocking clauses
// without restarting the search). gophersat's AppendClause does not report
// an immediate top-level conflict; a clause that turns the instance UNSAT
// surfaces at the next Solve() call instead.
func (s *Solver) AddClause(lits []int, tag int) {
	s.ensureVars(lits)
	if s.derivation {
		cp := append([]int(nil), lits...)
		s.replay.addOriginal(cp, tag)
	}
	if s.built == nil {
		s.pending = append(s.pending, append([]int(nil), lits...))
		return
	}
	s.appendLive(lits)
}

// AddUnit is a convenience for AddClause with a single literal.
func (s *Solver) AddUnit(lit int, tag int) {
	s.AddClause([]int{lit}, tag)
}

// AddAtMost adds a cardinality constraint sum(lits) <= k. Before Build it
// is queued alongside the other pending constraints; after Build it is
// appended live, exactly like AddClause.
func (s *Solver) AddAtMost(lits []int, k int) {
	s.ensureVars(lits)
	am := atMostSpec{lits: append([]int(nil), lits...), k: k}
	if s.built == nil {
		s.atMosts = append(s.atMosts, am)
		return
	}
	s.appendAtMostLive(am)
}

// EnableDerivation turns on resolution-derivation recording. Must be called
// before any clause is added, so every clause of the round is available for
// the eventual replay.
func (s *Solver) EnableDerivation() {
	s.derivation = true
	if s.replay == nil {
		s.replay = newReplayProblem()
	}
}

// Build finalizes the queued clauses, units and AtMost constraints into a
// live solver instance. Returns false iff the instance is trivially UNSAT
// at construction time; a conflict introduced only by an AtMost constraint
// is instead reported by the next Solve() call, since AppendClause itself
// carries no status feedback.
func (s *Solver) Build() bool {
	pb := solver.ParseSlice(s.pending)
	built := solver.New(pb)
	if s.derivation {
		built.Certified = true
		built.CertChan = make(chan string)
		s.replay.initTagged()
	}
	s.built = built
	for _, am := range s.atMosts {
		s.appendAtMostLive(am)
	}
	return pb.Status != solver.Unsat
}

func (s *Solver) appendLive(lits []int) {
	ls := make([]solver.Lit, len(lits))
	for i, v := range lits {
		ls[i] = solver.IntToLit(v)
	}
	s.built.AppendClause(solver.NewClause(ls))
}

// appendAtMostLive installs sum(lits) <= k the way card.go's AtMost1
// derives "at most one": negate every literal and require AtLeast (n-k) of
// the negations, generalized here from 1 to an arbitrary k.
func (s *Solver) appendAtMostLive(am atMostSpec) {
	n := len(am.lits)
	card := n - am.k
	if card <= 0 {
		return
	}
	if card > n {
		card = n
	}
	negated := make([]solver.Lit, n)
	for i, v := range am.lits {
		negated[i] = solver.IntToLit(-v)
	}
	s.built.AppendClause(solver.NewCardClause(negated, card))
}

// Assume pushes a set of literal assumptions, replacing any previous ones,
// and runs unit propagation. gophersat's Assume already performs BCP
// eagerly, so the two are not exposed as separate steps here.
func (s *Solver) Assume(lits []int) Status {
	ls := make([]solver.Lit, len(lits))
	for i, v := range lits {
		ls[i] = solver.IntToLit(v)
	}
	return s.built.Assume(ls)
}

// CancelAll clears every assumption. gophersat's Assume always resets to
// level 0 before replaying its argument, so a partial pop to an
// intermediate level is never needed by any caller in this module;
// CancelAll is Assume(nil).
func (s *Solver) CancelAll() Status {
	return s.built.Assume(nil)
}

// Solve runs (possibly repeated, geometrically-growing) search until a
// definite answer. When derivation is enabled, the certificate stream is
// drained concurrently with the search — required to avoid deadlocking on
// gophersat's unbuffered CertChan — and replayed to compute the ancestor
// tag set once Unsat.
func (s *Solver) Solve() Status {
	if !s.derivation {
		return s.built.Solve()
	}
	done := make(chan Status, 1)
	go func() {
		st := s.built.Solve()
		close(s.built.CertChan)
		done <- st
	}()
	// gophersat only ever writes the empty clause to CertChan, so the replay
	// is really unit propagation over the original clauses; on instances
	// that need actual search to refute, that can under-report all the way
	// down to an empty AncestorTagSum. Callers that use this for core
	// guidance must treat an empty result as "no usable core", not as
	// "empty core", and fall back accordingly.
	_, _ = s.replay.replayCertificate(s.built.CertChan)
	return <-done
}

// Model returns, after a Sat outcome, the value bound to each variable
// (0-based: variable v+1 is Model()[v]).
func (s *Solver) Model() []bool {
	return s.built.Model()
}

// AncestorTagSum returns the union of origin tags of every clause that
// participated in the last Unsat derivation.
func (s *Solver) AncestorTagSum() map[int]struct{} {
	if s.replay == nil {
		return map[int]struct{}{}
	}
	return s.replay.ancestorTagSum()
}
