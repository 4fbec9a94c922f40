// Package hitset builds Minimal Unsatisfiable Subsets out of a family of
// Minimal Correction Sets by recursive hitting-set search: MUSes are exactly
// the minimal transversals ("hitting sets") of the MCS hypergraph. The
// search branches on an undecided clause, first including it (removing
// every cover it now hits, and simplifying the rest) and recursing over
// each such cover in turn, then excluding it and continuing.
package hitset

import (
	"math"
	"sort"
	"time"

	"github.com/crillab/gophermus/formula"
	"github.com/sirupsen/logrus"
)

// Options configures one MUS construction run.
type Options struct {
	// BranchAndBound prunes any branch whose MIS-based lower bound already
	// meets or exceeds the best MUS size found so far, so each emitted MUS
	// is strictly smaller than the one before it and the last one emitted
	// has minimum cardinality; MUSes no smaller than the best so far are
	// not reported.
	BranchAndBound bool
	// SortByFrequency lays the dense search space out with rarely-hit
	// selectors first (empirically faster); false uses natural ascending
	// selector order instead.
	SortByFrequency bool
	// ReportEachTime, when set, has Run report a Unix timestamp alongside
	// every emitted MUS, mirroring outputMUS's reportEachTime branch.
	ReportEachTime bool
}

// DefaultOptions returns frequency-sorted, non-branch-and-bound defaults.
func DefaultOptions() Options {
	return Options{SortByFrequency: true}
}

// Engine constructs MUSes from a cover family via constructMUS-style
// branch-and-bound hitting-set search. A single Engine is meant to be used
// for one Run call.
type Engine struct {
	opts Options

	// Logger receives a Debug line per emitted MUS, defaulting to
	// logrus.StandardLogger() when nil.
	Logger *logrus.Logger

	singletons []int // original selectors forced into every MUS
	m          *mapping
	visited    map[string]struct{}
	bbUpper    int
	onMUS      func(mus []int, timestamp int64)
	results    [][]int
}

// New returns an Engine configured by opts.
func New(opts Options) *Engine {
	return &Engine{
		opts:    opts,
		visited: make(map[string]struct{}),
		bbUpper: math.MaxInt,
	}
}

func (e *Engine) log() *logrus.Logger {
	if e.Logger == nil {
		return logrus.StandardLogger()
	}
	return e.Logger
}

// Run constructs every MUS implied by covers (each cover a set of original
// selector indices, exactly the MCS family the hitting-set duality applies
// to). onMUS, if non-nil, is called once per MUS as soon as it is found, in
// original selector indices, ascending; timestamp is the Unix time of
// discovery when Options.ReportEachTime is set, else 0.
func (e *Engine) Run(covers []formula.IntSet, onMUS func(mus []int, timestamp int64)) [][]int {
	if len(covers) == 0 {
		// No MCSes means the formula was satisfiable to begin with: there
		// is no MUS to report, not a vacuous one.
		return nil
	}
	e.onMUS = onMUS

	// Split off singleton covers: any selector appearing alone in a cover
	// must be in every MUS, so it is pulled out once up front instead of
	// being carried through the whole search.
	var nonSingleton []formula.IntSet
	seen := formula.NewIntSet()
	for _, c := range covers {
		switch len(c) {
		case 0:
			continue
		case 1:
			for sel := range c {
				if !seen.Has(sel) {
					seen.Add(sel)
					e.singletons = append(e.singletons, sel)
				}
			}
		default:
			nonSingleton = append(nonSingleton, c)
		}
	}
	sort.Ints(e.singletons)

	if e.opts.SortByFrequency {
		e.m = newMappingByFrequency(nonSingleton)
	} else {
		e.m = newMappingNatural(nonSingleton)
	}

	dense := dropSubsumed(e.m.translate(nonSingleton))
	cur := &assign{vals: make([]int8, e.m.size())}
	e.constructMUS(dense, cur)
	return e.results
}

// constructMUS mirrors the reference recursive search: propagate any
// singleton covers, apply the branch-and-bound cutoff, check for a
// previously visited assignment, emit a MUS on an empty cover set, and
// otherwise branch on the lowest-numbered undecided clause.
func (e *Engine) constructMUS(covers []formula.IntSet, cur *assign) bool {
	covers = propagateSingletons(covers, cur)

	if e.opts.BranchAndBound {
		if cur.numPos+misQuick(covers) >= e.bbUpper {
			return true
		}
	}

	if e.isVisited(cur) {
		return false
	}

	if len(covers) == 0 {
		e.outputMUS(cur)
		if e.opts.BranchAndBound {
			e.bbUpper = cur.numPos
		}
		return false
	}

	for clause := 0; clause < len(cur.vals); clause++ {
		if cur.vals[clause] != 0 {
			continue
		}

		cur.vals[clause] = 1
		cur.numPos++

		for _, cover := range covers {
			if !cover.Has(clause) {
				continue
			}
			newCovers := cloneCovers(covers)
			newCur := cur.clone()
			newCovers = removeClauseAndCover(newCovers, newCur, clause, cover)
			if e.constructMUS(newCovers, newCur) {
				break
			}
		}

		cur.vals[clause] = -1
		cur.numPos--
		cur.numNeg++

		// Excluding the clause imposes a lexicographic order: no later
		// branch will ever be offered a clause already decided here.
		var ok bool
		covers, ok = removeClause(covers, clause)
		if !ok {
			return false
		}
	}

	return false
}

func (e *Engine) isVisited(cur *assign) bool {
	k := cur.key()
	if _, ok := e.visited[k]; ok {
		return true
	}
	e.visited[k] = struct{}{}
	return false
}

func (e *Engine) outputMUS(cur *assign) {
	mus := make([]int, 0, len(e.singletons)+cur.numPos)
	mus = append(mus, e.singletons...)
	for dense, v := range cur.vals {
		if v == 1 {
			mus = append(mus, e.m.orig(dense))
		}
	}
	sort.Ints(mus)
	e.results = append(e.results, mus)
	e.log().WithField("size", len(mus)).Debug("hitset: found MUS")
	if e.onMUS != nil {
		var ts int64
		if e.opts.ReportEachTime {
			ts = time.Now().Unix()
		}
		e.onMUS(mus, ts)
	}
}

// assign is the dense-space analogue of the reference ClauseAssign: 0
// undecided, 1 included in the MUS under construction, -1 permanently
// excluded.
type assign struct {
	vals           []int8
	numPos, numNeg int
}

func (a *assign) clone() *assign {
	v := make([]int8, len(a.vals))
	copy(v, a.vals)
	return &assign{vals: v, numPos: a.numPos, numNeg: a.numNeg}
}

// key packs the assignment into a comparable string for the visited set,
// standing in for the reference's custom hash/equality functor pair.
func (a *assign) key() string {
	b := make([]byte, len(a.vals))
	for i, v := range a.vals {
		b[i] = byte(v)
	}
	return string(b)
}

func cloneCovers(covers []formula.IntSet) []formula.IntSet {
	out := make([]formula.IntSet, len(covers))
	for i, c := range covers {
		out[i] = c.Clone()
	}
	return out
}

// propagateSingletons absorbs every size-1 cover in this subproblem into
// cur, in one pass; it never needs to repeat, since covers here only
// shrink by having whole entries dropped, never by clause removal.
func propagateSingletons(covers []formula.IntSet, cur *assign) []formula.IntSet {
	kept := covers[:0]
	for _, c := range covers {
		if len(c) == 1 {
			for clause := range c {
				cur.vals[clause] = 1
				cur.numPos++
			}
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// removeClause drops clause from every cover that contains it, used after a
// clause has been permanently excluded. Returns false if any cover becomes
// empty, meaning clause was required and exclusion is infeasible.
func removeClause(covers []formula.IntSet, clause int) ([]formula.IntSet, bool) {
	changed := false
	for _, c := range covers {
		if !c.Has(clause) {
			continue
		}
		c.Remove(clause)
		if len(c) == 0 {
			return nil, false
		}
		changed = true
	}
	if changed {
		covers = dropSubsumed(covers)
	}
	return covers, true
}

// removeClauseAndCover installs the effect of including clause in the MUS
// via the given cover: every cover containing clause is now hit and can be
// dropped, and every other clause of cover can be removed from the
// remaining covers (they are no longer needed to hit this one). Any clause
// left referenced by no cover at all is then forced excluded.
func removeClauseAndCover(covers []formula.IntSet, cur *assign, clause int, cover formula.IntSet) []formula.IntSet {
	filtered := make([]formula.IntSet, 0, len(covers))
	for _, c := range covers {
		if !c.Has(clause) {
			filtered = append(filtered, c)
		}
	}

	toDrop := cover.Clone()
	toDrop.Remove(clause)
	if len(toDrop) > 0 {
		for _, c := range filtered {
			for sel := range toDrop {
				c.Remove(sel)
			}
		}
		filtered = dropSubsumed(filtered)
	}

	remaining := formula.NewIntSet()
	for _, c := range filtered {
		remaining.Union(c)
	}
	for sel, v := range cur.vals {
		if v == 0 && !remaining.Has(sel) {
			cur.vals[sel] = -1
			cur.numNeg++
		}
	}
	return filtered
}

// dropSubsumed removes any cover that fully contains another, maintaining
// the invariant that no cover in the family is redundant.
func dropSubsumed(covers []formula.IntSet) []formula.IntSet {
	kept := make([]formula.IntSet, 0, len(covers))
	for i, c := range covers {
		subsumed := false
		for j, other := range covers {
			if i == j || len(other) >= len(c) {
				continue
			}
			if isSubsetOf(other, c) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, c)
		}
	}
	return kept
}

func isSubsetOf(small, big formula.IntSet) bool {
	for sel := range small {
		if !big.Has(sel) {
			return false
		}
	}
	return true
}

// misQuick lower-bounds the size of the smallest hitting set of covers by
// greedily picking a shortest remaining cover, counting it as one
// independent element, and discarding every cover it intersects. It works
// on its own shallow copy of the slice, since it consumes it destructively.
func misQuick(covers []formula.IntSet) int {
	work := append([]formula.IntSet(nil), covers...)
	result := 0
	for len(work) > 0 {
		minIdx := 0
		for i, c := range work {
			if len(c) < len(work[minIdx]) {
				minIdx = i
			}
		}
		pick := work[minIdx]
		result++

		kept := work[:0]
		for _, c := range work {
			intersects := false
			for sel := range pick {
				if c.Has(sel) {
					intersects = true
					break
				}
			}
			if !intersects {
				kept = append(kept, c)
			}
		}
		work = kept
	}
	return result
}
