package hitset

import (
	"sort"

	"github.com/crillab/gophermus/formula"
)

// mapping translates between the selector indices used throughout the rest
// of the module (0-based, sparse: only the selectors that actually appear in
// some cover matter here) and the dense [0,K) space the branch-and-bound
// search operates over. Compressing to a dense range keeps ClauseAssign a
// plain slice indexed directly by dense id, exactly as the reference
// ClauseAssign vector<char> is indexed by its translated clause numbers.
type mapping struct {
	toDense map[int]int
	toOrig  []int
}

// newMappingByFrequency orders dense ids by ascending cover-membership
// frequency, breaking ties by ascending original selector: clauses that
// appear in fewer covers are tried first during search, common ones last,
// which empirically prunes the branch-and-bound search best.
func newMappingByFrequency(covers []formula.IntSet) *mapping {
	freq := make(map[int]int)
	for _, c := range covers {
		for sel := range c {
			freq[sel]++
		}
	}
	origs := make([]int, 0, len(freq))
	for sel := range freq {
		origs = append(origs, sel)
	}
	sort.Slice(origs, func(i, j int) bool {
		if freq[origs[i]] != freq[origs[j]] {
			return freq[origs[i]] < freq[origs[j]]
		}
		return origs[i] < origs[j]
	})
	return buildMapping(origs)
}

// newMappingNatural orders dense ids by ascending original selector index,
// the "straight" alternative ordering.
func newMappingNatural(covers []formula.IntSet) *mapping {
	set := formula.NewIntSet()
	for _, c := range covers {
		for sel := range c {
			set.Add(sel)
		}
	}
	return buildMapping(set.Slice())
}

func buildMapping(orderedOrigs []int) *mapping {
	m := &mapping{
		toDense: make(map[int]int, len(orderedOrigs)),
		toOrig:  append([]int(nil), orderedOrigs...),
	}
	for dense, orig := range orderedOrigs {
		m.toDense[orig] = dense
	}
	return m
}

func (m *mapping) size() int { return len(m.toOrig) }

func (m *mapping) orig(dense int) int { return m.toOrig[dense] }

// translate rewrites each cover from original selector indices into the
// dense space; a selector absent from the mapping (shouldn't happen, since
// the mapping is built from the very same covers) is dropped defensively.
func (m *mapping) translate(covers []formula.IntSet) []formula.IntSet {
	out := make([]formula.IntSet, len(covers))
	for i, c := range covers {
		dc := formula.NewIntSet()
		for sel := range c {
			if d, ok := m.toDense[sel]; ok {
				dc.Add(d)
			}
		}
		out[i] = dc
	}
	return out
}
