package hitset

import (
	"sort"
	"testing"

	"github.com/crillab/gophermus/formula"
	"github.com/stretchr/testify/assert"
)

func toSortedMUSes(mus [][]int) [][]int {
	out := make([][]int, len(mus))
	for i, m := range mus {
		cp := append([]int(nil), m...)
		sort.Ints(cp)
		out[i] = cp
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		for k := range out[i] {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}

// MCS family {0,1},{0,2}: selector 0 hits both, so {0} is a minimal
// transversal; otherwise one of {1},{2} must be picked from each cover,
// giving {1,2}.
func TestEnumerateTwoCoversSharedElement(t *testing.T) {
	covers := []formula.IntSet{
		formula.NewIntSet(0, 1),
		formula.NewIntSet(0, 2),
	}
	e := New(Options{})
	mus := e.Run(covers, nil)
	assert.Equal(t, [][]int{{0}, {1, 2}}, toSortedMUSes(mus))
}

// Two singleton covers force both selectors into the single MUS.
func TestEnumerateAllSingletons(t *testing.T) {
	covers := []formula.IntSet{
		formula.NewIntSet(0),
		formula.NewIntSet(1),
	}
	e := New(Options{})
	mus := e.Run(covers, nil)
	assert.Equal(t, [][]int{{0, 1}}, toSortedMUSes(mus))
}

// A singleton cover plus a pair: the singleton is forced into every MUS,
// and the pair contributes a choice of either of its two selectors.
func TestEnumerateSingletonPlusPair(t *testing.T) {
	covers := []formula.IntSet{
		formula.NewIntSet(0),
		formula.NewIntSet(1, 2),
	}
	e := New(Options{})
	mus := e.Run(covers, nil)
	assert.Equal(t, [][]int{{0, 1}, {0, 2}}, toSortedMUSes(mus))
}

// {1,2} and {1,3} share element 1: minimal transversals are {1} or {2,3}.
// Combined with the forced singleton {0}, that gives one MUS of each size.
func TestEnumerateDiffersInCardinality(t *testing.T) {
	covers := []formula.IntSet{
		formula.NewIntSet(0),
		formula.NewIntSet(1, 2),
		formula.NewIntSet(1, 3),
	}
	e := New(Options{})
	mus := e.Run(covers, nil)
	want := [][]int{{0, 1}, {0, 2, 3}}
	assert.Equal(t, want, toSortedMUSes(mus))
}

// With branch-and-bound on, the same family still reports the true
// minimum-cardinality MUS, whatever else the search order also emits along
// the way.
func TestEnumerateBranchAndBoundFindsMinimum(t *testing.T) {
	covers := []formula.IntSet{
		formula.NewIntSet(0),
		formula.NewIntSet(1, 2),
		formula.NewIntSet(1, 3),
	}
	e := New(Options{BranchAndBound: true})
	mus := e.Run(covers, nil)
	minLen := -1
	for _, m := range mus {
		if minLen == -1 || len(m) < minLen {
			minLen = len(m)
		}
	}
	assert.Equal(t, 2, minLen)
	found := false
	for _, m := range toSortedMUSes(mus) {
		if len(m) == 2 {
			assert.Equal(t, []int{0, 1}, m)
			found = true
		}
	}
	assert.True(t, found)
}

func TestEnumerateInvokesCallback(t *testing.T) {
	covers := []formula.IntSet{
		formula.NewIntSet(0, 1),
		formula.NewIntSet(0, 2),
	}
	e := New(Options{})
	var got [][]int
	e.Run(covers, func(mus []int, ts int64) {
		got = append(got, append([]int(nil), mus...))
	})
	assert.Equal(t, [][]int{{0}, {1, 2}}, toSortedMUSes(got))
}

func TestEnumerateEmptyCoversYieldsNoMUS(t *testing.T) {
	e := New(Options{})
	mus := e.Run(nil, nil)
	assert.Empty(t, mus)
}
