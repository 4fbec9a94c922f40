package formula

import (
	"testing"

	"github.com/crillab/gophermus/collab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInstrumentedAllowsDeactivatingAClause(t *testing.T) {
	f := NewUngrouped([][]int{{1}, {-1}}, 1)
	s := collab.New()
	require.True(t, BuildInstrumented(s, f, nil))

	yLit0 := f.NbVars + 1
	yLit1 := f.NbVars + 2

	// Deactivating either clause restores satisfiability.
	s.Assume([]int{-yLit0})
	assert.Equal(t, collab.Sat, s.Solve())
	s.CancelAll()
	s.Assume([]int{-yLit1})
	assert.Equal(t, collab.Sat, s.Solve())
	s.CancelAll()

	// With both active the instance is unsat.
	assert.Equal(t, collab.Unsat, s.Assume([]int{yLit0, yLit1}))
}

func TestBuildInstrumentedPinsUnusedSelectors(t *testing.T) {
	f := NewUngrouped([][]int{{1, 2}, {-1, -2}}, 2)
	s := collab.New()
	subset := NewIntSet(1) // only selector 0 (1-based: 1) is instrumented
	require.True(t, BuildInstrumented(s, f, subset))
	assert.Equal(t, collab.Sat, s.Solve())
}

func TestBuildPlainTagsBySelector(t *testing.T) {
	f := NewUngrouped([][]int{{1}, {-1}}, 1)
	s := collab.New()
	s.EnableDerivation()
	require.False(t, BuildPlain(s, f, nil, false))
	assert.Equal(t, collab.Unsat, s.Solve())
	tags := s.AncestorTagSum()
	assert.Contains(t, tags, 1)
	assert.Contains(t, tags, 2)
}

func TestBuildPlainExcludesSelectors(t *testing.T) {
	f := NewUngrouped([][]int{{1}, {-1}}, 1)
	s := collab.New()
	require.True(t, BuildPlain(s, f, NewIntSet(2), false))
	assert.Equal(t, collab.Sat, s.Solve())
}

func TestBuildPlainReverseOrder(t *testing.T) {
	f := NewUngrouped([][]int{{1, 2}, {-1}, {-2}}, 2)
	s := collab.New()
	require.True(t, BuildPlain(s, f, nil, true))
	assert.Equal(t, collab.Unsat, s.Solve())
}

func TestBuildInstrumentedWithGroupMap(t *testing.T) {
	f := NewUngrouped([][]int{{1}, {2}, {-1, -2}}, 2)
	f.SetGroupMap([]Selector{0, 0, 1}, 2)
	s := collab.New()
	require.True(t, BuildInstrumented(s, f, nil))
	assert.Equal(t, 2, f.NbSelectors)
}
