package cnf

import (
	"strings"
	"testing"

	"github.com/crillab/gophermus/formula"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePartitionSplitsClauses(t *testing.T) {
	groupMap, n, err := ParsePartition(strings.NewReader("2\n3\n"), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	// clauses 1,2 -> selector 0; clause 3 -> selector 1
	assert.Equal(t, []int{0, 0, 1}, selectorInts(groupMap))
}

func TestParsePartitionRejectsSplitPastEnd(t *testing.T) {
	_, _, err := ParsePartition(strings.NewReader("5\n"), 3)
	assert.Error(t, err)
}

func TestParseGroupFileGroupsListedClauses(t *testing.T) {
	groupMap, n, err := ParseGroupFile(strings.NewReader("1 3\n2\n"), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{0, 1, 0}, selectorInts(groupMap))
}

// A group file with one singleton group per clause, in order, must behave
// exactly like the default ungrouped mode.
func TestParseGroupFileSingletonsMatchUngrouped(t *testing.T) {
	groupMap, n, err := ParseGroupFile(strings.NewReader("1\n2\n3\n"), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{0, 1, 2}, selectorInts(groupMap))
}

func TestParseGroupFileRejectsOutOfRangeIndex(t *testing.T) {
	_, _, err := ParseGroupFile(strings.NewReader("1 4\n"), 3)
	assert.Error(t, err)
}

func TestParseExtraYClausesReadsMultipleClauses(t *testing.T) {
	clauses, err := ParseExtraYClauses(strings.NewReader("1 -2 0\n3 0\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, -2}, {3}}, clauses)
}

func TestParseExtraYClausesRejectsUnterminatedClause(t *testing.T) {
	_, err := ParseExtraYClauses(strings.NewReader("1 -2"))
	assert.Error(t, err)
}

func TestParsePreviousMCSesReadsZeroBased(t *testing.T) {
	mcses, err := ParsePreviousMCSes(strings.NewReader("3\n1 2\n"))
	require.NoError(t, err)
	require.Len(t, mcses, 2)
	assert.ElementsMatch(t, []int{2}, mcses[0].Slice())
	assert.ElementsMatch(t, []int{0, 1}, mcses[1].Slice())
}

// A trailing line shorter than the one immediately before it is an
// interrupted partial write from a prior run: parsing stops there,
// dropping it and anything after it.
func TestParsePreviousMCSesDropsShortTrailingLine(t *testing.T) {
	mcses, err := ParsePreviousMCSes(strings.NewReader("1\n1 2\n1 2 3\n1\n"))
	require.NoError(t, err)
	require.Len(t, mcses, 3)
}

// A covers file whose line sizes shrink partway through (a case
// ParsePreviousMCSes would truncate on) must keep every line: covers carry
// no monotonic-write ordering guarantee the way an MCS resume file does.
func TestParseCoversKeepsShrinkingLines(t *testing.T) {
	covers, err := ParseCovers(strings.NewReader("1 2 3\n1 2\n1\n1 2 3 4\n"))
	require.NoError(t, err)
	require.Len(t, covers, 4)
	assert.ElementsMatch(t, []int{0, 1, 2}, covers[0].Slice())
	assert.ElementsMatch(t, []int{0, 1}, covers[1].Slice())
	assert.ElementsMatch(t, []int{0}, covers[2].Slice())
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, covers[3].Slice())
}

func TestParseCoversSkipsBlankLines(t *testing.T) {
	covers, err := ParseCovers(strings.NewReader("1 2\n\n3\n"))
	require.NoError(t, err)
	require.Len(t, covers, 2)
}

func TestParseCoversRejectsInvalidIndex(t *testing.T) {
	_, err := ParseCovers(strings.NewReader("0\n"))
	assert.Error(t, err)
}

func selectorInts(sel []formula.Selector) []int {
	out := make([]int, len(sel))
	for i, s := range sel {
		out[i] = int(s)
	}
	return out
}
