package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func sortedLines(out string) []string {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil
	}
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		fields := strings.Fields(l)
		sort.Strings(fields)
		lines[i] = strings.Join(fields, " ")
	}
	sort.Strings(lines)
	return lines
}

// S1: p cnf 1 2 / 1 0 / -1 0 -> MCSes {1},{2}.
func TestRunFindMCSesS1(t *testing.T) {
	cnfPath := writeTemp(t, "s1.cnf", "p cnf 1 2\n1 0\n-1 0\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeFindMCSes, CNFFile: cnfPath, UseCores: true}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, sortedLines(out.String()))
}

// S3: p cnf 3 3 / 1 0 / -1 2 0 / -2 3 0, plus an appended -3 0 as a fourth
// clause: the four clauses form a unit-propagation chain to a contradiction,
// so each is individually removable and none is removable in pairs -- all
// four singletons are MCSes.
func TestRunFindMCSesS3(t *testing.T) {
	cnfPath := writeTemp(t, "s3.cnf", "p cnf 3 4\n1 0\n-1 2 0\n-2 3 0\n-3 0\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeFindMCSes, CNFFile: cnfPath, UseCores: true}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, sortedLines(out.String()))
}

// The same four clauses treated as an MCS family for the MUS tool (each
// clause is its own singleton MCS) collapse to a single MUS containing all
// four selectors, since a hitting set of four disjoint singletons must
// include every one of them.
func TestRunFindMUSesS3AsCoverFamily(t *testing.T) {
	coversPath := writeTemp(t, "s3.mcses", "1\n2\n3\n4\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeFindMUSes, MCSesFile: coversPath}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"1 2 3 4"}, sortedLines(out.String()))
}

// p cnf 2 3 / 1 0 / 2 0 / -1 -2 0: each clause conflicts alone with the
// other two (dropping any one restores satisfiability), so all three
// singletons are MCSes. (spec.md's own worked example S4 for this formula
// claims pairs {1,3}/{2,3}, which hand-verification shows is inconsistent
// with the formula it names; this test uses the actually-correct family,
// matching mcs.TestEnumerateThreeSingletonMCSes.)
func TestRunFindMCSesThreeSingletonConflicts(t *testing.T) {
	cnfPath := writeTemp(t, "three.cnf", "p cnf 2 3\n1 0\n2 0\n-1 -2 0\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeFindMCSes, CNFFile: cnfPath, UseCores: true}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, sortedLines(out.String()))
}

func TestRunMaxSATStopsAfterFirstMCS(t *testing.T) {
	cnfPath := writeTemp(t, "three.cnf", "p cnf 2 3\n1 0\n2 0\n-1 -2 0\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeMaxSAT, CNFFile: cnfPath, UseCores: true}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	lines := sortedLines(out.String())
	require.Len(t, lines, 1)
	assert.Len(t, strings.Fields(lines[0]), 1)
}

// S5: MUS tool input with covers 1 2 / 1 3 / 2 3 -> MUSes {1,2},{1,3},{2,3}.
func TestRunFindMUSesS5(t *testing.T) {
	coversPath := writeTemp(t, "s5.mcses", "1 2\n1 3\n2 3\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeFindMUSes, MCSesFile: coversPath}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"1 2", "1 3", "2 3"}, sortedLines(out.String()))
}

// S6: singleton cover 5 plus covers 1 2, 1 3 -> MUSes {5,1},{5,2,3}.
func TestRunFindMUSesS6(t *testing.T) {
	coversPath := writeTemp(t, "s6.mcses", "5\n1 2\n1 3\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeFindMUSes, MCSesFile: coversPath}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"1 5", "2 3 5"}, sortedLines(out.String()))
}

// A covers file whose second line is shorter than its first must not be
// truncated the way an MCS resume file would be: both lines are covers,
// not sequential resume entries, and dropping the second line would wrongly
// turn this into three singleton MUSes instead of the correct two.
func TestRunFindMUSesKeepsShrinkingCoverLine(t *testing.T) {
	coversPath := writeTemp(t, "shrink.mcses", "1 2 3\n1 2\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeFindMUSes, MCSesFile: coversPath}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, sortedLines(out.String()))
}

func TestRunFindMUSesBranchAndBoundFindsMinimumFirst(t *testing.T) {
	coversPath := writeTemp(t, "s5.mcses", "1 2\n1 3\n2 3\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeFindMUSes, MCSesFile: coversPath, BranchAndBound: true}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	lines := sortedLines(out.String())
	require.Len(t, lines, 1)
	assert.Len(t, strings.Fields(lines[0]), 2)
}

func TestRunJustSolveReportsSAT(t *testing.T) {
	cnfPath := writeTemp(t, "sat.cnf", "p cnf 1 1\n1 0\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeJustSolve, CNFFile: cnfPath}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, "SAT", strings.TrimSpace(out.String()))
}

func TestRunJustSolveReportsUnsatEarly(t *testing.T) {
	cnfPath := writeTemp(t, "unsat.cnf", "p cnf 1 2\n1 0\n-1 0\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeJustSolve, CNFFile: cnfPath}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, "UNSAT_EARLY", strings.TrimSpace(out.String()))
}

func TestRunSingleCoreReportsNonEmptyCore(t *testing.T) {
	cnfPath := writeTemp(t, "unsat.cnf", "p cnf 1 2\n1 0\n-1 0\n")
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeSingleCore, CNFFile: cnfPath}
	err := Run(context.Background(), cfg, &out, &errOut)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out.String()))
}

func TestRunFindMCSesMissingFileReturnsError(t *testing.T) {
	var out, errOut bytes.Buffer
	cfg := Config{Mode: ModeFindMCSes, CNFFile: filepath.Join(t.TempDir(), "missing.cnf"), UseCores: true}
	err := Run(context.Background(), cfg, &out, &errOut)
	assert.Error(t, err)
}

// Resuming from a file already containing the complete MCS family finds no
// further MCS to report: every candidate is blocked, and checkForMore
// proves the family complete on the very first round.
func TestRunResumeIdempotence(t *testing.T) {
	cnfPath := writeTemp(t, "s1.cnf", "p cnf 1 2\n1 0\n-1 0\n")

	var first bytes.Buffer
	cfg := Config{Mode: ModeFindMCSes, CNFFile: cnfPath, UseCores: true}
	require.NoError(t, Run(context.Background(), cfg, &first, &bytes.Buffer{}))
	require.Equal(t, []string{"1", "2"}, sortedLines(first.String()))

	resumePath := writeTemp(t, "resume.mcses", first.String())

	var second bytes.Buffer
	cfg2 := Config{Mode: ModeFindMCSes, CNFFile: cnfPath, MCSesFile: resumePath, UseCores: true}
	require.NoError(t, Run(context.Background(), cfg2, &second, &bytes.Buffer{}))

	assert.Empty(t, sortedLines(second.String()))
}
