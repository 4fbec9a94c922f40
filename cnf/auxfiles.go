package cnf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/crillab/gophermus/formula"
	"github.com/pkg/errors"
)

// ParsePartition reads a partition file: one integer per line, each the
// 1-based index of the last clause in the current partition. Clauses
// [1..split1] share selector 0, (split1..split2] share selector 1, and so
// on. Returns the resulting clause->selector map and selector count.
func ParsePartition(r io.Reader, nbClauses int) ([]formula.Selector, int, error) {
	groupMap := make([]formula.Selector, nbClauses)
	sc := bufio.NewScanner(r)
	current := 1
	var y formula.Selector
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		split, err := strconv.Atoi(line)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "invalid partition line %q", line)
		}
		for current <= split {
			if current > nbClauses {
				return nil, 0, errors.Errorf("partition split %d exceeds %d clauses", split, nbClauses)
			}
			groupMap[current-1] = y
			current++
		}
		y++
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	return groupMap, int(y), nil
}

// ParseGroupFile reads a group file: one line per group, each line listing
// 1-based clause indices belonging to that group's selector.
func ParseGroupFile(r io.Reader, nbClauses int) ([]formula.Selector, int, error) {
	groupMap := make([]formula.Selector, nbClauses)
	sc := bufio.NewScanner(r)
	var y formula.Selector
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		for _, f := range fields {
			idx, err := strconv.Atoi(f)
			if err != nil {
				return nil, 0, errors.Wrapf(err, "invalid clause index %q", f)
			}
			if idx <= 0 || idx > nbClauses {
				return nil, 0, errors.Errorf("clause index %d out of range [1,%d]", idx, nbClauses)
			}
			groupMap[idx-1] = y
		}
		y++
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	return groupMap, int(y), nil
}

// ParseExtraYClauses reads a DIMACS-like, header-less, comment-less clause
// list over 1-based Y-variable indices, each clause 0-terminated.
func ParseExtraYClauses(r io.Reader) ([][]int, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var clauses [][]int
	var cur []int
	for sc.Scan() {
		lit, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "invalid Y-clause literal %q", sc.Text())
		}
		if lit == 0 {
			clauses = append(clauses, cur)
			cur = nil
			continue
		}
		cur = append(cur, lit)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(cur) != 0 {
		return nil, errors.New("trailing unterminated Y-clause")
	}
	return clauses, nil
}

// ParsePreviousMCSes reads a resume file: one MCS per line, 1-based
// selector indices. The last line may be truncated by an interrupted prior
// run: reading stops at the first line that has fewer entries than the line
// before it, and that line and every line after it are dropped.
func ParsePreviousMCSes(r io.Reader) ([]formula.IntSet, error) {
	sc := bufio.NewScanner(r)
	var (
		mcses []formula.IntSet
		size  int
	)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		mcs := formula.NewIntSet()
		for _, f := range fields {
			idx, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid selector index %q", f)
			}
			if idx <= 0 {
				return nil, errors.Errorf("invalid selector index %d", idx)
			}
			mcs.Add(idx - 1)
		}
		if len(mcs) < size {
			break
		}
		size = len(mcs)
		mcses = append(mcses, mcs)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return mcses, nil
}

// ParseCovers reads a covers file for the MUS tool: one cover per line,
// 1-based selector indices, blank lines skipped. Unlike ParsePreviousMCSes,
// every non-empty line is kept regardless of how its size compares to the
// line before it — a covers file has no notion of a truncated trailing
// write to guard against, and lines are free to grow and shrink in any
// order.
func ParseCovers(r io.Reader) ([]formula.IntSet, error) {
	sc := bufio.NewScanner(r)
	var covers []formula.IntSet
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		cover := formula.NewIntSet()
		for _, f := range fields {
			idx, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid selector index %q", f)
			}
			if idx <= 0 {
				return nil, errors.Errorf("invalid selector index %d", idx)
			}
			cover.Add(idx - 1)
		}
		covers = append(covers, cover)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return covers, nil
}
