package collab

import (
	"strconv"
	"strings"
)

// replayProblem re-derives, from a RUP resolution certificate, which of the
// originally-added tagged clauses were actually needed to reach the empty
// clause. It is a from-scratch unit-propagation checker, deliberately
// decoupled from the real solver's internal reasoning, so that the
// derivation it reports is easy to audit independently: each certificate
// line is only accepted if unit propagation over everything seen so far
// already implies it. Adapted from gophersat's explain package, which uses
// exactly this technique to turn a Certified solve into an UNSAT subset.
type replayProblem struct {
	nbVars  int
	units   []int8 // per (0-based) var: 0 unbound, 1 true, -1 false
	clauses [][]int
	tags    []int
	tagged  []bool
	nbOrig  int
}

func newReplayProblem() *replayProblem {
	return &replayProblem{}
}

func (p *replayProblem) ensureVars(n int) {
	for len(p.units) < n {
		p.units = append(p.units, 0)
	}
	if n > p.nbVars {
		p.nbVars = n
	}
}

// addOriginal records a clause of the instrumented CNF, together with its
// origin tag (0 meaning untagged).
func (p *replayProblem) addOriginal(lits []int, tag int) {
	p.clauses = append(p.clauses, lits)
	p.tags = append(p.tags, tag)
	if len(lits) == 1 {
		lit := lits[0]
		if lit > 0 {
			p.units[lit-1] = 1
		} else {
			p.units[-lit-1] = -1
		}
	}
}

// initTagged snapshots the current clause count as the "original" set: only
// these clauses can end up counted by ancestorTagSum. Must be called once,
// after every original/instrumented clause has been added and before any
// certificate replay, so that later, purely derived blocking clauses never
// pollute the tag count.
func (p *replayProblem) initTagged() {
	p.nbOrig = len(p.clauses)
	p.tagged = make([]bool, p.nbOrig)
	for i, c := range p.clauses {
		p.tagged[i] = len(c) == 1
	}
}

// unsat runs unit propagation to a fixed point over every known clause,
// tagging (as participating in the derivation) each original clause that
// became unit or conflicting along the way. Returns true iff propagation
// alone derives the empty clause.
func (p *replayProblem) unsat() bool {
	done := make([]bool, len(p.clauses))
	modified := true
	for modified {
		modified = false
		for i, clause := range p.clauses {
			if done[i] {
				continue
			}
			unbound := 0
			var unit int
			sat := false
			for _, lit := range clause {
				v := lit
				if v < 0 {
					v = -v
				}
				binding := p.units[v-1]
				if binding == 0 {
					unbound++
					if unbound == 1 {
						unit = lit
					} else {
						break
					}
				} else if int8(sign(lit))*binding > 0 {
					sat = true
					break
				}
			}
			if sat {
				done[i] = true
				continue
			}
			if unbound == 0 {
				if i < p.nbOrig {
					p.tagged[i] = true
				}
				return true
			}
			if unbound == 1 {
				if unit < 0 {
					p.units[-unit-1] = -1
				} else {
					p.units[unit-1] = 1
				}
				done[i] = true
				if i < p.nbOrig {
					p.tagged[i] = true
				}
				modified = true
			}
		}
	}
	return false
}

func sign(lit int) int {
	if lit < 0 {
		return -1
	}
	return 1
}

// impliedUnsat reports whether clause is a logical consequence of the
// problem: assume its negation as unit literals and check that unit
// propagation alone then derives a contradiction. Restores p.units before
// returning.
func (p *replayProblem) impliedUnsat(clause []int) bool {
	saved := make([]int8, len(p.units))
	copy(saved, p.units)
	for _, lit := range clause {
		if lit > 0 {
			p.units[lit-1] = -1
		} else {
			p.units[-lit-1] = 1
		}
	}
	res := p.unsat()
	p.units = saved
	return res
}

// replayCertificate consumes RUP clause lines from ch, verifying each is
// implied by everything derived so far, and returns true iff the
// certificate ends in the empty clause (a valid UNSAT proof).
func (p *replayProblem) replayCertificate(ch <-chan string) (valid bool, err error) {
	for line := range ch {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if _, e := strconv.Atoi(fields[0]); e != nil {
			continue
		}
		clause, e := parseCertLits(fields)
		if e != nil {
			return false, e
		}
		if !p.impliedUnsat(clause) {
			return false, nil
		}
		if len(clause) == 0 {
			return true, nil
		}
		p.clauses = append(p.clauses, clause)
		p.tags = append(p.tags, 0)
	}
	return true, nil
}

func parseCertLits(fields []string) ([]int, error) {
	clause := make([]int, 0, len(fields)-1)
	for _, raw := range fields {
		lit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		if lit != 0 {
			clause = append(clause, lit)
		}
	}
	return clause, nil
}

// ancestorTagSum returns the union of tags of every original clause that
// participated in the replayed derivation.
func (p *replayProblem) ancestorTagSum() map[int]struct{} {
	out := make(map[int]struct{})
	for i := 0; i < p.nbOrig; i++ {
		if p.tagged[i] && p.tags[i] != 0 {
			out[p.tags[i]] = struct{}{}
		}
	}
	return out
}
