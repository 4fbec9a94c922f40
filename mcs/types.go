// Package mcs implements the iterated-AtMost MCS enumeration loop: for a
// growing cardinality bound, find every MCS of that size or smaller via
// blocking clauses, widen the bound with UNSAT-core guidance, and stop once
// a "check for more" round proves no larger MCS remains.
package mcs

import (
	"github.com/crillab/gophermus/formula"
	"github.com/sirupsen/logrus"
)

// Options configures one enumeration run.
type Options struct {
	BoundIncrement  int  // ≥ 1, default 1
	SizeLimit       int  // 0 disables PCS truncation
	ReportThreshold int  // 0 disables early stop
	UseCores        bool // core-guided AtMost restriction
	MaxSAT          bool // stop after the first MCS
	InitialBound    int
}

// DefaultOptions returns the enumerator's baseline configuration.
func DefaultOptions() Options {
	return Options{BoundIncrement: 1, UseCores: true, InitialBound: 1}
}

// SetBoundInc sets an explicit bound increment. Setting an explicit
// increment also seeds the initial bound with the same value. It does not
// check the value against UseCores; Validate warns about and corrects that
// combination.
func (o Options) SetBoundInc(n int) Options {
	o.BoundIncrement = n
	o.InitialBound = n
	return o
}

// Validate applies the configuration-conflict correction below and warns
// about it through log ("-x requires -u... setting -u flag automatically").
// Callers (driver) should run their assembled Options through Validate once,
// up front;
// NewEnumerator also runs the pure correction internally so an Enumerator
// is never left in the inconsistent state even if a caller skips this.
func (o Options) Validate(log *logrus.Logger) Options {
	if o.UseCores && o.BoundIncrement > 1 {
		if log == nil {
			log = logrus.StandardLogger()
		}
		log.Warn("-x requires -u... setting -u flag automatically")
	}
	return o.normalize()
}

// normalize applies the configuration-conflict correction: UseCores
// together with a BoundIncrement > 1 cannot be satisfied coherently, since
// core guidance assumes each round's AtMost bound grows by exactly the
// increment used to derive the inner enumeration's lower bound.
func (o Options) normalize() Options {
	if o.UseCores && o.BoundIncrement > 1 {
		o.UseCores = false
	}
	if o.BoundIncrement < 1 {
		o.BoundIncrement = 1
	}
	if o.InitialBound < 1 {
		o.InitialBound = 1
	}
	return o
}

// Stats accumulates run counters: enumeration rounds, MCSes found, and
// total incremental Solve() calls issued across those rounds.
type Stats struct {
	Rounds     int
	MCSesFound int
	SolveCalls int
}

// Result is the outcome of one enumeration run.
type Result struct {
	MCSes []formula.IntSet // in emission order
}
