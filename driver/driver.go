// Package driver selects a mode, wires cnf/formula input into mcs/hitset,
// and writes results out, all in one function shared by both CLI tools so
// it is testable without a subprocess.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/crillab/gophermus/cnf"
	"github.com/crillab/gophermus/collab"
	"github.com/crillab/gophermus/formula"
	"github.com/crillab/gophermus/hitset"
	"github.com/crillab/gophermus/mcs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Mode selects which of the five things the driver can do.
type Mode int

const (
	ModeFindMCSes Mode = iota
	ModeFindMUSes
	ModeMaxSAT
	ModeSingleCore
	ModeJustSolve
)

// Config aggregates every CLI flag for both the MCS and the MUS tool.
// Fields not relevant to Mode are simply left at their zero value.
type Config struct {
	Mode Mode

	CNFFile string // MCS tool positional FILE.cnf

	// MCSesFile is the MCS tool's optional resume-file positional argument,
	// or the MUS tool's optional covers-file positional argument (stdin
	// when empty). The two tools never populate it for the same mode.
	MCSesFile string

	Verbose bool
	Stats   bool
	Timeout time.Duration // 0 disables the timeout

	// MCS tool only.
	SizeLimit       int
	BoundIncrement  int
	GroupFile       string
	PartitionFile   string
	YClausesFile    string
	ReportThreshold int
	UseCores        bool

	// MUS tool only.
	ReportEachTime bool
	BranchAndBound bool

	// Logger defaults to logrus.StandardLogger() when nil.
	Logger *logrus.Logger
}

// Run executes cfg.Mode, reading whatever input files it names and writing
// result lines to out; log lines and the "Timeout reached." message go to
// stderr. Cancelling ctx or exceeding its deadline (or cfg.Timeout) prints
// "Timeout reached." and returns context.DeadlineExceeded in both cases, the
// Go-idiomatic replacement for the original's SIGALRM handler.
func Run(ctx context.Context, cfg Config, out io.Writer, stderr io.Writer) error {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	var err error
	switch cfg.Mode {
	case ModeFindMCSes, ModeMaxSAT:
		err = runFindMCSes(ctx, cfg, log, out, stderr)
	case ModeFindMUSes:
		err = runFindMUSes(ctx, cfg, log, out, stderr)
	case ModeSingleCore:
		err = runSingleCore(ctx, cfg, out, stderr)
	case ModeJustSolve:
		err = runJustSolve(ctx, cfg, out, stderr)
	default:
		err = errors.Errorf("unknown mode %d", cfg.Mode)
	}
	return err
}

func runFindMCSes(ctx context.Context, cfg Config, log *logrus.Logger, out, stderr io.Writer) error {
	start := time.Now()
	f, err := loadFormula(cfg)
	if err != nil {
		return err
	}
	resume, err := loadResume(cfg.MCSesFile)
	if err != nil {
		return err
	}

	opts := mcs.DefaultOptions()
	if cfg.BoundIncrement > 0 {
		opts = opts.SetBoundInc(cfg.BoundIncrement)
	}
	opts.SizeLimit = cfg.SizeLimit
	opts.ReportThreshold = cfg.ReportThreshold
	opts.UseCores = cfg.UseCores
	if cfg.Mode == ModeMaxSAT {
		opts.MaxSAT = true
	}
	opts = opts.Validate(log)

	e := mcs.NewEnumerator(f, opts, resume)
	e.Logger = log

	emitter := NewEmitter(out)
	var emitErr error
	timedOut := runWithTimeout(ctx, cfg.Timeout, func() {
		e.Enumerate(func(m formula.IntSet) {
			if emitErr == nil {
				emitErr = emitter.EmitSelectors(m.Slice())
			}
		})
	})
	if timedOut {
		fmt.Fprintln(stderr, "Timeout reached.")
		return context.DeadlineExceeded
	}
	if emitErr != nil {
		return errors.Wrap(emitErr, "cannot write output")
	}

	if cfg.Stats {
		reportStats(stderr, start, e.Stats.Rounds, e.Stats.MCSesFound, e.Stats.SolveCalls)
	}
	return nil
}

func runFindMUSes(ctx context.Context, cfg Config, log *logrus.Logger, out, stderr io.Writer) error {
	start := time.Now()
	covers, err := loadCovers(cfg.MCSesFile)
	if err != nil {
		return err
	}

	opts := hitset.DefaultOptions()
	opts.BranchAndBound = cfg.BranchAndBound
	opts.ReportEachTime = cfg.ReportEachTime

	eng := hitset.New(opts)
	eng.Logger = log

	emitter := NewEmitter(out)
	var emitErr error
	timedOut := runWithTimeout(ctx, cfg.Timeout, func() {
		eng.Run(covers, func(mus []int, ts int64) {
			if emitErr != nil {
				return
			}
			if cfg.ReportEachTime {
				emitErr = emitter.EmitTimestamped(ts, mus)
			} else {
				emitErr = emitter.EmitSelectors(mus)
			}
		})
	})
	if timedOut {
		fmt.Fprintln(stderr, "Timeout reached.")
		return context.DeadlineExceeded
	}
	if emitErr != nil {
		return errors.Wrap(emitErr, "cannot write output")
	}

	if cfg.Stats {
		fmt.Fprintf(stderr, "CPU time: %s\n", time.Since(start))
	}
	return nil
}

// runSingleCore implements the "-o" mode: a single, possibly non-minimal
// UNSAT core over selectors, extracted from one derivation-enabled solve of
// the plain (unselected) CNF.
func runSingleCore(ctx context.Context, cfg Config, out, stderr io.Writer) error {
	f, err := loadFormula(cfg)
	if err != nil {
		return err
	}

	var core formula.IntSet
	timedOut := runWithTimeout(ctx, cfg.Timeout, func() {
		core = formula.NewIntSet()
		s := collab.New()
		s.EnableDerivation()
		// A false Build means the unit clauses already conflict: Solve then
		// reports Unsat at once and the replay tags the unit clauses.
		formula.BuildPlain(s, f, nil, false)
		if s.Solve() != collab.Unsat {
			return
		}
		for tag := range s.AncestorTagSum() {
			core.Add(tag - 1) // AncestorTagSum reports 1-based selectors
		}
	})
	if timedOut {
		fmt.Fprintln(stderr, "Timeout reached.")
		return context.DeadlineExceeded
	}
	return errors.Wrap(NewEmitter(out).EmitSelectors(core.Slice()), "cannot write output")
}

// runJustSolve implements the "-j" mode: solve the plain CNF once and
// report SAT/UNSAT/UNSAT_EARLY, where UNSAT_EARLY means the instance was
// already refuted by top-level unit propagation, before any search ran at
// all.
func runJustSolve(ctx context.Context, cfg Config, out, stderr io.Writer) error {
	f, err := loadFormula(cfg)
	if err != nil {
		return err
	}

	var result string
	timedOut := runWithTimeout(ctx, cfg.Timeout, func() {
		s := collab.New()
		if !formula.BuildPlain(s, f, nil, false) {
			result = "UNSAT_EARLY"
			return
		}
		if s.Solve() == collab.Sat {
			result = "SAT"
		} else {
			result = "UNSAT"
		}
	})
	if timedOut {
		fmt.Fprintln(stderr, "Timeout reached.")
		return context.DeadlineExceeded
	}
	fmt.Fprintln(out, result)
	return nil
}

func reportStats(stderr io.Writer, start time.Time, rounds, mcses, solves int) {
	fmt.Fprintf(stderr, "CPU time: %s\n", time.Since(start))
	fmt.Fprintf(stderr, "rounds=%d mcses=%d solveCalls=%d\n", rounds, mcses, solves)
}

// runWithTimeout runs work to completion unless ctx is cancelled or timeout
// elapses first, in which case it returns true without waiting for work
// (which keeps running in its own goroutine until the process exits, the
// same abrupt-termination semantics the original's SIGALRM handler had).
func runWithTimeout(ctx context.Context, timeout time.Duration, work func()) (timedOut bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan struct{})
	go func() {
		work()
		close(done)
	}()

	select {
	case <-done:
		return false
	case <-ctx.Done():
		return true
	}
}

func loadFormula(cfg Config) (*formula.Formula, error) {
	if cfg.PartitionFile != "" && cfg.GroupFile != "" {
		return nil, errors.New("cannot use both a partition file and a group file")
	}

	cnfFile, err := os.Open(cfg.CNFFile)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open CNF file %q", cfg.CNFFile)
	}
	defer cnfFile.Close()
	f, err := cnf.ParseDIMACS(cnfFile)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse CNF file %q", cfg.CNFFile)
	}

	switch {
	case cfg.PartitionFile != "":
		pf, err := os.Open(cfg.PartitionFile)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open partition file %q", cfg.PartitionFile)
		}
		defer pf.Close()
		groupMap, n, err := cnf.ParsePartition(pf, len(f.Clauses))
		if err != nil {
			return nil, errors.Wrapf(err, "cannot parse partition file %q", cfg.PartitionFile)
		}
		f.SetGroupMap(groupMap, n)
	case cfg.GroupFile != "":
		gf, err := os.Open(cfg.GroupFile)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open group file %q", cfg.GroupFile)
		}
		defer gf.Close()
		groupMap, n, err := cnf.ParseGroupFile(gf, len(f.Clauses))
		if err != nil {
			return nil, errors.Wrapf(err, "cannot parse group file %q", cfg.GroupFile)
		}
		f.SetGroupMap(groupMap, n)
	}

	if cfg.YClausesFile != "" {
		yf, err := os.Open(cfg.YClausesFile)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open extra-Y-clauses file %q", cfg.YClausesFile)
		}
		defer yf.Close()
		clauses, err := cnf.ParseExtraYClauses(yf)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot parse extra-Y-clauses file %q", cfg.YClausesFile)
		}
		f.ExtraYClauses = clauses
	}

	return f, nil
}

func loadResume(path string) ([]formula.IntSet, error) {
	if path == "" {
		return nil, nil
	}
	rf, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open resume file %q", path)
	}
	defer rf.Close()
	resume, err := cnf.ParsePreviousMCSes(rf)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse resume file %q", path)
	}
	return resume, nil
}

func loadCovers(path string) ([]formula.IntSet, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open MCSes file %q", path)
		}
		defer f.Close()
		r = f
	}
	covers, err := cnf.ParseCovers(r)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse MCSes input")
	}
	return covers, nil
}
