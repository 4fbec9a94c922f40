// Command gophermcs enumerates the Minimal Correction Subsets of a DIMACS
// CNF instance.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/crillab/gophermus/driver"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		if err != context.DeadlineExceeded {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// NewRootCmd builds the gophermcs command, following the AleutianFOSS/
// operator-lifecycle-manager convention of a constructor rather than
// package-level flag globals.
func NewRootCmd() *cobra.Command {
	var (
		verbose         bool
		stats           bool
		timeoutSeconds  int
		justSolve       bool
		maxSAT          bool
		singleCore      bool
		singleMUS       bool
		sizeLimit       int
		boundInc        int
		groupFile       string
		partitionFile   string
		yClausesFile    string
		reportThreshold int
		disableCores    bool
	)

	cmd := &cobra.Command{
		Use:   "gophermcs FILE.cnf [FILE.MCSes]",
		Short: "Enumerate Minimal Correction Subsets of a CNF instance",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := driver.Config{
				CNFFile:         args[0],
				Verbose:         verbose,
				Stats:           stats,
				SizeLimit:       sizeLimit,
				BoundIncrement:  boundInc,
				GroupFile:       groupFile,
				PartitionFile:   partitionFile,
				YClausesFile:    yClausesFile,
				ReportThreshold: reportThreshold,
				UseCores:        !disableCores,
			}
			if len(args) == 2 {
				cfg.MCSesFile = args[1]
			}
			if timeoutSeconds > 0 {
				cfg.Timeout = time.Duration(timeoutSeconds) * time.Second
			}
			// -e is an alias for -z 1.
			if singleMUS {
				cfg.SizeLimit = 1
			}

			switch {
			case justSolve && (maxSAT || singleCore):
				return errors.New("-j cannot be combined with -m or -o")
			case justSolve:
				cfg.Mode = driver.ModeJustSolve
			case singleCore:
				cfg.Mode = driver.ModeSingleCore
			case maxSAT:
				cfg.Mode = driver.ModeMaxSAT
			default:
				cfg.Mode = driver.ModeFindMCSes
			}

			ctx := context.Background()
			return driver.Run(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	flags.BoolVarP(&stats, "stats", "s", false, "report CPU time and counters to stderr")
	flags.IntVarP(&timeoutSeconds, "timeout", "t", 0, "timeout in seconds (0 disables)")
	flags.BoolVarP(&justSolve, "just-solve", "j", false, "solve the raw CNF, report SAT/UNSAT, exit")
	flags.BoolVarP(&maxSAT, "max-sat", "m", false, "stop after the first MCS found")
	flags.BoolVarP(&singleCore, "single-core", "o", false, "emit a single possibly-non-minimal UNSAT core")
	flags.BoolVarP(&singleMUS, "single-mus", "e", false, "alias for -z 1")
	flags.IntVarP(&boundInc, "bound-inc", "x", 0, "bound increment (forces -u)")
	flags.IntVarP(&sizeLimit, "size-limit", "z", 0, "truncate MCSes to N selectors (produce PCSes)")
	flags.StringVarP(&groupFile, "group-file", "g", "", "group file")
	flags.StringVarP(&partitionFile, "partition-file", "p", "", "partition file")
	flags.StringVarP(&yClausesFile, "y-clauses-file", "y", "", "extra Y-clauses file")
	flags.IntVarP(&reportThreshold, "report-threshold", "l", 0, "stop once this bound is reached")
	flags.BoolVarP(&disableCores, "no-cores", "u", false, "disable core-guided bound restriction")

	return cmd
}
