// Command gophermus constructs the Minimal Unsatisfiable Subsets implied
// by a family of Minimal Correction Sets, via hitting-set duality.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/crillab/gophermus/driver"
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

// NewRootCmd builds the gophermus command.
func NewRootCmd() *cobra.Command {
	var (
		verbose        bool
		stats          bool
		timeoutSeconds int
		reportEachTime bool
		branchAndBound bool
	)

	cmd := &cobra.Command{
		Use:   "gophermus [FILE.MCSes]",
		Short: "Construct Minimal Unsatisfiable Subsets from a family of MCSes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := driver.Config{
				Mode:           driver.ModeFindMUSes,
				Verbose:        verbose,
				Stats:          stats,
				ReportEachTime: reportEachTime,
				BranchAndBound: branchAndBound,
			}
			if len(args) == 1 {
				cfg.MCSesFile = args[0]
			}
			if timeoutSeconds > 0 {
				cfg.Timeout = time.Duration(timeoutSeconds) * time.Second
			}

			ctx := context.Background()
			return driver.Run(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	flags.BoolVarP(&stats, "stats", "s", false, "report CPU time to stderr")
	flags.IntVarP(&timeoutSeconds, "timeout", "t", 0, "timeout in seconds (0 disables)")
	flags.BoolVarP(&reportEachTime, "timestamp", "T", false, "prefix each emitted MUS with a Unix timestamp")
	flags.BoolVarP(&branchAndBound, "branch-and-bound", "b", false, "branch and bound: report only MUSes smaller than every one reported before")

	return cmd
}
