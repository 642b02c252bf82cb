package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/specdiff/pkg/batch"
	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/versions"
)

// compareOpts holds the command-line flags for the compare command.
// Flags that were not set fall back to the config file.
type compareOpts struct {
	workers     int
	rangePolicy string
	pairFiles   bool
	strict      bool
	factsCmd    string
	noCache     bool
}

// apply overlays the flags the user set onto the loaded config.
func (o *compareOpts) apply(cmd *cobra.Command, c *CLI) (batch.Options, error) {
	cfg := c.Config
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("range-policy") {
		cfg.RangePolicy = o.rangePolicy
	}
	if flags.Changed("pair-files") {
		cfg.PairFiles = o.pairFiles
	}
	if flags.Changed("strict") {
		cfg.Strict = o.strict
	}
	if flags.Changed("facts-command") {
		cfg.Facts.Command = o.factsCmd
	}
	if err := cfg.Validate(); err != nil {
		return batch.Options{}, err
	}
	return batch.Options{
		Workers:     cfg.Workers,
		RangePolicy: cfg.RangePolicyValue(),
		Strict:      cfg.Strict,
	}, nil
}

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	var opts compareOpts

	cmd := &cobra.Command{
		Use:   "compare <dir>...",
		Short: "Compare every manifest pair in one or more corpus directories",
		Long: `Compare every manifest pair in one or more corpus directories.

Each directory holds one corpus of YAML manifests. For every unordered pair
(self-pairs included) five similarity scores and a fact diff are computed and
written next to the manifests:

  spec-diffs.json            scores per pair, keyed "<spec1>-<spec2>"
  spec-diffs-vizdata.json    the same scores grouped by metric
  <spec1>-<spec2>-comparison.json   shared and unique facts (--pair-files)

Directories are processed independently. A missing directory is skipped with
a warning; a failing directory is reported and the command exits non-zero
after the remaining directories are done.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bopts, err := opts.apply(cmd, c)
			if err != nil {
				return err
			}
			return c.runCompare(cmd.Context(), args, bopts, opts.noCache)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent comparisons (default: number of CPUs)")
	cmd.Flags().StringVar(&opts.rangePolicy, "range-policy", string(versions.DefaultRangePolicy), "version range policy: sorted, extrema")
	cmd.Flags().BoolVar(&opts.pairFiles, "pair-files", true, "write one <key>-comparison.json per pair")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail a directory on any broken manifest")
	cmd.Flags().StringVar(&opts.factsCmd, "facts-command", "", `external fact deriver, "{}" is replaced by the manifest path`)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the fact cache")
	_ = cmd.RegisterFlagCompletionFunc("range-policy", completeRangePolicy)
	cmd.ValidArgsFunction = completeDirs

	return cmd
}

// runCompare processes each directory in turn.
func (c *CLI) runCompare(ctx context.Context, dirs []string, opts batch.Options, noCache bool) error {
	runner, fc, err := c.newRunner(ctx, opts, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer fc.Close()

	logger := loggerFromContext(ctx)
	var failed []string

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}

		prog := newProgress(logger, dir)
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Comparing %s...", dir))
		spinner.Start()

		report, err := runner.Run(ctx, dir)
		spinner.Stop()

		switch {
		case err == nil:
		case errors.Is(err, errors.ErrCodeDirectoryNotFound):
			printWarning("%s does not exist, skipping", dir)
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			printError("%s: %s", dir, errors.UserMessage(err))
			failed = append(failed, dir)
			continue
		}

		written, err := report.Write(c.Config.PairFiles)
		if err != nil {
			printError("%s: %s", dir, errors.UserMessage(err))
			failed = append(failed, dir)
			continue
		}

		prog.done("compared", "pairs", len(report.Diffs), "skipped", len(report.Skipped))
		printReport(report, written)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d directories failed: %v", len(failed), len(dirs), failed)
	}
	return nil
}

// printReport summarizes one directory's run.
func printReport(r *batch.Report, written []string) {
	printSuccess("%s: %d pairs", r.Dir, len(r.Diffs))
	printStats(r.Manifests(), len(r.Skipped), len(r.Degenerate))
	for _, s := range r.Skipped {
		printWarning("skipped %s: %s", filepath.Base(s.Path), s.Reason)
	}

	pairFiles := 0
	for _, path := range written {
		switch filepath.Base(path) {
		case batch.DiffsFile, batch.VizFile:
			printFile(path)
		default:
			pairFiles++
		}
	}
	if pairFiles > 0 {
		printDetail("%d pair comparison files", pairFiles)
	}
	printNextStep("View scores", "specdiff summary "+r.Dir)
}
