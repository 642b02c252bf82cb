package cli

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/specdiff/pkg/batch"
	"github.com/matzehuels/specdiff/pkg/versions"
)

// domainsCommand creates the domains command.
func (c *CLI) domainsCommand() *cobra.Command {
	var (
		rangePolicy string
		name        string
	)

	cmd := &cobra.Command{
		Use:   "domains <dir>",
		Short: "Print the version table of a corpus",
		Long: `Print the version table of a corpus.

Lists every package and compiler name seen in the directory with its observed
versions. Semantic names also show the numeric range that weighted version
scores are measured against; other names are compared verbatim.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := c.Config.RangePolicy
			if cmd.Flags().Changed("range-policy") {
				policy = rangePolicy
			}
			p, err := versions.ParseRangePolicy(policy)
			if err != nil {
				return err
			}
			return c.runDomains(cmd.Context(), args[0], p, name)
		},
	}

	cmd.Flags().StringVar(&rangePolicy, "range-policy", string(versions.DefaultRangePolicy), "version range policy: sorted, extrema")
	cmd.Flags().StringVar(&name, "name", "", "show only this package")
	_ = cmd.RegisterFlagCompletionFunc("range-policy", completeRangePolicy)
	cmd.ValidArgsFunction = completeDirs

	return cmd
}

func (c *CLI) runDomains(ctx context.Context, dir string, policy versions.RangePolicy, only string) error {
	runner, err := batch.NewRunner(batch.Options{RangePolicy: policy, Logger: c.Logger})
	if err != nil {
		return err
	}
	table, skipped, err := runner.Scan(ctx, dir)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		printWarning("skipped %s: %s", filepath.Base(s.Path), s.Reason)
	}

	rows := domainRows(table, only)
	if len(rows) == 0 {
		printInfo("No versions found")
		return nil
	}
	printTable([]string{"Name", "Kind", "Versions", "Range"}, rows, 3)
	printDetail("%d names, range policy %s", len(rows), table.Policy)
	return nil
}

func domainRows(table *versions.Table, only string) [][]string {
	var rows [][]string
	for _, n := range table.Names() {
		if only != "" && n != only {
			continue
		}
		d, _ := table.Get(n)
		kind, rng := "verbatim", "-"
		if d.Semantic {
			kind = "semantic"
			rng = strconv.FormatFloat(d.Range, 'g', -1, 64)
		}
		rows = append(rows, []string{n, kind, strings.Join(d.Sorted, ", "), rng})
	}
	return rows
}
