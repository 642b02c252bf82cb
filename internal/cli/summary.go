package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/specdiff/pkg/batch"
	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/similarity"
)

// summaryCommand creates the summary command.
func (c *CLI) summaryCommand() *cobra.Command {
	var (
		sortBy string
		limit  int
		self   bool
	)

	cmd := &cobra.Command{
		Use:   "summary <dir|spec-diffs.json>",
		Short: "Tabulate the scores of a finished comparison",
		Long: `Tabulate the scores of a finished comparison.

Reads spec-diffs.json (from the given directory, or the given file) and prints
one row per pair. Use --sort to rank pairs by a metric, given as its number
(1-5) or its full name, most similar first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metric := ""
			if sortBy != "" {
				m, err := metricName(sortBy)
				if err != nil {
					return err
				}
				metric = m
			}
			return runSummary(args[0], metric, limit, self)
		},
	}

	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "rank by metric (1-5 or name)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n pairs (0 = all)")
	cmd.Flags().BoolVar(&self, "self", false, "include self-comparisons")
	_ = cmd.RegisterFlagCompletionFunc("sort", completeMetric)

	return cmd
}

func runSummary(path, metric string, limit int, self bool) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, batch.DiffsFile)
	}
	diffs, err := batch.ReadDiffs(path)
	if err != nil {
		return err
	}

	results := summaryRows(diffs, metric, self)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	if len(results) == 0 {
		printInfo("No pairs in %s", path)
		return nil
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		row := []string{r.Spec1, r.Spec2}
		for _, v := range r.Values() {
			row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
		}
		rows[i] = row
	}
	printTable([]string{"Spec 1", "Spec 2", "Names", "Versions", "Weighted", "Params", "Arch"}, rows, 2, 3, 4, 5, 6)
	printDetail("%d pairs from %s", len(results), path)
	return nil
}

// summaryRows orders results by key, or by metric (descending) when one
// is given.
func summaryRows(diffs map[string]similarity.Result, metric string, self bool) []similarity.Result {
	keys := make([]string, 0, len(diffs))
	for k, r := range diffs {
		if !self && r.Spec1 == r.Spec2 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]similarity.Result, len(keys))
	for i, k := range keys {
		out[i] = diffs[k]
	}
	if metric != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := out[i].Get(metric)
			b, _ := out[j].Get(metric)
			return a > b
		})
	}
	return out
}

// metricName resolves "1".."5" or a full metric name.
func metricName(s string) (string, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(similarity.Metrics) {
			return "", errors.New(errors.ErrCodeInvalidInput, "metric number must be 1-%d, got %d", len(similarity.Metrics), n)
		}
		return similarity.Metrics[n-1], nil
	}
	if _, err := (similarity.Scores{}).Get(s); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "sort")
	}
	return s, nil
}
