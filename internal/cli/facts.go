package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/specdiff/pkg/facts"
	"github.com/matzehuels/specdiff/pkg/manifest"
)

// factsCommand creates the facts command.
func (c *CLI) factsCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "facts <manifest> [other]",
		Short: "Print the facts derived from a manifest, or diff two manifests",
		Long: `Print the facts derived from a manifest, or diff two manifests.

With one manifest, every derived fact is printed. With two, the output lists
the facts only the first has, the facts only the second has, and the number
of shared facts, in the same shape as the <key>-comparison.json artifacts.

The deriver is the one the config selects ([facts] command), cached like
during compare.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFacts(cmd.Context(), args, asJSON, noCache)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the fact cache")

	return cmd
}

func (c *CLI) runFacts(ctx context.Context, paths []string, asJSON, noCache bool) error {
	d, fc, err := c.newDeriver(ctx, noCache)
	if err != nil {
		return err
	}
	defer fc.Close()

	sets := make([]facts.Set, len(paths))
	names := make([]string, len(paths))
	for i, path := range paths {
		m, err := manifest.ReadFile(path)
		if err != nil {
			return err
		}
		cfg, err := facts.ConcreteLoader{}.Load(ctx, m)
		if err != nil {
			return err
		}
		s, err := d.Derive(ctx, cfg)
		if err != nil {
			return err
		}
		sets[i], names[i] = s, m.Name
	}

	if len(paths) == 1 {
		if asJSON {
			return writeJSON(sets[0].Facts())
		}
		for _, f := range sets[0].Facts() {
			fmt.Println(f.String())
		}
		return nil
	}

	cmp := facts.NewComparison(names[0], sets[0], names[1], sets[1])
	if asJSON {
		return writeJSON(cmp)
	}
	printInfo("%d shared facts", len(cmp.Intersect))
	printFactList("only in "+names[0], cmp.Spec1NotSpec2)
	printFactList("only in "+names[1], cmp.Spec2NotSpec1)
	return nil
}

func printFactList(title string, list [][2]string) {
	if len(list) == 0 {
		printSuccess("nothing %s", title)
		return
	}
	printWarning("%d %s", len(list), title)
	for _, f := range list {
		printDetail("%s %s", f[0], f[1])
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
