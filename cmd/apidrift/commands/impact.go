package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

func (c *cli) newImpactCommand() *cobra.Command {
	var (
		expand []string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "impact <collection-id> <snapshot-id>",
		Short: "Show how risky the changes in a snapshot are",
		Long: `Impact shows the backend's classification of a snapshot's changes into
breaking, security, data and cosmetic buckets along with an overall risk
score. Buckets are collapsed to their counts unless expanded.`,
		Example: `  apidrift impact 1234-abcd 42
  apidrift impact 1234-abcd 42 --expand breaking,security
  apidrift impact 1234-abcd 42 --all`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := parseCategories(expand)
			if err != nil {
				return err
			}

			a, err := c.authenticated()
			if err != nil {
				return err
			}

			sp := c.spinner("Analyzing impact")
			sp.Start()
			resp, err := a.Client().ImpactAnalysis(cmd.Context(), args[0], args[1])
			sp.Stop()
			if err != nil {
				return err
			}

			view := a.ImpactView(resp)
			if all {
				view.ExpandAll()
			}
			for _, category := range categories {
				view.ToggleBucket(category)
			}

			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.Impact(view.Snapshot(), all)
		},
	}

	cmd.Flags().StringSliceVar(&expand, "expand", nil, "buckets to expand (breaking, security, data, cosmetic)")
	cmd.Flags().BoolVar(&all, "all", false, "expand every bucket and item")

	return cmd
}

func parseCategories(names []string) ([]types.ImpactCategory, error) {
	var out []types.ImpactCategory
	seen := make(map[types.ImpactCategory]bool)
	for _, name := range names {
		category := types.ImpactCategory(strings.ToLower(strings.TrimSpace(name)))
		valid := false
		for _, known := range types.ImpactCategories {
			if category == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, errors.ValidationError(fmt.Sprintf("Unknown impact bucket %q", name)).
				WithHelp("use breaking, security, data or cosmetic")
		}
		if !seen[category] {
			seen[category] = true
			out = append(out, category)
		}
	}
	return out, nil
}
