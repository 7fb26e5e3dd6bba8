package commands

import (
	"github.com/spf13/cobra"
)

func (c *cli) newChangesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "changes",
		Aliases: []string{"change"},
		Short:   "Recorded change history of a collection",
		Long: `Changes lists everything the backend has recorded for a collection across
all of its snapshots. Use 'apidrift diff' to compare two specific snapshots.`,
	}

	cmd.AddCommand(c.newChangesSummaryCommand())
	cmd.AddCommand(c.newChangesListCommand())

	return cmd
}

func (c *cli) newChangesSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <collection-id>",
		Short: "Show change counts for a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}
			summary, err := a.Client().ChangeSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.ChangeSummary(summary)
		},
	}
}

func (c *cli) newChangesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list <collection-id>",
		Aliases: []string{"ls"},
		Short:   "List every recorded change of a collection",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}

			sp := c.spinner("Loading changes")
			sp.Start()
			changes, err := a.Client().ListChanges(cmd.Context(), args[0])
			sp.Stop()
			if err != nil {
				return err
			}

			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.Changes(changes)
		},
	}
}
