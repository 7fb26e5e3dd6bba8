package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/apidrift/internal/api"
	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/snapshots"
	"github.com/yairfalse/apidrift/pkg/types"
)

func (c *cli) newSnapshotsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snapshot", "snap"},
		Short:   "Browse and capture collection snapshots",
		Long: `Every import of a collection captures a snapshot. Snapshots are listed
newest first, one page at a time.`,
		Example: `  # Newest snapshots of a collection
  apidrift snapshots list 1234-abcd

  # Capture a new snapshot now
  apidrift snapshots create 1234-abcd

  # What a snapshot contains
  apidrift snapshots items 1234-abcd 42 --search users`,
	}

	cmd.AddCommand(c.newSnapshotsListCommand())
	cmd.AddCommand(c.newSnapshotsCreateCommand())
	cmd.AddCommand(c.newSnapshotsItemsCommand())
	cmd.AddCommand(c.newSnapshotsHierarchyCommand())

	return cmd
}

func (c *cli) newSnapshotsListCommand() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:     "list <collection-id>",
		Aliases: []string{"ls"},
		Short:   "List a collection's snapshots",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}
			if pageSize > 0 {
				a.Config().Snapshots.PageSize = pageSize
			}

			pager := a.Pager(args[0], "")
			if err := c.loadPage(cmd.Context(), pager, page); err != nil {
				return err
			}
			return c.printSnapshotPage(pager.View())
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "snapshots per page (default from config)")

	return cmd
}

func (c *cli) newSnapshotsCreateCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create <collection-id>",
		Short: "Capture a new snapshot of a collection",
		Long: `Capture a new snapshot by re-saving the collection on the backend. The
collection name is looked up when --name is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if name == "" {
				col, err := a.Client().GetCollection(ctx, args[0])
				if err != nil {
					return err
				}
				name = col.Name
			}

			pager := a.Pager(args[0], name)
			sp := c.spinner("Capturing snapshot")
			sp.Start()
			_, err = pager.Create(ctx)
			sp.Stop()
			if err != nil {
				return err
			}

			errors.DisplaySuccess(fmt.Sprintf("Snapshot of %s captured", name))
			return c.printSnapshotPage(pager.View())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "collection name (looked up when omitted)")

	return cmd
}

func (c *cli) newSnapshotsItemsCommand() *cobra.Command {
	var (
		search   string
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "items <collection-id> <snapshot-id>",
		Short: "Show the endpoints captured in a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}

			items, err := a.Client().SnapshotItems(cmd.Context(), args[0], args[1], api.ItemsQuery{
				Search:   search,
				PageSize: pageSize,
			})
			if err != nil {
				return err
			}

			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.SnapshotItems(items)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "only items matching this term")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "maximum items returned")

	return cmd
}

func (c *cli) newSnapshotsHierarchyCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "hierarchy <collection-id> <snapshot-id>",
		Aliases: []string{"tree"},
		Short:   "Show a snapshot's path hierarchy with change counts",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}
			nodes, err := a.Client().SnapshotHierarchy(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.Hierarchy(nodes)
		},
	}
}

// loadPage loads the first page, then moves to page when it exists
func (c *cli) loadPage(ctx context.Context, pager *snapshots.Pager, page int) error {
	sp := c.spinner("Loading snapshots")
	sp.Start()
	defer sp.Stop()

	if err := pager.Load(ctx); err != nil {
		return err
	}
	if page > 1 {
		if page > pager.View().TotalPages {
			return errors.ValidationError(fmt.Sprintf("Page %d does not exist (%d pages)", page, pager.View().TotalPages))
		}
		return pager.GoTo(ctx, page)
	}
	return nil
}

func (c *cli) printSnapshotPage(v snapshots.View) error {
	p, err := c.printer()
	if err != nil {
		return err
	}

	var name string
	if len(v.Snapshots) > 0 {
		name = v.Snapshots[0].CollectionName
	}
	return p.SnapshotPage(name, &types.SnapshotPage{
		Snapshots:  v.Snapshots,
		Page:       v.Page,
		PageSize:   v.PageSize,
		Total:      v.Total,
		TotalPages: v.TotalPages,
	})
}
