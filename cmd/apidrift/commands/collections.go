package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/output"
	"github.com/yairfalse/apidrift/pkg/types"
)

func (c *cli) newCollectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "col"},
		Short:   "List and import API collections",
		Long: `Collections are the unit of tracking. Importing a collection stores it on
the backend and captures its first snapshot; re-importing captures another.`,
		Example: `  # Collections you have imported
  apidrift collections list

  # Import an exported collection file
  apidrift collections import --file ./orders.postman_collection.json

  # Import collections visible through your default API key
  apidrift collections remote
  apidrift collections import 1234-abcd 5678-efgh`,
	}

	cmd.AddCommand(c.newCollectionsListCommand())
	cmd.AddCommand(c.newCollectionsRemoteCommand())
	cmd.AddCommand(c.newCollectionsShowCommand())
	cmd.AddCommand(c.newCollectionsImportCommand())

	return cmd
}

func (c *cli) newCollectionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List imported collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}

			sp := c.spinner("Loading collections")
			sp.Start()
			collections, err := a.Client().ListUserCollections(cmd.Context())
			sp.Stop()
			if err != nil {
				return err
			}

			registry := a.Importer().Registry()
			for _, col := range collections {
				registry.Upsert(col)
			}

			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.Collections(registry.List())
		},
	}
}

func (c *cli) newCollectionsRemoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remote",
		Short: "List collections available through the default API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}

			sp := c.spinner("Fetching remote collections")
			sp.Start()
			remote, err := a.Importer().ListRemote(cmd.Context())
			sp.Stop()
			if err != nil {
				return err
			}

			p, err := c.printer()
			if err != nil {
				return err
			}
			return p.RemoteCollections(remote)
		},
	}
}

func (c *cli) newCollectionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <collection-id>",
		Short: "Show one collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}
			col, err := a.Client().GetCollection(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			p, err := c.printer()
			if err != nil {
				return err
			}
			if p.Structured() {
				return p.Encode(col)
			}
			return p.KeyValues(col.Name, [][2]string{
				{"ID", col.ID},
				{"First seen", col.FirstSeen.Display()},
				{"Last seen", col.LastSeen.Display()},
			})
		},
	}
}

func (c *cli) newCollectionsImportCommand() *cobra.Command {
	var (
		file string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "import [remote-collection-id...]",
		Short: "Import a collection file or remote collections",
		Long: `Import either a single exported collection file (--file) or one or more
collections listed by 'apidrift collections remote'. Remote imports run one
at a time; a failure is counted and the rest carry on.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.authenticated()
			if err != nil {
				return err
			}

			switch {
			case file != "" && (len(args) > 0 || all):
				return errors.ValidationError("Use either --file or remote collection ids, not both")
			case file != "":
				return c.importFile(cmd, file)
			case len(args) == 0 && !all:
				return errors.ValidationError("Nothing to import").
					WithHelp("apidrift collections import --file <path> | <remote-id>... | --all")
			}

			remote, err := a.Importer().ListRemote(cmd.Context())
			if err != nil {
				return err
			}
			selected := args
			if all {
				selected = make([]string, 0, len(remote))
				for _, rc := range remote {
					selected = append(selected, rc.ID)
				}
			}
			return c.importRemote(cmd, remote, selected)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "exported collection file (JSON)")
	cmd.Flags().BoolVar(&all, "all", false, "import every remote collection")

	return cmd
}

func (c *cli) importFile(cmd *cobra.Command, path string) error {
	a, err := c.application()
	if err != nil {
		return err
	}

	sp := c.spinner("Importing " + path)
	sp.Start()
	col, err := a.Importer().ImportFile(cmd.Context(), path)
	sp.Stop()
	if err != nil {
		return err
	}

	p, err := c.printer()
	if err != nil {
		return err
	}
	if p.Structured() {
		return p.Encode(col)
	}
	errors.DisplaySuccess(fmt.Sprintf("Imported %s (%s)", col.Name, col.ID))
	return nil
}

func (c *cli) importRemote(cmd *cobra.Command, remote []types.RemoteCollection, selected []string) error {
	a, err := c.application()
	if err != nil {
		return err
	}

	config := output.ProgressBarConfig{
		Title:   "Importing",
		Total:   len(selected),
		NoColor: c.cfg.Output.NoColor,
	}
	if c.isTerminal(c.err) {
		config.Writer = c.err
	}
	bar := output.NewProgressBar(config)

	imp := a.Importer()
	imp.OnAttempt = func(id string, err error) {
		bar.Step(err == nil)
	}
	result := imp.ImportRemote(cmd.Context(), remote, selected)
	imp.OnAttempt = nil
	bar.Finish()

	p, err := c.printer()
	if err != nil {
		return err
	}
	if p.Structured() {
		return p.Encode(result)
	}

	msg := fmt.Sprintf("%d of %d collections imported", result.Succeeded, result.Total())
	if result.Failed > 0 {
		errors.DisplayWarning(fmt.Sprintf("%s, %d failed (run with --log-level debug for details)", msg, result.Failed))
		return nil
	}
	errors.DisplaySuccess(msg)
	return nil
}
