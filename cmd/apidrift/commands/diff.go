package commands

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yairfalse/apidrift/internal/api"
	"github.com/yairfalse/apidrift/internal/browser"
	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/output"
)

type diffOptions struct {
	collection  string
	oldSnapshot string
	newSnapshot string
	changeType  string
	groupBy     string
	search      string
	page        int
	selectID    string
	detail      bool
	interactive bool
}

func (c *cli) newDiffCommand() *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare two snapshots of a collection",
		Long: `Diff fetches every change between two snapshots and lets you search,
filter, group and page through them locally.

Without --old the new snapshot is compared with the one captured before it.
With --interactive a prompt lets you move through the changes, open values
and copy them to the clipboard.`,
		Example: `  # Everything that changed in snapshot 42
  apidrift diff --collection 1234-abcd --new 42

  # Only modified request bodies, grouped by endpoint
  apidrift diff --collection 1234-abcd --old 40 --new 42 --type modified --search body --group endpoint

  # Show the values of one change
  apidrift diff --collection 1234-abcd --new 42 --select c-17 --detail

  # Browse interactively
  apidrift diff --collection 1234-abcd --new 42 -i`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiff(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.collection, "collection", "c", "", "collection id (required)")
	flags.StringVar(&opts.oldSnapshot, "old", "", "older snapshot id (default: the one before --new)")
	flags.StringVar(&opts.newSnapshot, "new", "", "newer snapshot id (required)")
	flags.StringVarP(&opts.changeType, "type", "t", "all", "change type (all, added, deleted, modified)")
	flags.StringVarP(&opts.groupBy, "group", "g", "none", "group changes (none, endpoint, type)")
	flags.StringVarP(&opts.search, "search", "s", "", "only changes whose path or endpoint contains this term")
	flags.IntVar(&opts.page, "page", 1, "page of changes to show")
	flags.StringVar(&opts.selectID, "select", "", "change id to select")
	flags.BoolVar(&opts.detail, "detail", false, "show the values of the selected change")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "browse changes interactively")
	cmd.MarkFlagRequired("collection")
	cmd.MarkFlagRequired("new")

	return cmd
}

func (c *cli) runDiff(cmd *cobra.Command, opts diffOptions) error {
	typeFilter, err := browser.ParseTypeFilter(opts.changeType)
	if err != nil {
		return errors.ValidationError(err.Error())
	}
	groupBy, err := browser.ParseGroupBy(opts.groupBy)
	if err != nil {
		return errors.ValidationError(err.Error())
	}

	a, err := c.authenticated()
	if err != nil {
		return err
	}
	p, err := c.printer()
	if err != nil {
		return err
	}
	if opts.interactive && p.Structured() {
		return errors.ValidationError("Interactive mode needs table output").WithHelp("drop -o/--output")
	}

	var copier browser.Copier
	if c.isTerminal(c.out) {
		copier = browser.NewOSC52Copier(c.out)
	}
	b := a.Browser(copier)
	defer b.Close()
	defer func() {
		stats := a.CacheStats()
		a.Logger().WithFields(map[string]interface{}{
			"hits":   stats.Hits,
			"misses": stats.Misses,
			"size":   stats.Size,
		}).Debug("response cache")
	}()

	ctx := cmd.Context()
	if err := c.loadDiff(ctx, b, func(ctx context.Context) error {
		return b.Load(ctx, api.DiffQuery{
			CollectionID:  opts.collection,
			OldSnapshotID: opts.oldSnapshot,
			NewSnapshotID: opts.newSnapshot,
		})
	}); err != nil {
		return err
	}

	b.SetTypeFilter(typeFilter)
	b.SetGroupBy(groupBy)
	b.SetSearch(opts.search)
	if opts.page > 1 && !b.SetPage(opts.page) {
		return errors.ValidationError(fmt.Sprintf("Page %d does not exist (%d pages)", opts.page, b.View().TotalPages))
	}
	if opts.selectID != "" && !b.Select(opts.selectID) {
		return errors.ValidationError(fmt.Sprintf("Change %s is not among the visible changes", opts.selectID))
	}

	if opts.interactive {
		return c.browse(ctx, b, p)
	}

	if p.Structured() {
		if !opts.detail {
			return p.Encode(b.View())
		}
		d, ok := b.Detail()
		if !ok {
			return errors.ValidationError("No change selected")
		}
		return p.Encode(d)
	}

	if err := p.DiffView(b.View(), true); err != nil {
		return err
	}
	if opts.detail {
		if d, ok := b.Detail(); ok {
			fmt.Fprintln(c.out)
			return p.Detail(d)
		}
	}
	return nil
}

// loadDiff runs a browser load behind a spinner
func (c *cli) loadDiff(ctx context.Context, b *browser.Browser, load func(context.Context) error) error {
	sp := c.spinner("Loading changes")
	sp.Start()
	err := load(ctx)
	sp.Stop()
	return err
}

const browseHelp = `Commands:
  n, p          next / previous change
  ], [          next / previous page
  go <page>     jump to a page
  /<term>       search (a bare / clears it)
  t <type>      filter by type: all, added, deleted, modified
  g <group>     group by: none, endpoint, type
  o <group>     open or close a group
  s <id>        select a change
  d             show the selected change
  e old|new     expand or collapse a large value
  c old|new     copy a value to the clipboard
  r             reload
  q             quit
`

// browse runs the interactive prompt until q or end of input
func (c *cli) browse(ctx context.Context, b *browser.Browser, p *output.Printer) error {
	reader := bufio.NewReader(c.in)
	if err := p.DiffView(b.View(), false); err != nil {
		return err
	}
	fmt.Fprintln(c.err, "Type ? for help.")

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(c.err, "diff> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return nil
			}
			return err
		}

		quit, err := c.browseCommand(ctx, b, p, strings.TrimSpace(line))
		if err != nil {
			if errors.IsType(err, errors.ErrorTypeAuthentication) {
				return err
			}
			if !stderrors.Is(err, browser.ErrSuperseded) {
				fmt.Fprintln(c.err, errors.UserMessage(err))
			}
		}
		if quit {
			return nil
		}
	}
}

// browseCommand applies one prompt command and redraws what changed
func (c *cli) browseCommand(ctx context.Context, b *browser.Browser, p *output.Printer, line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, "/") {
		b.QueueSearch(strings.TrimSpace(line[1:]))
		b.FlushSearch()
		return false, p.DiffView(b.View(), false)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "q", "quit", "exit":
		return true, nil
	case "?", "h", "help":
		fmt.Fprint(c.err, browseHelp)
		return false, nil
	case "n":
		b.Next()
	case "p":
		b.Prev()
	case "]":
		b.NextPage()
	case "[":
		b.PrevPage()
	case "go":
		page, err := strconv.Atoi(arg)
		if err != nil || !b.SetPage(page) {
			return false, errors.ValidationError(fmt.Sprintf("No page %q", arg))
		}
	case "t":
		f, err := browser.ParseTypeFilter(arg)
		if err != nil {
			return false, errors.ValidationError(err.Error())
		}
		b.SetTypeFilter(f)
	case "g":
		g, err := browser.ParseGroupBy(arg)
		if err != nil {
			return false, errors.ValidationError(err.Error())
		}
		b.SetGroupBy(g)
	case "o":
		b.ToggleGroup(arg)
	case "s":
		if !b.Select(arg) {
			return false, errors.ValidationError(fmt.Sprintf("Change %s is not among the visible changes", arg))
		}
	case "d":
		return false, c.showDetail(b, p)
	case "e":
		side, err := parseSide(arg)
		if err != nil {
			return false, err
		}
		if !b.ToggleValue(side) {
			return false, errors.ValidationError("No change selected")
		}
		return false, c.showDetail(b, p)
	case "c":
		side, err := parseSide(arg)
		if err != nil {
			return false, err
		}
		b.Copy(side)
		return false, nil
	case "r":
		if err := c.loadDiff(ctx, b, b.Retry); err != nil {
			return false, err
		}
	default:
		return false, errors.ValidationError(fmt.Sprintf("Unknown command %q, type ? for help", cmd))
	}

	return false, p.DiffView(b.View(), false)
}

func (c *cli) showDetail(b *browser.Browser, p *output.Printer) error {
	d, ok := b.Detail()
	if !ok {
		return errors.ValidationError("No change selected")
	}
	return p.Detail(d)
}

func parseSide(s string) (browser.Side, error) {
	switch strings.ToLower(s) {
	case "old", "before":
		return browser.SideOld, nil
	case "new", "after", "":
		return browser.SideNew, nil
	default:
		return "", errors.ValidationError(fmt.Sprintf("Unknown value side %q, use old or new", s))
	}
}
