package output

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/yairfalse/apidrift/internal/browser"
	"github.com/yairfalse/apidrift/pkg/types"
)

var (
	colorHeading  = []color.Attribute{color.FgCyan, color.Bold}
	colorAdded    = []color.Attribute{color.FgGreen}
	colorDeleted  = []color.Attribute{color.FgRed}
	colorModified = []color.Attribute{color.FgYellow}
)

// changeMarker returns the one-character prefix of a change line
func (p *Printer) changeMarker(t types.ChangeType) string {
	switch t {
	case types.ChangeTypeAdded:
		return p.colorize("+", colorAdded...)
	case types.ChangeTypeDeleted:
		return p.colorize("-", colorDeleted...)
	case types.ChangeTypeModified:
		return p.colorize("~", colorModified...)
	default:
		return "?"
	}
}

// DiffView prints the visible page of the diff browser. With expandAll
// every group is shown open regardless of its toggle state.
func (p *Printer) DiffView(v browser.View, expandAll bool) error {
	if p.Structured() {
		return p.Encode(v)
	}

	var b strings.Builder
	q := v.Query
	old := q.OldSnapshotID
	if old == "" {
		old = "previous"
	}
	b.WriteString(p.colorize(fmt.Sprintf("Changes in %s: %s → %s", q.CollectionID, old, q.NewSnapshotID), colorHeading...))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s added  %s deleted  %s modified  (%d shown of %d)\n",
		p.colorize(fmt.Sprint(v.Counts.Added), colorAdded...),
		p.colorize(fmt.Sprint(v.Counts.Deleted), colorDeleted...),
		p.colorize(fmt.Sprint(v.Counts.Modified), colorModified...),
		v.Visible, v.Total)
	if filters := describeCriteria(v.Criteria); filters != "" {
		b.WriteString(p.colorize(filters, color.Faint) + "\n")
	}
	b.WriteString("\n")

	switch {
	case v.Total == 0:
		b.WriteString(p.colorize("No changes between these snapshots.", colorAdded...) + "\n")
	case v.Visible == 0:
		b.WriteString("No changes match the current filters.\n")
	case len(v.Groups) > 0:
		for _, g := range v.Groups {
			open := g.Expanded || expandAll
			arrow := "▸"
			if open {
				arrow = "▾"
			}
			fmt.Fprintf(&b, "%s %s (%d)\n", arrow, p.colorize(g.Label, color.Bold), g.Total)
			if !open {
				continue
			}
			for i := range g.Changes {
				p.changeLine(&b, &g.Changes[i], v.SelectedID, "  ")
			}
		}
	default:
		for i := range v.Items {
			p.changeLine(&b, &v.Items[i], v.SelectedID, "")
		}
	}

	if v.TotalPages > 1 {
		fmt.Fprintf(&b, "\nPage %d of %d\n", v.Page, v.TotalPages)
	}

	_, err := fmt.Fprint(p.w, b.String())
	return err
}

func (p *Printer) changeLine(b *strings.Builder, c *types.Change, selectedID, pad string) {
	cursor := "  "
	if c.ID == selectedID {
		cursor = p.colorize("> ", color.Bold)
	}
	line := fmt.Sprintf("%s%s%s %s", pad, cursor, p.changeMarker(c.ChangeType), c.DisplayPath())
	if c.ResourceType != "" {
		line += p.colorize(" ["+string(c.ResourceType)+"]", color.Faint)
	}
	b.WriteString(line + "\n")
}

func describeCriteria(c browser.Criteria) string {
	var parts []string
	if c.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", c.Search))
	}
	if c.Type != "" && c.Type != browser.FilterAll {
		parts = append(parts, "type "+string(c.Type))
	}
	if c.GroupBy != "" && c.GroupBy != browser.GroupNone {
		parts = append(parts, "grouped by "+string(c.GroupBy))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Filters: " + strings.Join(parts, ", ")
}

// Detail prints the detail pane of one change
func (p *Printer) Detail(d browser.Detail) error {
	if p.Structured() {
		return p.Encode(d)
	}

	var b strings.Builder
	c := &d.Change
	fmt.Fprintf(&b, "%s %s\n", p.changeMarker(c.ChangeType), p.colorize(c.DisplayPath(), color.Bold))

	rows := [][2]string{{"Type", c.ChangeType.Label()}}
	if c.EndpointName != "" {
		rows = append(rows, [2]string{"Endpoint", c.EndpointName})
	}
	if c.ResourceType != "" {
		rows = append(rows, [2]string{"Resource", string(c.ResourceType)})
	}
	if c.Path != "" && c.Path != c.HumanPath {
		rows = append(rows, [2]string{"Path", c.Path})
	}
	if d.Modification != "" {
		rows = append(rows, [2]string{"Modification", oneLine(d.Modification)})
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %-13s %s\n", r[0]+":", r[1])
	}

	for _, panel := range d.Panels {
		b.WriteString("\n")
		b.WriteString(p.colorize(panel.Title, panelColor(panel.Title)...) + "\n")
		b.WriteString(strings.Repeat("─", utf8.RuneCountInString(panel.Title)) + "\n")
		if panel.Text == "" {
			b.WriteString(p.colorize("(empty)", color.Faint) + "\n")
		} else {
			b.WriteString(panel.Text)
			if !strings.HasSuffix(panel.Text, "\n") {
				b.WriteString("\n")
			}
		}
		if panel.Collapsed {
			b.WriteString(p.colorize(fmt.Sprintf("… showing %d of %d characters", utf8.RuneCountInString(panel.Text), panel.Size), color.Faint) + "\n")
		}
	}

	if d.TextDiff != "" {
		b.WriteString("\n" + p.colorize("Diff", colorHeading...) + "\n")
		b.WriteString(p.colorizeDiff(d.TextDiff))
	}

	_, err := fmt.Fprint(p.w, b.String())
	return err
}

func panelColor(title string) []color.Attribute {
	switch title {
	case browser.TitleAdded, browser.TitleAfter:
		return colorAdded
	case browser.TitleDeleted, browser.TitleBefore:
		return colorDeleted
	default:
		return colorHeading
	}
}

// colorizeDiff colors unified diff lines by their prefix
func (p *Printer) colorizeDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(p.colorize(line, color.Bold))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(p.colorize(line, color.FgCyan))
		case strings.HasPrefix(line, "+"):
			b.WriteString(p.colorize(line, colorAdded...))
		case strings.HasPrefix(line, "-"):
			b.WriteString(p.colorize(line, colorDeleted...))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
