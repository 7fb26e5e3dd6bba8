package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/yairfalse/apidrift/pkg/types"
)

// SnapshotItems prints a snapshot's endpoint tree
func (p *Printer) SnapshotItems(items *types.SnapshotItems) error {
	if p.Structured() {
		return p.Encode(items)
	}
	if len(items.Items) == 0 {
		fmt.Fprintln(p.w, "Snapshot has no items.")
		return nil
	}

	var b strings.Builder
	for i := range items.Items {
		p.itemTree(&b, &items.Items[i], "", i == len(items.Items)-1)
	}
	fmt.Fprint(p.w, b.String())
	fmt.Fprintf(p.w, "\n%d items\n", items.CountItems())
	return nil
}

func (p *Printer) itemTree(b *strings.Builder, item *types.SnapshotItem, prefix string, last bool) {
	label := item.Name
	if item.Method != "" {
		label = p.colorize(fmt.Sprintf("%-6s", strings.ToUpper(item.Method)), methodColor(item.Method)...) + " " + label
	}
	if target := firstNonEmpty(item.URL, item.Path); target != "" && item.Method != "" {
		label += p.colorize("  "+target, color.Faint)
	}
	if len(item.Children) > 0 {
		label = p.colorize(label, color.Bold)
	}
	b.WriteString(prefix + branch(last) + label + "\n")

	childPrefix := prefix + indent(last)
	for i := range item.Children {
		p.itemTree(b, &item.Children[i], childPrefix, i == len(item.Children)-1)
	}
}

// Hierarchy prints a snapshot's path hierarchy
func (p *Printer) Hierarchy(nodes []types.HierarchyNode) error {
	if p.Structured() {
		return p.Encode(nodes)
	}
	if len(nodes) == 0 {
		fmt.Fprintln(p.w, "Hierarchy is empty.")
		return nil
	}

	var b strings.Builder
	for i := range nodes {
		p.nodeTree(&b, &nodes[i], "", i == len(nodes)-1)
	}
	fmt.Fprint(p.w, b.String())
	return nil
}

func (p *Printer) nodeTree(b *strings.Builder, n *types.HierarchyNode, prefix string, last bool) {
	label := n.Name
	if n.Type != "" {
		label += p.colorize(" ("+n.Type+")", color.Faint)
	}
	if n.ChangeCount > 0 {
		label += " " + p.colorize(fmt.Sprintf("[%d changes]", n.ChangeCount), colorModified...)
	}
	b.WriteString(prefix + branch(last) + label + "\n")

	childPrefix := prefix + indent(last)
	for i := range n.Children {
		p.nodeTree(b, &n.Children[i], childPrefix, i == len(n.Children)-1)
	}
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func indent(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

func methodColor(method string) []color.Attribute {
	switch strings.ToUpper(method) {
	case "GET":
		return []color.Attribute{color.FgBlue}
	case "POST":
		return []color.Attribute{color.FgGreen}
	case "PUT", "PATCH":
		return []color.Attribute{color.FgYellow}
	case "DELETE":
		return []color.Attribute{color.FgRed}
	default:
		return []color.Attribute{color.FgWhite}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
