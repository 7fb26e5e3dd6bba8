package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/yairfalse/apidrift/internal/impact"
	"github.com/yairfalse/apidrift/pkg/types"
)

// Impact prints an impact analysis. Collapsed buckets show only their count
// unless expandAll is set.
func (p *Printer) Impact(s impact.Snapshot, expandAll bool) error {
	if p.Structured() {
		return p.Encode(s)
	}

	var b strings.Builder
	b.WriteString(p.colorize("Impact Analysis", colorHeading...) + "\n")
	fmt.Fprintf(&b, "Risk: %s (score %.0f)  Changes: %d\n",
		p.colorize(strings.ToUpper(string(s.Tier)), append(tierColor(s.Tier), color.Bold)...),
		s.RiskScore, s.Total)
	if s.Recommendation != "" {
		fmt.Fprintf(&b, "Recommendation: %s\n", s.Recommendation)
	}

	for _, bucket := range s.Buckets {
		open := bucket.Expanded || expandAll
		arrow := "▸"
		if open {
			arrow = "▾"
		}
		fmt.Fprintf(&b, "\n%s %s (%d)\n", arrow, p.colorize(bucket.Label(), categoryColor(bucket.Category)...), bucket.Count)
		if !open {
			continue
		}
		if len(bucket.Items) == 0 {
			b.WriteString("    none\n")
			continue
		}
		for i := range bucket.Items {
			p.impactItem(&b, &bucket.Items[i], expandAll)
		}
	}

	_, err := fmt.Fprint(p.w, b.String())
	return err
}

func (p *Printer) impactItem(b *strings.Builder, it *impact.Item, expandAll bool) {
	item := &it.Item
	c := &item.Change
	fmt.Fprintf(b, "  %s %s  %s\n", p.changeMarker(c.ChangeType), c.DisplayPath(), p.colorize(item.Impact, color.Faint))
	if !(it.Expanded || expandAll) {
		return
	}

	if item.Severity != "" {
		fmt.Fprintf(b, "      Severity: %s\n", item.Severity)
	}
	meta := it.Metadata()
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "      %s: %s\n", k, meta[k])
	}
	if !c.Modification.IsEmpty() {
		b.WriteString("      Modification:\n")
		for _, line := range strings.Split(c.Modification.String(), "\n") {
			b.WriteString("        " + line + "\n")
		}
	}
	if len(item.Suggestions) > 0 {
		b.WriteString("      Suggestions:\n")
		for _, s := range item.Suggestions {
			fmt.Fprintf(b, "        - %s\n", s)
		}
	}
}

func tierColor(t impact.Tier) []color.Attribute {
	switch t {
	case impact.TierHigh:
		return []color.Attribute{color.FgRed}
	case impact.TierMedium:
		return []color.Attribute{color.FgYellow}
	default:
		return []color.Attribute{color.FgGreen}
	}
}

func categoryColor(c types.ImpactCategory) []color.Attribute {
	switch c {
	case types.ImpactBreaking:
		return []color.Attribute{color.FgRed, color.Bold}
	case types.ImpactSecurity:
		return []color.Attribute{color.FgMagenta, color.Bold}
	case types.ImpactData:
		return []color.Attribute{color.FgYellow, color.Bold}
	default:
		return []color.Attribute{color.FgWhite, color.Bold}
	}
}
