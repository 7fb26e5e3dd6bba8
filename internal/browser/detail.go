package browser

import (
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/yairfalse/apidrift/pkg/types"
)

// Side identifies one value of a change
type Side string

const (
	SideOld Side = "old"
	SideNew Side = "new"
)

// Panel titles
const (
	TitleBefore  = "Before"
	TitleAfter   = "After"
	TitleAdded   = "Added Value"
	TitleDeleted = "Deleted Value"
)

// Panel is one rendered value of the selected change
type Panel struct {
	Side      Side          `json:"side" yaml:"side"`
	Title     string        `json:"title" yaml:"title"`
	Value     types.Payload `json:"value" yaml:"value"`
	Text      string        `json:"text" yaml:"text"`
	Size      int           `json:"size" yaml:"size"`
	Large     bool          `json:"large" yaml:"large"`
	Collapsed bool          `json:"collapsed" yaml:"collapsed"`
}

// Detail is the detail pane of the selected change
type Detail struct {
	Change       types.Change `json:"change" yaml:"change"`
	Panels       []Panel      `json:"panels" yaml:"panels"`
	Modification string       `json:"modification,omitempty" yaml:"modification,omitempty"`
	TextDiff     string       `json:"text_diff,omitempty" yaml:"text_diff,omitempty"`
}

// Panel returns the panel for side, if present
func (d *Detail) Panel(side Side) (Panel, bool) {
	for _, p := range d.Panels {
		if p.Side == side {
			return p, true
		}
	}
	return Panel{}, false
}

// DisplayOptions controls how large values are collapsed
type DisplayOptions struct {
	LargeValueThreshold int
	PreviewChars        int
}

// DefaultDisplayOptions matches the config defaults
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{LargeValueThreshold: 5000, PreviewChars: 500}
}

// BuildDetail lays out panels by change type: before and after for a
// modification, only the new value for an addition and only the old value
// for a deletion. expanded reports which large values the user opened.
func BuildDetail(c types.Change, opts DisplayOptions, expanded func(Side) bool) Detail {
	d := Detail{
		Change:       c,
		Modification: c.Modification.String(),
	}

	switch c.ChangeType {
	case types.ChangeTypeModified:
		d.Panels = []Panel{
			buildPanel(SideOld, TitleBefore, c.OldValue, opts, expanded),
			buildPanel(SideNew, TitleAfter, c.NewValue, opts, expanded),
		}
		d.TextDiff = UnifiedDiff(c.OldValue.String(), c.NewValue.String())
	case types.ChangeTypeAdded:
		d.Panels = []Panel{buildPanel(SideNew, TitleAdded, c.NewValue, opts, expanded)}
	case types.ChangeTypeDeleted:
		d.Panels = []Panel{buildPanel(SideOld, TitleDeleted, c.OldValue, opts, expanded)}
	}
	return d
}

func buildPanel(side Side, title string, value types.Payload, opts DisplayOptions, expanded func(Side) bool) Panel {
	full := value.String()
	p := Panel{
		Side:  side,
		Title: title,
		Value: value,
		Text:  full,
		Size:  utf8.RuneCountInString(full),
	}
	if opts.LargeValueThreshold > 0 && p.Size > opts.LargeValueThreshold {
		p.Large = true
		if expanded == nil || !expanded(side) {
			p.Collapsed = true
			p.Text = Preview(full, opts.PreviewChars)
		}
	}
	return p
}

// Preview returns the first n characters of s
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// UnifiedDiff renders a line diff of two values, or "" when they are equal
func UnifiedDiff(before, after string) string {
	if before == after {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(ensureNewline(before)),
		B:        difflib.SplitLines(ensureNewline(after)),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}

func ensureNewline(s string) string {
	if s == "" || s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}
