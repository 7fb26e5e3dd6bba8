package browser

import (
	"fmt"
	"strings"

	"github.com/yairfalse/apidrift/pkg/types"
)

// TypeFilter restricts the change list to one change type
type TypeFilter string

const (
	FilterAll      TypeFilter = "all"
	FilterAdded    TypeFilter = "added"
	FilterDeleted  TypeFilter = "deleted"
	FilterModified TypeFilter = "modified"
)

// ParseTypeFilter validates a type filter name. Empty means all.
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch f := TypeFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterAdded, FilterDeleted, FilterModified:
		return f, nil
	default:
		return "", fmt.Errorf("invalid type filter %q (want all, added, deleted or modified)", s)
	}
}

// GroupBy selects how changes are bucketed
type GroupBy string

const (
	GroupNone     GroupBy = "none"
	GroupEndpoint GroupBy = "endpoint"
	GroupType     GroupBy = "type"
)

// ParseGroupBy validates a grouping name. Empty means none.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GroupNone, nil
	case GroupNone, GroupEndpoint, GroupType:
		return g, nil
	default:
		return "", fmt.Errorf("invalid grouping %q (want none, endpoint or type)", s)
	}
}

// FallbackGroup holds changes without an endpoint name when grouping by endpoint
const FallbackGroup = "Collection Level"

// Criteria is the client-side view of the change-set
type Criteria struct {
	Search  string     `json:"search" yaml:"search"`
	Type    TypeFilter `json:"type" yaml:"type"`
	GroupBy GroupBy    `json:"group_by" yaml:"group_by"`
}

// DefaultCriteria shows everything ungrouped
func DefaultCriteria() Criteria {
	return Criteria{Type: FilterAll, GroupBy: GroupNone}
}

// MatchesSearch reports whether the change's human path, path or endpoint
// name contains term, ignoring case. An empty term matches everything.
func MatchesSearch(c *types.Change, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(c.HumanPath), term) ||
		strings.Contains(strings.ToLower(c.Path), term) ||
		strings.Contains(strings.ToLower(c.EndpointName), term)
}

// MatchesType reports whether the change passes the type filter
func MatchesType(c *types.Change, f TypeFilter) bool {
	if f == "" || f == FilterAll {
		return true
	}
	return string(c.ChangeType) == string(f)
}

// Filter returns the changes matching the search term and type filter, in
// their original order
func Filter(changes []types.Change, search string, f TypeFilter) []types.Change {
	out := make([]types.Change, 0, len(changes))
	for i := range changes {
		if MatchesType(&changes[i], f) && MatchesSearch(&changes[i], search) {
			out = append(out, changes[i])
		}
	}
	return out
}

// GroupLabel returns the bucket a change falls into
func GroupLabel(c *types.Change, by GroupBy) string {
	switch by {
	case GroupEndpoint:
		if name := strings.TrimSpace(c.EndpointName); name != "" {
			return name
		}
		return FallbackGroup
	case GroupType:
		return c.ChangeType.Label()
	default:
		return ""
	}
}

// Group is one bucket of changes
type Group struct {
	Label    string         `json:"label" yaml:"label"`
	Changes  []types.Change `json:"changes" yaml:"changes"`
	Expanded bool           `json:"expanded" yaml:"expanded"`

	// Total counts the group's members across every page
	Total int `json:"total" yaml:"total"`
}

// GroupChanges buckets changes by label. Buckets appear in order of first
// occurrence and every change lands in exactly one bucket. With GroupNone
// there is a single unlabeled bucket.
func GroupChanges(changes []types.Change, by GroupBy) []Group {
	if len(changes) == 0 {
		return nil
	}
	if by == "" || by == GroupNone {
		return []Group{{Changes: append([]types.Change(nil), changes...), Total: len(changes)}}
	}

	var groups []Group
	index := make(map[string]int)
	for i := range changes {
		label := GroupLabel(&changes[i], by)
		gi, ok := index[label]
		if !ok {
			gi = len(groups)
			index[label] = gi
			groups = append(groups, Group{Label: label})
		}
		groups[gi].Changes = append(groups[gi].Changes, changes[i])
		groups[gi].Total++
	}
	return groups
}

// Order flattens the grouping back into one list, so that navigation and
// paging follow the order the groups are displayed in
func Order(changes []types.Change, by GroupBy) []types.Change {
	if by == "" || by == GroupNone {
		return changes
	}
	out := make([]types.Change, 0, len(changes))
	for _, g := range GroupChanges(changes, by) {
		out = append(out, g.Changes...)
	}
	return out
}

// PageCount returns the number of pages needed for n items
func PageCount(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// Paginate returns the 1-based page of items
func Paginate(changes []types.Change, page, pageSize int) []types.Change {
	if pageSize <= 0 || page < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(changes) {
		return nil
	}
	end := start + pageSize
	if end > len(changes) {
		end = len(changes)
	}
	return changes[start:end]
}
