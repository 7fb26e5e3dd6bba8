package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Snapshot represents an immutable point-in-time capture of a collection
type Snapshot struct {
	ID             string          `json:"id" yaml:"id"`
	CollectionID   string          `json:"collection_id" yaml:"collection_id"`
	SnapshotTime   Timestamp       `json:"snapshot_time" yaml:"snapshot_time"`
	CollectionName string          `json:"collection_name" yaml:"collection_name"`
	ItemCount      int             `json:"item_count" yaml:"item_count"`
	SizeKB         float64         `json:"size_kb" yaml:"size_kb"`
	Content        json.RawMessage `json:"content,omitempty" yaml:"-"`
}

// Validate checks if the Snapshot has the fields every diff operation relies on
func (s *Snapshot) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("snapshot ID is required")
	}
	if strings.TrimSpace(s.CollectionID) == "" {
		return errors.New("snapshot collection ID is required")
	}
	return nil
}

// HasContent reports whether the backend shipped the snapshot body
func (s *Snapshot) HasContent() bool {
	return len(s.Content) > 0 && string(s.Content) != "null"
}

// String returns a string representation of the snapshot
func (s *Snapshot) String() string {
	return fmt.Sprintf("%s snapshot %s (%s)", s.CollectionName, s.ID, s.SnapshotTime.Format(time.RFC3339))
}

// SnapshotPage is one page of a collection's snapshot history
type SnapshotPage struct {
	Snapshots  []Snapshot `json:"snapshots"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// Pages returns the page count, deriving it from Total when the backend omits it
func (p *SnapshotPage) Pages() int {
	if p.TotalPages > 0 {
		return p.TotalPages
	}
	if p.PageSize <= 0 || p.Total <= 0 {
		if len(p.Snapshots) > 0 {
			return 1
		}
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// SnapshotItem is one node of a snapshot's endpoint tree
type SnapshotItem struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Type     string          `json:"type,omitempty" yaml:"type,omitempty"`
	Method   string          `json:"method,omitempty" yaml:"method,omitempty"`
	URL      string          `json:"url,omitempty" yaml:"url,omitempty"`
	Path     string          `json:"path,omitempty" yaml:"path,omitempty"`
	Children []SnapshotItem  `json:"children,omitempty" yaml:"children,omitempty"`
	Raw      json.RawMessage `json:"raw,omitempty" yaml:"-"`
}

// SnapshotItems is the content listing of one snapshot
type SnapshotItems struct {
	SnapshotID string         `json:"snapshot_id" yaml:"snapshot_id"`
	Items      []SnapshotItem `json:"items" yaml:"items"`
	Total      int            `json:"total" yaml:"total"`
}

// CountItems returns the number of nodes in the tree, children included
func (s *SnapshotItems) CountItems() int {
	var count func(items []SnapshotItem) int
	count = func(items []SnapshotItem) int {
		n := 0
		for i := range items {
			n += 1 + count(items[i].Children)
		}
		return n
	}
	return count(s.Items)
}
