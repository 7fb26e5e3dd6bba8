package types

import (
	"fmt"
	"strings"
)

// ChangeType represents the kind of difference detected between two snapshots
type ChangeType string

const (
	ChangeTypeAdded    ChangeType = "added"
	ChangeTypeDeleted  ChangeType = "deleted"
	ChangeTypeModified ChangeType = "modified"
)

// ResourceType identifies what part of a collection a change touches
type ResourceType string

const (
	ResourceRequest    ResourceType = "request"
	ResourceResponse   ResourceType = "response"
	ResourceEndpoint   ResourceType = "endpoint"
	ResourceCollection ResourceType = "collection"
)

// Change is one detected difference between two snapshots. It is produced by
// the backend and never computed locally.
type Change struct {
	ID            string       `json:"id" yaml:"id"`
	CollectionID  string       `json:"collection_id" yaml:"collection_id"`
	OldSnapshotID string       `json:"old_snapshot_id" yaml:"old_snapshot_id"`
	NewSnapshotID string       `json:"new_snapshot_id" yaml:"new_snapshot_id"`
	ChangeType    ChangeType   `json:"change_type" yaml:"change_type"`
	Path          string       `json:"path" yaml:"path"`
	HumanPath     string       `json:"human_path" yaml:"human_path"`
	PathSegments  []string     `json:"path_segments" yaml:"path_segments"`
	Modification  Payload      `json:"modification,omitzero" yaml:"modification,omitempty"`
	EndpointName  string       `json:"endpoint_name,omitempty" yaml:"endpoint_name,omitempty"`
	ResourceType  ResourceType `json:"resource_type" yaml:"resource_type"`
	OldValue      Payload      `json:"old_value,omitzero" yaml:"old_value,omitempty"`
	NewValue      Payload      `json:"new_value,omitzero" yaml:"new_value,omitempty"`
	DetectedAt    string       `json:"detected_at,omitempty" yaml:"detected_at,omitempty"`
}

// Valid reports whether t is one of the three known change types
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeTypeAdded, ChangeTypeDeleted, ChangeTypeModified:
		return true
	}
	return false
}

// Label returns the capitalized change type, e.g. "Modified"
func (t ChangeType) Label() string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// CheckInvariants reports the first data-model invariant this change breaks.
// The client does not own change data, so callers log the result instead of
// rejecting the change.
func (c *Change) CheckInvariants() error {
	if !c.ChangeType.Valid() {
		return fmt.Errorf("change %s: unknown change_type %q", c.ID, c.ChangeType)
	}

	switch c.ChangeType {
	case ChangeTypeModified:
		if c.OldValue.IsEmpty() || c.NewValue.IsEmpty() {
			return fmt.Errorf("change %s: modified change must carry both old_value and new_value", c.ID)
		}
	case ChangeTypeAdded:
		if !c.OldValue.IsEmpty() || c.NewValue.IsEmpty() {
			return fmt.Errorf("change %s: added change must carry only new_value", c.ID)
		}
	case ChangeTypeDeleted:
		if c.OldValue.IsEmpty() || !c.NewValue.IsEmpty() {
			return fmt.Errorf("change %s: deleted change must carry only old_value", c.ID)
		}
	}

	return nil
}

// DisplayPath returns the most readable path available
func (c *Change) DisplayPath() string {
	if c.HumanPath != "" {
		return c.HumanPath
	}
	return c.Path
}

// DiffResponse is the change-set between two snapshots
type DiffResponse struct {
	CollectionID  string   `json:"collection_id"`
	OldSnapshotID string   `json:"old_snapshot_id"`
	NewSnapshotID string   `json:"new_snapshot_id"`
	Changes       []Change `json:"changes"`
	Total         int      `json:"total"`
}

// ChangeSummary aggregates change counts for a collection
type ChangeSummary struct {
	CollectionID string         `json:"collection_id" yaml:"collection_id"`
	Total        int            `json:"total" yaml:"total"`
	Added        int            `json:"added" yaml:"added"`
	Deleted      int            `json:"deleted" yaml:"deleted"`
	Modified     int            `json:"modified" yaml:"modified"`
	ByResource   map[string]int `json:"by_resource,omitempty" yaml:"by_resource,omitempty"`
	LastChange   string         `json:"last_change,omitempty" yaml:"last_change,omitempty"`
}

// HierarchyNode is one node of a snapshot's path hierarchy
type HierarchyNode struct {
	Name        string          `json:"name" yaml:"name"`
	Path        string          `json:"path,omitempty" yaml:"path,omitempty"`
	Type        string          `json:"type,omitempty" yaml:"type,omitempty"`
	ChangeCount int             `json:"change_count,omitempty" yaml:"change_count,omitempty"`
	Children    []HierarchyNode `json:"children,omitempty" yaml:"children,omitempty"`
}
