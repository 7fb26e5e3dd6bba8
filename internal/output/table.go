package output

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/yairfalse/apidrift/pkg/types"
)

// CollectionListItem represents a stored collection in list output
type CollectionListItem struct {
	ID        string `json:"id" yaml:"id" table:"ID"`
	Name      string `json:"name" yaml:"name" table:"Name"`
	FirstSeen string `json:"first_seen" yaml:"first_seen" table:"First Seen"`
	LastSeen  string `json:"last_seen" yaml:"last_seen" table:"Last Seen"`
}

// RemoteCollectionListItem represents a collection available for import
type RemoteCollectionListItem struct {
	ID        string `json:"id" yaml:"id" table:"ID"`
	Name      string `json:"name" yaml:"name" table:"Name"`
	Owner     string `json:"owner,omitempty" yaml:"owner,omitempty" table:"Owner"`
	UpdatedAt string `json:"updated_at,omitempty" yaml:"updated_at,omitempty" table:"Updated"`
}

// SnapshotListItem represents a snapshot in list output
type SnapshotListItem struct {
	ID    string `json:"id" yaml:"id" table:"ID" column:"id"`
	Time  string `json:"snapshot_time" yaml:"snapshot_time" table:"Captured" column:"time"`
	Items int    `json:"item_count" yaml:"item_count" table:"Items" column:"items"`
	Size  string `json:"size" yaml:"size" table:"Size" column:"size"`
}

// APIKeyListItem represents a registered key. The key itself is masked.
type APIKeyListItem struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty" table:"ID"`
	Name    string `json:"name" yaml:"name" table:"Name"`
	Key     string `json:"key" yaml:"key" table:"Key"`
	Default bool   `json:"default" yaml:"default" table:"Default"`
}

// ChangeListItem represents a change in list output
type ChangeListItem struct {
	ID       string `json:"id" yaml:"id" table:"ID"`
	Type     string `json:"change_type" yaml:"change_type" table:"Type"`
	Resource string `json:"resource_type" yaml:"resource_type" table:"Resource"`
	Endpoint string `json:"endpoint_name,omitempty" yaml:"endpoint_name,omitempty" table:"Endpoint"`
	Path     string `json:"path" yaml:"path" table:"Path"`
}

// Collections prints stored collections
func (p *Printer) Collections(collections []types.Collection) error {
	items := make([]CollectionListItem, 0, len(collections))
	for i := range collections {
		c := &collections[i]
		items = append(items, CollectionListItem{
			ID:        c.ID,
			Name:      c.Name,
			FirstSeen: c.FirstSeen.Display(),
			LastSeen:  c.LastSeen.Display(),
		})
	}
	if p.Structured() {
		return p.Encode(items)
	}
	return p.list(items, "No collections found. Import one with 'apidrift collections import'.")
}

// RemoteCollections prints collections visible through the registered API key
func (p *Printer) RemoteCollections(collections []types.RemoteCollection) error {
	items := make([]RemoteCollectionListItem, 0, len(collections))
	for i := range collections {
		c := &collections[i]
		items = append(items, RemoteCollectionListItem{
			ID:        c.ID,
			Name:      c.Name,
			Owner:     c.Owner,
			UpdatedAt: c.UpdatedAt,
		})
	}
	if p.Structured() {
		return p.Encode(items)
	}
	return p.list(items, "No remote collections found. Register an API key with 'apidrift keys create'.")
}

// SnapshotPage prints one page of snapshot history
func (p *Printer) SnapshotPage(collectionName string, page *types.SnapshotPage) error {
	items := make([]SnapshotListItem, 0, len(page.Snapshots))
	for i := range page.Snapshots {
		s := &page.Snapshots[i]
		items = append(items, SnapshotListItem{
			ID:    s.ID,
			Time:  s.SnapshotTime.Display(),
			Items: s.ItemCount,
			Size:  formatSizeKB(s.SizeKB),
		})
	}
	if p.Structured() {
		return p.Encode(struct {
			Snapshots  []SnapshotListItem `json:"snapshots" yaml:"snapshots"`
			Page       int                `json:"page" yaml:"page"`
			TotalPages int                `json:"total_pages" yaml:"total_pages"`
			Total      int                `json:"total" yaml:"total"`
		}{items, page.Page, page.Pages(), page.Total})
	}

	if collectionName != "" {
		fmt.Fprintln(p.w, p.colorize("Snapshots of "+collectionName, colorHeading...))
	}
	if err := p.list(items, "No snapshots yet. Capture one with 'apidrift snapshots create'.", p.config.SnapshotColumns...); err != nil {
		return err
	}
	if len(items) > 0 {
		fmt.Fprintf(p.w, "\nPage %d of %d (%d snapshots)\n", page.Page, page.Pages(), page.Total)
		if len(items) > 1 {
			fmt.Fprintf(p.w, "Compare two with: apidrift diff --collection <id> --old %s --new %s\n",
				items[len(items)-1].ID, items[0].ID)
		}
	}
	return nil
}

// APIKeys prints registered keys with their values masked
func (p *Printer) APIKeys(keys []types.APIKey) error {
	items := make([]APIKeyListItem, 0, len(keys))
	for i := range keys {
		k := &keys[i]
		items = append(items, APIKeyListItem{ID: k.ID, Name: k.Name, Key: k.Masked(), Default: k.Default})
	}
	if p.Structured() {
		return p.Encode(items)
	}
	return p.list(items, "No API keys registered.")
}

// Changes prints a flat change list
func (p *Printer) Changes(changes []types.Change) error {
	items := make([]ChangeListItem, 0, len(changes))
	for i := range changes {
		c := &changes[i]
		items = append(items, ChangeListItem{
			ID:       c.ID,
			Type:     string(c.ChangeType),
			Resource: string(c.ResourceType),
			Endpoint: c.EndpointName,
			Path:     c.DisplayPath(),
		})
	}
	if p.Structured() {
		return p.Encode(items)
	}
	return p.list(items, "No changes recorded.")
}

// ChangeSummary prints aggregate change counts
func (p *Printer) ChangeSummary(s *types.ChangeSummary) error {
	if p.Structured() {
		return p.Encode(s)
	}

	rows := [][2]string{
		{"Collection", s.CollectionID},
		{"Total", fmt.Sprint(s.Total)},
		{"Added", p.colorize(fmt.Sprint(s.Added), colorAdded...)},
		{"Deleted", p.colorize(fmt.Sprint(s.Deleted), colorDeleted...)},
		{"Modified", p.colorize(fmt.Sprint(s.Modified), colorModified...)},
	}
	if s.LastChange != "" {
		rows = append(rows, [2]string{"Last Change", s.LastChange})
	}
	for _, k := range sortedKeys(s.ByResource) {
		rows = append(rows, [2]string{"  " + k, fmt.Sprint(s.ByResource[k])})
	}
	return p.KeyValues("Change Summary", rows)
}

// KeyValues prints an aligned two-column block under a title
func (p *Printer) KeyValues(title string, rows [][2]string) error {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if title != "" {
		fmt.Fprintln(w, p.colorize(title, colorHeading...))
		fmt.Fprintln(w, strings.Repeat("=", len(title)))
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s:\t%s\n", r[0], r[1])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := p.w.Write(buf.Bytes())
	return err
}

// list prints a slice of structs, or empty when there is nothing to show
func (p *Printer) list(items interface{}, empty string, columns ...string) error {
	if reflect.ValueOf(items).Len() == 0 {
		fmt.Fprintln(p.w, empty)
		return nil
	}
	out, err := formatStructList(items, columns)
	if err != nil {
		return err
	}
	_, err = p.w.Write(out)
	return err
}

// formatStructList formats a slice of structs as a table using the
// `table` struct tags for headers. A non-empty columns list picks fields by
// their `column` tag, in that order.
func formatStructList(items interface{}, columns []string) ([]byte, error) {
	v := reflect.ValueOf(items)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("items must be a slice")
	}
	if v.Len() == 0 {
		return nil, nil
	}

	itemType := v.Index(0).Type()
	var headers []string
	var fields []int
	if len(columns) == 0 {
		for i := 0; i < itemType.NumField(); i++ {
			if tag := itemType.Field(i).Tag.Get("table"); tag != "" {
				headers = append(headers, tag)
				fields = append(fields, i)
			}
		}
	} else {
		for _, col := range columns {
			for i := 0; i < itemType.NumField(); i++ {
				f := itemType.Field(i)
				if strings.EqualFold(f.Tag.Get("column"), strings.TrimSpace(col)) && f.Tag.Get("table") != "" {
					headers = append(headers, f.Tag.Get("table"))
					fields = append(fields, i)
				}
			}
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("none of the columns %v exist", columns)
		}
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))
	rule := make([]string, len(headers))
	for i, h := range headers {
		rule[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(rule, "\t"))

	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		row := make([]string, 0, len(fields))
		for _, f := range fields {
			row = append(row, truncate(oneLine(fmt.Sprint(item.Field(f).Interface())), 50))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatSizeKB(kb float64) string {
	switch {
	case kb <= 0:
		return "-"
	case kb >= 1024:
		return fmt.Sprintf("%.1f MB", kb/1024)
	default:
		return fmt.Sprintf("%.1f KB", kb)
	}
}
