package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

// ListSnapshots returns one page of a collection's snapshot history
func (c *Client) ListSnapshots(ctx context.Context, collectionID string, page, pageSize int) (*types.SnapshotPage, error) {
	if collectionID == "" {
		return nil, errors.ValidationError("collection id is required")
	}

	r := &request{
		method: http.MethodGet,
		path:   pathf("/collections/%s/snapshots", collectionID),
		query: url.Values{
			"page":     {strconv.Itoa(page)},
			"pageSize": {strconv.Itoa(pageSize)},
		},
	}

	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}

	result := &types.SnapshotPage{Page: page, PageSize: pageSize}
	if gjson.ParseBytes(raw).IsObject() {
		if err := json.Unmarshal(raw, result); err != nil {
			return nil, decodeError(r, err)
		}
		// camelCase variants
		parsed := gjson.ParseBytes(raw)
		if result.PageSize == 0 {
			result.PageSize = int(parsed.Get("pageSize").Int())
		}
		if result.TotalPages == 0 {
			result.TotalPages = int(parsed.Get("totalPages").Int())
		}
		if result.Snapshots == nil {
			if err := decodeList(raw, &result.Snapshots, "items", "data"); err != nil {
				return nil, decodeError(r, err)
			}
		}
	} else if err := decodeList(raw, &result.Snapshots); err != nil {
		return nil, decodeError(r, err)
	}

	if result.Page == 0 {
		result.Page = page
	}
	if result.Total == 0 && result.TotalPages == 0 {
		result.Total = len(result.Snapshots)
	}
	return result, nil
}

// ItemsQuery narrows a snapshot content listing
type ItemsQuery struct {
	Search   string
	PageSize int
}

// SnapshotItems returns the endpoint tree of one snapshot
func (c *Client) SnapshotItems(ctx context.Context, collectionID, snapshotID string, q ItemsQuery) (*types.SnapshotItems, error) {
	if collectionID == "" || snapshotID == "" {
		return nil, errors.ValidationError("collection id and snapshot id are required")
	}

	query := url.Values{}
	query.Set("search", q.Search)
	if q.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(q.PageSize))
	}

	r := &request{
		method:    http.MethodGet,
		path:      pathf("/collections/%s/snapshots/%s/items", collectionID, snapshotID),
		query:     query,
		cacheable: true,
	}

	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}

	items := &types.SnapshotItems{SnapshotID: snapshotID}
	if gjson.ParseBytes(raw).IsObject() {
		if err := json.Unmarshal(raw, items); err != nil {
			return nil, decodeError(r, err)
		}
	} else if err := decodeList(raw, &items.Items); err != nil {
		return nil, decodeError(r, err)
	}
	if items.SnapshotID == "" {
		items.SnapshotID = snapshotID
	}
	if items.Total == 0 {
		items.Total = items.CountItems()
	}
	return items, nil
}

// SnapshotHierarchy returns the path hierarchy of one snapshot
func (c *Client) SnapshotHierarchy(ctx context.Context, collectionID, snapshotID string) ([]types.HierarchyNode, error) {
	if collectionID == "" || snapshotID == "" {
		return nil, errors.ValidationError("collection id and snapshot id are required")
	}

	r := &request{
		method:    http.MethodGet,
		path:      pathf("/collections/%s/snapshots/%s/hierarchy", collectionID, snapshotID),
		cacheable: true,
	}

	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(raw)
	if parsed.IsObject() && !parsed.Get("hierarchy").Exists() && !parsed.Get("nodes").Exists() {
		// a single root node
		var root types.HierarchyNode
		if err := json.Unmarshal(raw, &root); err != nil {
			return nil, decodeError(r, err)
		}
		return []types.HierarchyNode{root}, nil
	}

	var nodes []types.HierarchyNode
	if err := decodeList(raw, &nodes, "hierarchy", "nodes"); err != nil {
		return nil, decodeError(r, err)
	}
	return nodes, nil
}
