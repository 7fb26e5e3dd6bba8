package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

// DiffQuery identifies the snapshot pair to compare. OldSnapshotID may be
// empty, in which case the backend compares against the preceding snapshot.
type DiffQuery struct {
	CollectionID  string
	OldSnapshotID string
	NewSnapshotID string
}

// Diff fetches the full change-set between two snapshots. Filtering,
// grouping and paging happen client side.
func (c *Client) Diff(ctx context.Context, q DiffQuery) (*types.DiffResponse, error) {
	if q.CollectionID == "" || q.NewSnapshotID == "" {
		return nil, errors.ValidationError("collection id and snapshot id are required")
	}

	query := url.Values{}
	if q.OldSnapshotID != "" {
		query.Set("old_snapshot_id", q.OldSnapshotID)
	}

	r := &request{
		method:    http.MethodGet,
		path:      pathf("/collections/%s/changes/diff/%s", q.CollectionID, q.NewSnapshotID),
		query:     query,
		cacheable: true,
	}

	var diff types.DiffResponse
	if err := c.do(ctx, r, &diff); err != nil {
		return nil, err
	}

	if diff.CollectionID == "" {
		diff.CollectionID = q.CollectionID
	}
	if diff.NewSnapshotID == "" {
		diff.NewSnapshotID = q.NewSnapshotID
	}
	if diff.OldSnapshotID == "" {
		diff.OldSnapshotID = q.OldSnapshotID
	}
	if diff.Total == 0 {
		diff.Total = len(diff.Changes)
	}
	return &diff, nil
}

// ChangeSummary returns aggregate change counts for a collection
func (c *Client) ChangeSummary(ctx context.Context, collectionID string) (*types.ChangeSummary, error) {
	if collectionID == "" {
		return nil, errors.ValidationError("collection id is required")
	}
	var summary types.ChangeSummary
	if err := c.do(ctx, &request{
		method: http.MethodGet,
		path:   pathf("/collections/%s/change/summary", collectionID),
	}, &summary); err != nil {
		return nil, err
	}
	if summary.CollectionID == "" {
		summary.CollectionID = collectionID
	}
	return &summary, nil
}

// ListChanges returns every recorded change of a collection
func (c *Client) ListChanges(ctx context.Context, collectionID string) ([]types.Change, error) {
	if collectionID == "" {
		return nil, errors.ValidationError("collection id is required")
	}
	var changes []types.Change
	err := c.doList(ctx, &request{
		method: http.MethodGet,
		path:   pathf("/collections/%s/changes", collectionID),
	}, &changes, "changes")
	return changes, err
}

// ImpactAnalysis returns the backend's classification of a snapshot's changes
func (c *Client) ImpactAnalysis(ctx context.Context, collectionID, snapshotID string) (*types.ImpactAnalysisResponse, error) {
	if collectionID == "" || snapshotID == "" {
		return nil, errors.ValidationError("collection id and snapshot id are required")
	}
	var analysis types.ImpactAnalysisResponse
	if err := c.do(ctx, &request{
		method:    http.MethodGet,
		path:      pathf("/collections/%s/snapshots/%s/impact-analysis", collectionID, snapshotID),
		cacheable: true,
	}, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}
