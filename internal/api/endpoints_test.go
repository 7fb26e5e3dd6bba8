package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

// route serves fixed bodies by path and records the last query seen
type route struct {
	status int
	body   string
}

func newRoutedClient(t *testing.T, routes map[string]route, lastQuery *string) *Client {
	t.Helper()
	return newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if lastQuery != nil {
			*lastQuery = r.URL.RawQuery
		}
		rt, ok := routes[r.Method+" "+r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		if rt.status != 0 {
			w.WriteHeader(rt.status)
		}
		w.Write([]byte(rt.body))
	})
}

func TestListSnapshots(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
		wantPages int
	}{
		{
			name:      "snake case envelope",
			body:      `{"snapshots":[{"id":"s1"},{"id":"s2"}],"page":1,"page_size":2,"total":5,"total_pages":3}`,
			wantCount: 2,
			wantPages: 3,
		},
		{
			name:      "camel case envelope",
			body:      `{"items":[{"id":"s1"}],"page":1,"pageSize":1,"totalPages":4}`,
			wantCount: 1,
			wantPages: 4,
		},
		{
			name:      "bare array",
			body:      `[{"id":"s1"},{"id":"s2"},{"id":"s3"}]`,
			wantCount: 3,
			wantPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query string
			c := newRoutedClient(t, map[string]route{
				"GET /collections/c1/snapshots": {body: tt.body},
			}, &query)

			page, err := c.ListSnapshots(context.Background(), "c1", 1, 10)
			require.NoError(t, err)

			assert.Len(t, page.Snapshots, tt.wantCount)
			assert.Equal(t, tt.wantPages, page.Pages())
			assert.Equal(t, "page=1&pageSize=10", query)
		})
	}
}

func TestSnapshotItems(t *testing.T) {
	var query string
	c := newRoutedClient(t, map[string]route{
		"GET /collections/c1/snapshots/s1/items": {body: `{"items":[{"id":"f","name":"Users","children":[{"id":"r","name":"GET /users","method":"GET"}]}]}`},
	}, &query)

	items, err := c.SnapshotItems(context.Background(), "c1", "s1", ItemsQuery{Search: "users", PageSize: 50})
	require.NoError(t, err)

	assert.Equal(t, "s1", items.SnapshotID)
	assert.Equal(t, 2, items.Total)
	assert.Equal(t, "page_size=50&search=users", query)
}

func TestSnapshotHierarchy(t *testing.T) {
	t.Run("single root", func(t *testing.T) {
		c := newRoutedClient(t, map[string]route{
			"GET /collections/c1/snapshots/s1/hierarchy": {body: `{"name":"root","children":[{"name":"users"}]}`},
		}, nil)

		nodes, err := c.SnapshotHierarchy(context.Background(), "c1", "s1")
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, "root", nodes[0].Name)
		assert.Len(t, nodes[0].Children, 1)
	})

	t.Run("wrapped list", func(t *testing.T) {
		c := newRoutedClient(t, map[string]route{
			"GET /collections/c1/snapshots/s1/hierarchy": {body: `{"hierarchy":[{"name":"a"},{"name":"b"}]}`},
		}, nil)

		nodes, err := c.SnapshotHierarchy(context.Background(), "c1", "s1")
		require.NoError(t, err)
		assert.Len(t, nodes, 2)
	})
}

func TestDiff(t *testing.T) {
	var query string
	c := newRoutedClient(t, map[string]route{
		"GET /collections/c1/changes/diff/s2": {body: `{"changes":[
			{"id":"1","change_type":"added","path":"a","human_path":"GET /users","new_value":{"x":1}},
			{"id":"2","change_type":"modified","path":"b","human_path":"GET /orders","old_value":"foo","new_value":"bar"}
		]}`},
	}, &query)

	diff, err := c.Diff(context.Background(), DiffQuery{CollectionID: "c1", OldSnapshotID: "s1", NewSnapshotID: "s2"})
	require.NoError(t, err)

	assert.Equal(t, "old_snapshot_id=s1", query)
	assert.Equal(t, 2, diff.Total)
	assert.Equal(t, "s1", diff.OldSnapshotID)
	assert.Equal(t, types.PayloadStructured, diff.Changes[0].NewValue.Kind)
	assert.Equal(t, "foo", diff.Changes[1].OldValue.String())
}

func TestDiff_RequiresIdentifiers(t *testing.T) {
	c, err := New("http://localhost:1")
	require.NoError(t, err)

	_, err = c.Diff(context.Background(), DiffQuery{CollectionID: "c1"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestChangeSummaryAndList(t *testing.T) {
	c := newRoutedClient(t, map[string]route{
		"GET /collections/c1/change/summary": {body: `{"total":3,"added":1,"deleted":1,"modified":1}`},
		"GET /collections/c1/changes":        {body: `{"changes":[{"id":"1","change_type":"deleted","path":"p"}]}`},
	}, nil)

	summary, err := c.ChangeSummary(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", summary.CollectionID)
	assert.Equal(t, 3, summary.Total)

	changes, err := c.ListChanges(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, types.ChangeTypeDeleted, changes[0].ChangeType)
}

func TestImpactAnalysis(t *testing.T) {
	c := newRoutedClient(t, map[string]route{
		"GET /collections/c1/snapshots/s1/impact-analysis": {body: `{
			"breaking_changes":[{"change":{"id":"1","change_type":"deleted","path":"p"},"impact":"Endpoint removed","severity":"high"}],
			"summary":{"breaking_changes_count":1,"risk_score":72.5,"recommendation":"Hold the release"}
		}`},
	}, nil)

	analysis, err := c.ImpactAnalysis(context.Background(), "c1", "s1")
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.Count(types.ImpactBreaking))
	assert.Equal(t, 72.5, analysis.Summary.RiskScore)
}

func TestAPIKeys(t *testing.T) {
	c := newRoutedClient(t, map[string]route{
		"POST /api-key":              {body: `{"id":"k1","name":"work","key":"PMAK-1234567890","default":true}`},
		"GET /keys/api-keys":         {body: `{"api_keys":[{"id":"k1","name":"work","key":"PMAK-1234567890"}]}`},
		"DELETE /keys/api-key/k%2F1": {status: http.StatusNoContent},
	}, nil)

	created, err := c.CreateAPIKey(context.Background(), types.APIKey{Name: "work", Key: "PMAK-1234567890", Default: true})
	require.NoError(t, err)
	assert.Equal(t, "PMAK-1********", created.Masked())

	keys, err := c.ListAPIKeys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	require.NoError(t, c.DeleteAPIKey(context.Background(), "k/1"))

	_, err = c.CreateAPIKey(context.Background(), types.APIKey{Name: "empty"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestCollections(t *testing.T) {
	c := newRoutedClient(t, map[string]route{
		"GET /collections":      {body: `{"collections":[{"id":"r1","name":"Remote"}]}`},
		"GET /collections/user": {body: `[{"id":"c1","name":"Mine","last_seen":"2024-05-01T08:00:00"}]`},
		"GET /collections/c1":   {body: `{"id":"c1","name":"Mine"}`},
	}, nil)

	remote, err := c.ListRemoteCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Remote", remote[0].Name)

	mine, err := c.ListUserCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 5, int(mine[0].LastSeen.Month()))

	one, err := c.GetCollection(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Mine", one.Name)

	_, err = c.GetCollection(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "Not Found", errors.UserMessage(err))
}

func TestSaveCollection_Validation(t *testing.T) {
	c, err := New("http://localhost:1")
	require.NoError(t, err)

	_, err = c.SaveCollection(context.Background(), types.SaveCollectionRequest{CollectionID: "  ", Name: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "CollectionID is required")
}

func TestSignup(t *testing.T) {
	c := newRoutedClient(t, map[string]route{
		"POST /signup": {status: http.StatusBadRequest, body: `{"detail":"Email already registered"}`},
	}, nil)

	err := c.Signup(context.Background(), types.Credentials{Email: "a@b.c", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", errors.UserMessage(err))
}
