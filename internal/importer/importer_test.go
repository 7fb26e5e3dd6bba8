package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

type fakeBackend struct {
	remote  []types.RemoteCollection
	failIDs map[string]bool
	saved   []types.SaveCollectionRequest
}

func (f *fakeBackend) SaveCollection(ctx context.Context, req types.SaveCollectionRequest) (*types.Collection, error) {
	f.saved = append(f.saved, req)
	if f.failIDs[req.CollectionID] {
		return nil, errors.BackendError(500, "")
	}
	return &types.Collection{ID: req.CollectionID, Name: req.Name}, nil
}

func (f *fakeBackend) ListRemoteCollections(ctx context.Context) ([]types.RemoteCollection, error) {
	return f.remote, nil
}

func TestParseCollectionFile(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantID   string
		wantName string
		wantErr  bool
	}{
		{
			name:     "descriptor",
			doc:      `{"collection_id":"c1","name":"Orders API"}`,
			wantID:   "c1",
			wantName: "Orders API",
		},
		{
			name:     "postman export",
			doc:      `{"info":{"_postman_id":"8f1c","name":"Users","schema":"https://schema.getpostman.com/json/collection/v2.1.0/collection.json"},"item":[]}`,
			wantID:   "8f1c",
			wantName: "Users",
		},
		{
			name:     "postman api export",
			doc:      `{"collection":{"info":{"_postman_id":"p9","name":"Billing"}}}`,
			wantID:   "p9",
			wantName: "Billing",
		},
		{name: "missing name", doc: `{"collection_id":"c1"}`, wantErr: true},
		{name: "missing id", doc: `{"info":{"name":"Users"}}`, wantErr: true},
		{name: "blank id", doc: `{"collection_id":"  ","name":"x"}`, wantErr: true},
		{name: "not json", doc: `collection_id: c1`, wantErr: true},
		{name: "array", doc: `[{"collection_id":"c1","name":"x"}]`, wantErr: true},
		{name: "object id", doc: `{"collection_id":{"v":1},"name":"x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseCollectionFile([]byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				assert.Equal(t, errors.MessageInvalidFile, errors.UserMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, req.CollectionID)
			assert.Equal(t, tt.wantName, req.Name)
		})
	}
}

func TestImporter_ImportFileNotifiesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.postman_collection.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"info":{"_postman_id":"c1","name":"Orders"}}`), 0o644))

	imp := New(&fakeBackend{}, nil, nil)
	var notified []types.Collection
	imp.OnImported = func(c types.Collection) { notified = append(notified, c) }

	c, err := imp.ImportFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "c1", c.ID)
	require.Len(t, notified, 1)
	assert.Equal(t, "Orders", notified[0].Name)
	assert.Equal(t, 1, imp.Registry().Len())
}

func TestImporter_InvalidFileIsNotSubmitted(t *testing.T) {
	backend := &fakeBackend{}
	imp := New(backend, nil, nil)

	_, err := imp.ImportDocument(context.Background(), []byte(`{"name":"only a name"}`))
	require.Error(t, err)
	assert.Empty(t, backend.saved)
	assert.Zero(t, imp.Registry().Len())
}

func TestImporter_MissingFile(t *testing.T) {
	imp := New(&fakeBackend{}, nil, nil)
	_, err := imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFileSystem))
}

func TestImporter_ImportTwiceKeepsOneEntry(t *testing.T) {
	imp := New(&fakeBackend{}, nil, nil)
	doc := []byte(`{"collection_id":"c1","name":"Orders"}`)

	_, err := imp.ImportDocument(context.Background(), doc)
	require.NoError(t, err)
	_, err = imp.ImportDocument(context.Background(), []byte(`{"collection_id":"c1","name":"Orders v2"}`))
	require.NoError(t, err)

	list := imp.Registry().List()
	require.Len(t, list, 1)
	assert.Equal(t, "Orders v2", list[0].Name)
}

func TestImporter_ImportRemoteTalliesIndependently(t *testing.T) {
	backend := &fakeBackend{
		remote: []types.RemoteCollection{
			{ID: "r1", Name: "One"},
			{ID: "r2", Name: "Two"},
			{ID: "r3", Name: "Three"},
		},
		failIDs: map[string]bool{"r2": true},
	}
	imp := New(backend, nil, nil)

	attempts := map[string]bool{}
	imp.OnAttempt = func(id string, err error) { attempts[id] = err == nil }

	available, err := imp.ListRemote(context.Background())
	require.NoError(t, err)

	result := imp.ImportRemote(context.Background(), available, []string{"r1", "r2", "r3", "r1", "ghost"})

	assert.Equal(t, BatchResult{Succeeded: 2, Failed: 2}, result)
	assert.Equal(t, 4, result.Total())
	assert.Len(t, backend.saved, 3, "sequential submission continues past a failure")
	assert.Equal(t, 2, imp.Registry().Len())
	assert.Equal(t, map[string]bool{"r1": true, "r2": false, "r3": true, "ghost": false}, attempts)
}

func TestRegistry_Upsert(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	r := NewRegistry(types.Collection{ID: "c1", Name: "Orders", FirstSeen: types.NewTimestamp(first), LastSeen: types.NewTimestamp(first)})

	added := r.Upsert(types.Collection{ID: "c1", LastSeen: types.NewTimestamp(later)})
	assert.False(t, added)

	c, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "Orders", c.Name, "empty name does not clobber")
	assert.True(t, c.FirstSeen.Equal(first))
	assert.True(t, c.LastSeen.Equal(later))

	assert.False(t, r.Upsert(types.Collection{}), "entries need an id")

	for i := 0; i < 5; i++ {
		r.Upsert(types.Collection{ID: fmt.Sprintf("c%d", i%2+1)})
	}
	assert.Equal(t, 2, r.Len())
}
