package browser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/apidrift/pkg/types"
)

func change(id string, ct types.ChangeType, humanPath, endpoint string) types.Change {
	c := types.Change{
		ID:           id,
		CollectionID: "c1",
		ChangeType:   ct,
		Path:         "item." + id,
		HumanPath:    humanPath,
		EndpointName: endpoint,
		ResourceType: types.ResourceRequest,
	}
	switch ct {
	case types.ChangeTypeAdded:
		c.NewValue = types.TextPayload("new-" + id)
	case types.ChangeTypeDeleted:
		c.OldValue = types.TextPayload("old-" + id)
	case types.ChangeTypeModified:
		c.OldValue = types.TextPayload("old-" + id)
		c.NewValue = types.TextPayload("new-" + id)
	}
	return c
}

func sampleChanges() []types.Change {
	return []types.Change{
		change("1", types.ChangeTypeAdded, "Users > List > headers", "List users"),
		change("2", types.ChangeTypeModified, "Users > Create > body", "Create user"),
		change("3", types.ChangeTypeDeleted, "Orders > Get > url", "Get order"),
		change("4", types.ChangeTypeModified, "info > description", ""),
		change("5", types.ChangeTypeAdded, "Users > List > params", "List users"),
	}
}

func ids(changes []types.Change) []string {
	out := make([]string, 0, len(changes))
	for i := range changes {
		out = append(out, changes[i].ID)
	}
	return out
}

func TestParseTypeFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    TypeFilter
		wantErr bool
	}{
		{in: "", want: FilterAll},
		{in: "all", want: FilterAll},
		{in: "Modified", want: FilterModified},
		{in: " added ", want: FilterAdded},
		{in: "deleted", want: FilterDeleted},
		{in: "renamed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTypeFilter(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGroupBy(t *testing.T) {
	g, err := ParseGroupBy("")
	require.NoError(t, err)
	assert.Equal(t, GroupNone, g)

	g, err = ParseGroupBy("ENDPOINT")
	require.NoError(t, err)
	assert.Equal(t, GroupEndpoint, g)

	_, err = ParseGroupBy("resource")
	assert.Error(t, err)
}

func TestFilter_ByType(t *testing.T) {
	changes := sampleChanges()

	tests := []struct {
		filter TypeFilter
		want   []string
	}{
		{FilterAll, []string{"1", "2", "3", "4", "5"}},
		{FilterAdded, []string{"1", "5"}},
		{FilterModified, []string{"2", "4"}},
		{FilterDeleted, []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := Filter(changes, "", tt.filter)
			assert.Equal(t, tt.want, ids(got))
			for i := range got {
				assert.True(t, MatchesType(&got[i], tt.filter))
			}
		})
	}
}

func TestFilter_ModifiedOnly(t *testing.T) {
	changes := []types.Change{
		change("a", types.ChangeTypeAdded, "x", ""),
		change("m", types.ChangeTypeModified, "y", ""),
		change("d", types.ChangeTypeDeleted, "z", ""),
	}

	got := Filter(changes, "", FilterModified)
	require.Len(t, got, 1)
	assert.Equal(t, "m", got[0].ID)
}

func TestFilter_BySearch(t *testing.T) {
	changes := sampleChanges()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "empty matches all", search: "", want: []string{"1", "2", "3", "4", "5"}},
		{name: "blank is a literal term", search: "   ", want: []string{}},
		{name: "padding is kept", search: "  users", want: []string{}},
		{name: "human path", search: "users", want: []string{"1", "2", "5"}},
		{name: "case insensitive", search: "USERS", want: []string{"1", "2", "5"}},
		{name: "endpoint name", search: "get order", want: []string{"3"}},
		{name: "raw path", search: "item.4", want: []string{"4"}},
		{name: "no match", search: "payments", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(changes, tt.search, FilterAll)))
		})
	}
}

func TestFilter_SearchAndType(t *testing.T) {
	got := Filter(sampleChanges(), "users", FilterAdded)
	assert.Equal(t, []string{"1", "5"}, ids(got))
}

func TestGroupChanges_Endpoint(t *testing.T) {
	changes := sampleChanges()

	groups := GroupChanges(changes, GroupEndpoint)
	require.Len(t, groups, 4)

	labels := make([]string, 0, len(groups))
	seen := make(map[string]int)
	for _, g := range groups {
		labels = append(labels, g.Label)
		for _, c := range g.Changes {
			seen[c.ID]++
		}
	}
	assert.Equal(t, []string{"List users", "Create user", "Get order", FallbackGroup}, labels)

	// every change lands in exactly one bucket
	assert.Len(t, seen, len(changes))
	for id, n := range seen {
		assert.Equal(t, 1, n, "change %s", id)
	}

	assert.Equal(t, []string{"1", "5"}, ids(groups[0].Changes))
}

func TestGroupChanges_Type(t *testing.T) {
	groups := GroupChanges(sampleChanges(), GroupType)
	require.Len(t, groups, 3)
	assert.Equal(t, "Added", groups[0].Label)
	assert.Equal(t, "Modified", groups[1].Label)
	assert.Equal(t, "Deleted", groups[2].Label)
}

func TestGroupChanges_None(t *testing.T) {
	groups := GroupChanges(sampleChanges(), GroupNone)
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Label)
	assert.Len(t, groups[0].Changes, 5)

	assert.Nil(t, GroupChanges(nil, GroupEndpoint))
}

func TestOrder_FollowsGroups(t *testing.T) {
	changes := sampleChanges()

	assert.Equal(t, ids(changes), ids(Order(changes, GroupNone)))
	assert.Equal(t, []string{"1", "5", "2", "3", "4"}, ids(Order(changes, GroupEndpoint)))
	assert.Equal(t, []string{"1", "5", "2", "4", "3"}, ids(Order(changes, GroupType)))
}

func TestPaginate(t *testing.T) {
	var changes []types.Change
	for i := 0; i < 45; i++ {
		changes = append(changes, change(fmt.Sprint(i), types.ChangeTypeAdded, "", ""))
	}

	assert.Equal(t, 3, PageCount(len(changes), 20))
	assert.Equal(t, 0, PageCount(0, 20))
	assert.Equal(t, 0, PageCount(5, 0))

	assert.Len(t, Paginate(changes, 1, 20), 20)
	assert.Len(t, Paginate(changes, 3, 20), 5)
	assert.Equal(t, "40", Paginate(changes, 3, 20)[0].ID)
	assert.Nil(t, Paginate(changes, 4, 20))
	assert.Nil(t, Paginate(changes, 0, 20))
}
