package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSort(t *testing.T) {
	tests := []struct {
		name       string
		keys       string
		order      string
		defaultKey string
		want       []SortKey
	}{
		{
			name:  "shared descending direction",
			keys:  "rating,name",
			order: "desc",
			want:  []SortKey{{"rating", Descending}, {"name", Descending}},
		},
		{
			name:       "default key",
			keys:       "",
			order:      "asc",
			defaultKey: "updatedAt",
			want:       []SortKey{{"updatedAt", Ascending}},
		},
		{
			name:  "order is case sensitive",
			keys:  "name",
			order: "DESC",
			want:  []SortKey{{"name", Ascending}},
		},
		{
			name:  "missing order is ascending",
			keys:  "name,,title",
			order: "",
			want:  []SortKey{{"name", Ascending}, {"title", Ascending}},
		},
		{
			name: "nothing at all",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSort(tt.keys, tt.order, tt.defaultKey).Keys())
		})
	}
}

func TestSortPairsAndHas(t *testing.T) {
	s := BuildSort("rating,name", "desc", "updatedAt")
	assert.Equal(t, [][2]any{{"rating", -1}, {"name", -1}}, s.Pairs())
	assert.True(t, s.Has("rating"))
	assert.False(t, s.Has("updatedAt"))
	assert.True(t, s.HasAny("x", "name"))
	assert.Equal(t, "DESC", Descending.String())
	assert.Equal(t, "ASC", Ascending.String())
}
