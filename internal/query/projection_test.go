package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildProjection(t *testing.T) {
	tests := []struct {
		name    string
		include string
		exclude string
		want    map[string]int
	}{
		{"include list", "name,email", "", map[string]int{"name": 1, "email": 1}},
		{"exclude list", "", "password", map[string]int{"password": 0}},
		{"include wins", "name", "password", map[string]int{"name": 1}},
		{"empty", "", "", map[string]int{}},
		{"blank entries dropped", " name, ,,email ", "", map[string]int{"name": 1, "email": 1}},
		{"blank include falls back to exclude", " , ", "img", map[string]int{"img": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildProjection(tt.include, tt.exclude).Flags())
		})
	}
}

func TestProjectionWants(t *testing.T) {
	inc := BuildProjection("title,rating", "")
	assert.True(t, inc.Wants("title"))
	assert.True(t, inc.Wants(IDField))
	assert.False(t, inc.Wants("method"))

	exc := BuildProjection("", "method,id")
	assert.True(t, exc.IsExclude())
	assert.False(t, exc.Wants("method"))
	assert.False(t, exc.Wants(IDField))
	assert.True(t, exc.Wants("title"))

	assert.True(t, Projection{}.Wants("anything"))
}

func TestProjectionShape(t *testing.T) {
	doc := map[string]any{"id": "a", "title": "Soup", "method": "boil", "rating": nil}

	assert.Equal(t, map[string]any{"id": "a", "title": "Soup"},
		BuildProjection("title", "").Shape(doc))
	assert.Equal(t, map[string]any{"id": "a", "title": "Soup", "rating": nil},
		BuildProjection("", "method").Shape(doc))
	assert.Equal(t, doc, Projection{}.Shape(doc))
}

func TestBuildProjectionIsIdempotent(t *testing.T) {
	a := BuildProjection("name,email", "")
	b := BuildProjection("name,email", "")
	assert.Equal(t, a, b)

	fields := a.Fields()
	fields[0] = "mutated"
	assert.Equal(t, []string{"name", "email"}, a.Fields())
}
