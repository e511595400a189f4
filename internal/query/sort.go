package query

import "github.com/samber/lo"

// Direction orders a sort key; the values mirror the 1/-1 convention of
// document stores.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// DescendingToken is the only order value that selects descending order.
const DescendingToken = "desc"

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

type SortKey struct {
	Field     string
	Direction Direction
}

// Sort is an ordered list of keys. Earlier keys take precedence.
type Sort struct {
	keys []SortKey
}

// BuildSort pairs every key in the comma separated list with one shared
// direction. order is compared case-sensitively against DescendingToken.
// defaultKey is used when the list is empty; it should be a stable,
// indexed field so that pages stay deterministic.
func BuildSort(keys, order, defaultKey string) Sort {
	dir := Ascending
	if order == DescendingToken {
		dir = Descending
	}
	fields := SplitFields(keys)
	if len(fields) == 0 && defaultKey != "" {
		fields = []string{defaultKey}
	}
	return Sort{keys: lo.Map(fields, func(f string, _ int) SortKey {
		return SortKey{Field: f, Direction: dir}
	})}
}

// Keys returns a copy of the ordered keys.
func (s Sort) Keys() []SortKey {
	return append([]SortKey(nil), s.keys...)
}

func (s Sort) IsEmpty() bool { return len(s.keys) == 0 }

// Has reports whether field is one of the sort keys.
func (s Sort) Has(field string) bool {
	return lo.ContainsBy(s.keys, func(k SortKey) bool { return k.Field == field })
}

// HasAny reports whether any of fields is a sort key.
func (s Sort) HasAny(fields ...string) bool {
	return lo.SomeBy(fields, s.Has)
}

// Pairs renders the sort as (field, 1|-1) pairs in key order.
func (s Sort) Pairs() [][2]any {
	return lo.Map(s.keys, func(k SortKey, _ int) [2]any {
		return [2]any{k.Field, int(k.Direction)}
	})
}
