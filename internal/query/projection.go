package query

import "github.com/samber/lo"

// Projection selects the fields returned for each record. It is either an
// include list or an exclude list, never both. The zero value returns all
// fields.
type Projection struct {
	fields  []string
	exclude bool
}

// BuildProjection builds a projection from raw include/exclude lists.
// When both are given the include list wins and exclude is ignored.
func BuildProjection(include, exclude string) Projection {
	if fields := SplitFields(include); len(fields) > 0 {
		return Projection{fields: fields}
	}
	if fields := SplitFields(exclude); len(fields) > 0 {
		return Projection{fields: fields, exclude: true}
	}
	return Projection{}
}

func (p Projection) IsEmpty() bool { return len(p.fields) == 0 }

func (p Projection) IsExclude() bool { return p.exclude && !p.IsEmpty() }

// Fields returns a copy of the listed field names.
func (p Projection) Fields() []string {
	return append([]string(nil), p.fields...)
}

// Flags renders the projection as field -> 1 (include) or field -> 0 (exclude).
func (p Projection) Flags() map[string]int {
	flag := 1
	if p.exclude {
		flag = 0
	}
	out := make(map[string]int, len(p.fields))
	for _, f := range p.fields {
		out[f] = flag
	}
	return out
}

// Lists reports whether field is named explicitly by the projection.
func (p Projection) Lists(field string) bool {
	return lo.Contains(p.fields, field)
}

// Wants reports whether field survives the projection.
func (p Projection) Wants(field string) bool {
	switch {
	case p.IsEmpty():
		return true
	case p.exclude:
		return !p.Lists(field)
	default:
		return field == IDField || p.Lists(field)
	}
}

// WantsAny reports whether at least one of fields survives the projection.
func (p Projection) WantsAny(fields ...string) bool {
	return lo.SomeBy(fields, p.Wants)
}

// Shape returns a copy of doc holding only the fields the projection wants.
func (p Projection) Shape(doc map[string]any) map[string]any {
	if p.IsEmpty() {
		return doc
	}
	return lo.PickBy(doc, func(k string, _ any) bool { return p.Wants(k) })
}
