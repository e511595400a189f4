package query

import "github.com/samber/lo"

// Filter is one predicate applied before sorting. Expr uses ? placeholders
// bound to Args; Joins lists the relations the predicate needs.
type Filter struct {
	Name  string
	Expr  string
	Args  []any
	Joins []string
}

// Reduction is how related rows collapse into computed values.
type Reduction int

const (
	// Average averages Output.Field over the related rows, rounded to
	// Precision. No related rows yields null.
	Average Reduction = iota
	// First copies Output.Field of the first related row.
	First
)

// Output is one value produced by a computed field. Name is the API field,
// Column the result column, Field the column read from the related table.
type Output struct {
	Name   string
	Column string
	Field  string
}

// ComputedField joins a related table on ForeignKey = LocalKey and reduces
// the matching rows into Outputs.
type ComputedField struct {
	From       string
	LocalKey   string
	ForeignKey string
	Reduction  Reduction
	Outputs    []Output
	Precision  int
	// CountAs, when named, also reports the number of related rows.
	CountAs *Output
}

// Names lists every API field the computed field produces.
func (c ComputedField) Names() []string {
	names := lo.Map(c.Outputs, func(o Output, _ int) string { return o.Name })
	if c.CountAs != nil {
		names = append(names, c.CountAs.Name)
	}
	return names
}

// Only returns a copy limited to the outputs keep accepts. The second
// result is false when nothing is left.
func (c ComputedField) Only(keep func(name string) bool) (ComputedField, bool) {
	out := c
	out.Outputs = lo.Filter(c.Outputs, func(o Output, _ int) bool { return keep(o.Name) })
	if c.CountAs != nil && !keep(c.CountAs.Name) {
		out.CountAs = nil
	}
	return out, len(out.Outputs) > 0 || out.CountAs != nil
}

type StageKind int

const (
	StageMatch StageKind = iota
	StageCompute
	StageSort
	StageSkip
	StageLimit
	StageProject
)

func (k StageKind) String() string {
	switch k {
	case StageMatch:
		return "match"
	case StageCompute:
		return "compute"
	case StageSort:
		return "sort"
	case StageSkip:
		return "skip"
	case StageLimit:
		return "limit"
	case StageProject:
		return "project"
	default:
		return "unknown"
	}
}

// Stage is one step of a plan; only the field matching Kind is set.
type Stage struct {
	Kind       StageKind
	Filter     Filter
	Computed   ComputedField
	Sort       Sort
	Count      int
	Projection Projection
}

// Plan is an ordered, immutable list of stages.
type Plan struct {
	stages []Stage
}

// BuildPlan assembles filters, an optional computed field, sort, paging and
// projection into one ordered plan:
//
//	match* -> [compute] -> sort -> skip -> limit -> [compute] -> [project]
//
// The computed field runs before sort only when one of its outputs is a sort
// key; otherwise it runs on the current page only. It is left out when the
// projection drops all of its outputs.
func BuildPlan(filters []Filter, computed *ComputedField, sort Sort, page PageRequest, projection Projection) Plan {
	stages := make([]Stage, 0, len(filters)+6)
	for _, f := range filters {
		stages = append(stages, Stage{Kind: StageMatch, Filter: f})
	}

	var compute *Stage
	early := false
	if computed != nil {
		early = sort.HasAny(computed.Names()...)
		keep := func(name string) bool { return sort.Has(name) || projection.Wants(name) }
		if cf, ok := computed.Only(keep); ok {
			compute = &Stage{Kind: StageCompute, Computed: cf}
		}
	}

	if compute != nil && early {
		stages = append(stages, *compute)
	}
	stages = append(stages,
		Stage{Kind: StageSort, Sort: sort},
		Stage{Kind: StageSkip, Count: page.Skip()},
		Stage{Kind: StageLimit, Count: page.Limit()},
	)
	if compute != nil && !early {
		stages = append(stages, *compute)
	}
	if !projection.IsEmpty() {
		stages = append(stages, Stage{Kind: StageProject, Projection: projection})
	}
	return Plan{stages: stages}
}

// Stages returns a copy of the ordered stages.
func (p Plan) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Kinds lists the stage kinds in order.
func (p Plan) Kinds() []StageKind {
	return lo.Map(p.stages, func(s Stage, _ int) StageKind { return s.Kind })
}

// Filters returns the match stages' filters, which is all a count needs.
func (p Plan) Filters() []Filter {
	return lo.FilterMap(p.stages, func(s Stage, _ int) (Filter, bool) {
		return s.Filter, s.Kind == StageMatch
	})
}

// Computed returns the computed field and whether it runs before the sort.
func (p Plan) Computed() (cf ComputedField, beforeSort bool, ok bool) {
	sortSeen := false
	for _, s := range p.stages {
		switch s.Kind {
		case StageSort:
			sortSeen = true
		case StageCompute:
			return s.Computed, !sortSeen, true
		}
	}
	return ComputedField{}, false, false
}

func (p Plan) Sort() Sort {
	return p.find(StageSort).Sort
}

func (p Plan) Skip() int {
	return p.find(StageSkip).Count
}

func (p Plan) Limit() int {
	return p.find(StageLimit).Count
}

func (p Plan) Projection() Projection {
	return p.find(StageProject).Projection
}

func (p Plan) find(kind StageKind) Stage {
	s, _ := lo.Find(p.stages, func(s Stage) bool { return s.Kind == kind })
	return s
}
