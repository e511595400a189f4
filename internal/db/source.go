package db

import (
	"context"
	"slices"

	"github.com/samber/lo"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"madchef/internal/query"
)

const (
	pageAlias    = "page"
	relatedAlias = "rel"
)

// Source describes a listable table. Fields maps API field names to columns;
// sort keys and projected fields outside it are dropped.
type Source struct {
	Table  string
	Alias  string
	Key    string
	Fields map[string]string
}

func ident(alias, column string) bun.Ident {
	return bun.Ident(alias + "." + column)
}

// SelectQuery renders a plan as one SELECT. When the computed field is not a
// sort key the page is selected first and the computed columns are added
// over the paged rows only.
func SelectQuery(idb bun.IDB, src Source, plan query.Plan) *bun.SelectQuery {
	cf, beforeSort, hasComputed := plan.Computed()

	q := filtered(idb, src, plan.Filters())
	if !hasComputed || beforeSort {
		q = selectColumns(q, src, plan)
		computed := map[string]string{}
		if hasComputed {
			q = addComputed(idb, q, src.Alias, cf)
			computed = computedColumns(cf)
		}
		q = orderBy(q, src, src.Alias, plan.Sort(), computed)
		return paged(q, plan)
	}

	inner := selectColumns(q, src, plan, cf.LocalKey)
	inner = paged(orderBy(inner, src, src.Alias, plan.Sort(), nil), plan)

	outer := idb.NewSelect().
		TableExpr("(?) AS ?", inner, bun.Ident(pageAlias)).
		ColumnExpr("?.*", bun.Ident(pageAlias))
	outer = addComputed(idb, outer, pageAlias, cf)
	return orderBy(outer, src, pageAlias, plan.Sort(), nil)
}

// CountQuery counts the rows matched by the plan's filters.
func CountQuery(idb bun.IDB, src Source, plan query.Plan) *bun.SelectQuery {
	return filtered(idb, src, plan.Filters()).ColumnExpr("COUNT(*)")
}

// RunList executes the page query and the count concurrently.
func RunList[T any](ctx context.Context, idb bun.IDB, src Source, plan query.Plan) ([]T, int64, error) {
	var (
		rows  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return SelectQuery(idb, src, plan).Scan(gctx, &rows)
	})
	g.Go(func() error {
		return CountQuery(idb, src, plan).Scan(gctx, &total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, total, nil
}

func filtered(idb bun.IDB, src Source, filters []query.Filter) *bun.SelectQuery {
	q := idb.NewSelect().TableExpr("? AS ?", bun.Ident(src.Table), bun.Ident(src.Alias))
	joins := lo.Uniq(lo.FlatMap(filters, func(f query.Filter, _ int) []string { return f.Joins }))
	for _, j := range joins {
		q = q.Join(j)
	}
	for _, f := range filters {
		q = q.Where(f.Expr, f.Args...)
	}
	return q
}

// selectColumns lists the projected columns, always keeping the key, the
// sort columns and any extra columns later stages depend on.
func selectColumns(q *bun.SelectQuery, src Source, plan query.Plan, extra ...string) *bun.SelectQuery {
	projection := plan.Projection()
	if projection.IsEmpty() {
		return q.ColumnExpr("?.*", bun.Ident(src.Alias))
	}

	cols := []string{src.Key}
	for field, col := range src.Fields {
		if projection.Wants(field) || plan.Sort().Has(field) {
			cols = append(cols, col)
		}
	}
	cols = append(cols, extra...)
	cols = lo.Uniq(cols)
	slices.Sort(cols)

	for _, col := range cols {
		q = q.ColumnExpr("?", ident(src.Alias, col))
	}
	return q
}

func addComputed(idb bun.IDB, q *bun.SelectQuery, alias string, cf query.ComputedField) *bun.SelectQuery {
	related := func() *bun.SelectQuery {
		return idb.NewSelect().
			TableExpr("? AS ?", bun.Ident(cf.From), bun.Ident(relatedAlias)).
			Where("? = ?", ident(relatedAlias, cf.ForeignKey), ident(alias, cf.LocalKey))
	}

	for _, out := range cf.Outputs {
		sub := related()
		switch cf.Reduction {
		case query.Average:
			sub = sub.ColumnExpr("ROUND(AVG(?), ?)", ident(relatedAlias, out.Field), cf.Precision)
		case query.First:
			sub = sub.ColumnExpr("?", ident(relatedAlias, out.Field)).Limit(1)
		}
		q = q.ColumnExpr("(?) AS ?", sub, bun.Ident(out.Column))
	}
	if cf.CountAs != nil {
		q = q.ColumnExpr("(?) AS ?", related().ColumnExpr("COUNT(*)"), bun.Ident(cf.CountAs.Column))
	}
	return q
}

func computedColumns(cf query.ComputedField) map[string]string {
	out := make(map[string]string, len(cf.Outputs)+1)
	for _, o := range cf.Outputs {
		out[o.Name] = o.Column
	}
	if cf.CountAs != nil {
		out[cf.CountAs.Name] = cf.CountAs.Column
	}
	return out
}

// orderBy applies the sort keys and appends the primary key as a final
// tie-break so that skip/limit partition the ordered rows exactly.
func orderBy(q *bun.SelectQuery, src Source, alias string, sort query.Sort, computed map[string]string) *bun.SelectQuery {
	keyOrdered := false
	for _, k := range sort.Keys() {
		if col, ok := computed[k.Field]; ok {
			q = q.OrderExpr("? "+k.Direction.String(), bun.Ident(col))
			continue
		}
		col, ok := src.Fields[k.Field]
		if !ok {
			continue
		}
		if col == src.Key {
			keyOrdered = true
		}
		q = q.OrderExpr("? "+k.Direction.String(), ident(alias, col))
	}
	if !keyOrdered {
		q = q.OrderExpr("? ASC", ident(alias, src.Key))
	}
	return q
}

func paged(q *bun.SelectQuery, plan query.Plan) *bun.SelectQuery {
	q = q.Limit(plan.Limit())
	if skip := plan.Skip(); skip > 0 {
		q = q.Offset(skip)
	}
	return q
}
