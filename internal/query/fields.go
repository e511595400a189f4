// Package query turns list request parameters (projection, sort, page) and
// caller-supplied filters into an ordered, store-agnostic execution plan.
package query

import (
	"strings"

	"github.com/samber/lo"
)

// IDField is kept by include projections unless explicitly excluded.
const IDField = "id"

// SplitFields splits a comma separated list, trimming entries and dropping
// empties and repeats. Order of first occurrence is preserved.
func SplitFields(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(parts))
}
