package services

import (
	"errors"
	"maps"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"madchef/internal/domain"
	"madchef/internal/query"
)

// ListParams are the raw list parameters sent by a caller.
type ListParams struct {
	Page    string
	Limit   string
	Sort    string
	Order   string
	Include string
	Exclude string
}

// ListResult is one page of a list read plus what the handler needs to
// render it.
type ListResult[T any] struct {
	Items      []T
	Page       *string
	TotalCount int64
	Projection query.Projection
}

type listDefaults struct {
	Page  query.PageConfig
	Sort  string
	Order string
}

func (p ListParams) plan(d listDefaults, filters []query.Filter, computed *query.ComputedField) (query.Plan, query.PageRequest) {
	order := p.Order
	if order == "" {
		order = d.Order
	}
	page := query.NormalizePage(p.Page, p.Limit, d.Page)
	plan := query.BuildPlan(
		filters,
		computed,
		query.BuildSort(p.Sort, order, d.Sort),
		page,
		query.BuildProjection(p.Include, p.Exclude),
	)
	return plan, page
}

func listResult[T any](items []T, total int64, page query.PageRequest, plan query.Plan) *ListResult[T] {
	return &ListResult[T]{
		Items:      items,
		Page:       query.RenderPageDescriptor(page, total),
		TotalCount: total,
		Projection: plan.Projection(),
	}
}

// invalid turns ozzo validation errors into a ValidationError; other errors
// pass through.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for _, field := range slices.Sorted(maps.Keys(verrs)) {
			return domain.ValidationError{Field: field, Msg: verrs[field].Error(), Err: err}
		}
	}
	var ierr validation.InternalError
	if errors.As(err, &ierr) {
		return domain.InternalError{Msg: "validation failed", Err: err}
	}
	return domain.ValidationError{Msg: err.Error(), Err: err}
}

func requireRole(rc domain.RequestContext, roles ...domain.Role) error {
	if rc.Claims == nil {
		return domain.UnauthorizedError{}
	}
	for _, r := range roles {
		if rc.Role() == r {
			return nil
		}
	}
	return domain.ForbiddenError{Msg: "not allowed for role " + string(rc.Role())}
}

// requireSelf allows the caller to act only on their own student id.
func requireSelf(rc domain.RequestContext, id string) error {
	if rc.Claims == nil {
		return domain.UnauthorizedError{}
	}
	if rc.UserID().String() != id {
		return domain.ForbiddenError{Msg: "unauthorized access"}
	}
	return nil
}

// requireSelfOrAdmin lets admins read any student's records.
func requireSelfOrAdmin(rc domain.RequestContext, id string) error {
	if rc.Role() == domain.RoleAdmin {
		return nil
	}
	return requireSelf(rc, id)
}
