package services

import (
	"context"

	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/query"
	"madchef/internal/repositories"
)

type ChefService struct {
	Chefs      *repositories.ChefRepository
	ReviewRepo *repositories.ChefReviewRepository
	Feedback   *FeedbackService
	Page       query.PageConfig
	ReviewPage query.PageConfig
}

// List pages through chefs with their average review rating, best first
// by default.
func (s *ChefService) List(ctx context.Context, p ListParams) (*ListResult[models.Chef], error) {
	rating := repositories.ChefRating
	plan, page := p.plan(listDefaults{Page: s.Page, Sort: "rating", Order: query.DescendingToken}, nil, &rating)
	items, total, err := s.Chefs.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("chef", err)
	}
	return listResult(items, total, page, plan), nil
}

func (s *ChefService) Get(ctx context.Context, rawID, include, exclude string) (*models.Chef, query.Projection, error) {
	id, err := domain.ParseID("chefId", rawID)
	if err != nil {
		return nil, query.Projection{}, err
	}
	projection := query.BuildProjection(include, exclude)
	c, err := s.Chefs.Detail(ctx, id, projection)
	if err != nil {
		return nil, projection, db.Classify("chef", err)
	}
	return c, projection, nil
}

// Reviews lists a chef's reviews with the reviewer's name and image.
func (s *ChefService) Reviews(ctx context.Context, rawID string, p ListParams) (*ListResult[models.ChefReview], error) {
	id, err := domain.ParseID("chefId", rawID)
	if err != nil {
		return nil, err
	}
	reviewer := repositories.Reviewer
	plan, page := p.plan(listDefaults{Page: s.ReviewPage, Sort: "updatedAt", Order: query.DescendingToken},
		[]query.Filter{repositories.ReviewByChef(id)}, &reviewer)
	items, total, err := s.ReviewRepo.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("review", err)
	}
	return listResult(items, total, page, plan), nil
}

func (s *ChefService) AddReview(ctx context.Context, rc domain.RequestContext, rawID string, in RatingInput) (*models.ChefReview, error) {
	id, err := domain.ParseID("chefId", rawID)
	if err != nil {
		return nil, err
	}
	return s.Feedback.AddReview(ctx, rc, id, in)
}
