package services

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"madchef/internal/cache"
	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/query"
	"madchef/internal/repositories"
	"madchef/internal/utils"
)

// FeedbackService manages the ratings and chef reviews a student wrote.
type FeedbackService struct {
	Recipes    *repositories.RecipeRepository
	Chefs      *repositories.ChefRepository
	Ratings    *repositories.RatingRepository
	Reviews    *repositories.ChefReviewRepository
	Cache      cache.Cache
	RatingPage query.PageConfig
	ReviewPage query.PageConfig
}

// FeedbackPatch changes a rating or review; nil means unchanged.
type FeedbackPatch struct {
	Rating  *int    `json:"rating"`
	Message *string `json:"message"`
}

func (p FeedbackPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Rating, validation.Min(0), validation.Max(5)),
		validation.Field(&p.Message, validation.Length(0, 2000)),
	)
}

func (p FeedbackPatch) columns() []string {
	var cols []string
	if p.Rating != nil {
		cols = append(cols, "rating")
	}
	if p.Message != nil {
		cols = append(cols, "message")
	}
	return cols
}

// StudentRatingInput is a rating posted from the student's side.
type StudentRatingInput struct {
	RecipeID string `json:"recipeId"`
	RatingInput
}

// StudentReviewInput is a chef review posted from the student's side.
type StudentReviewInput struct {
	ChefID string `json:"chefId"`
	RatingInput
}

func (s *FeedbackService) StudentRatings(ctx context.Context, rc domain.RequestContext, rawStudent string, p ListParams) (*ListResult[models.Rating], error) {
	if err := requireSelfOrAdmin(rc, rawStudent); err != nil {
		return nil, err
	}
	id, err := domain.ParseID("id", rawStudent)
	if err != nil {
		return nil, err
	}
	plan, page := p.plan(listDefaults{Page: s.RatingPage, Sort: "updatedAt", Order: query.DescendingToken},
		[]query.Filter{repositories.RatingByStudent(id)}, nil)
	items, total, err := s.Ratings.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("rating", err)
	}
	return listResult(items, total, page, plan), nil
}

func (s *FeedbackService) AddRating(ctx context.Context, rc domain.RequestContext, rawStudent string, in StudentRatingInput) (*models.Rating, error) {
	if err := requireSelf(rc, rawStudent); err != nil {
		return nil, err
	}
	recipeID, err := domain.ParseID("recipeId", in.RecipeID)
	if err != nil {
		return nil, err
	}
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	if _, err := s.Recipes.Get(ctx, recipeID); err != nil {
		return nil, db.Classify("recipe", err)
	}
	m := &models.Rating{RecipeID: recipeID, StudentID: rc.UserID(), Rating: in.Rating, Message: in.Message}
	if err := s.Ratings.Create(ctx, m); err != nil {
		return nil, db.Classify("rating", err)
	}
	s.forget(ctx, recipeID)
	return m, nil
}

// ownRating loads a rating written by the caller.
func (s *FeedbackService) ownRating(ctx context.Context, rc domain.RequestContext, rawStudent, rawDoc string) (*models.Rating, error) {
	if err := requireSelf(rc, rawStudent); err != nil {
		return nil, err
	}
	docID, err := domain.ParseID("docId", rawDoc)
	if err != nil {
		return nil, err
	}
	m, err := s.Ratings.Get(ctx, docID)
	if err != nil {
		return nil, db.Classify("rating", err)
	}
	if m.StudentID != rc.UserID() {
		return nil, domain.ForbiddenError{Msg: "not your rating"}
	}
	return m, nil
}

func (s *FeedbackService) EditRating(ctx context.Context, rc domain.RequestContext, rawStudent, rawDoc string, p FeedbackPatch) (*models.Rating, error) {
	if err := invalid(p.Validate()); err != nil {
		return nil, err
	}
	cols := p.columns()
	if len(cols) == 0 {
		return nil, domain.ValidationError{Msg: "no update data provided"}
	}
	m, err := s.ownRating(ctx, rc, rawStudent, rawDoc)
	if err != nil {
		return nil, err
	}
	if p.Rating != nil {
		m.Rating = *p.Rating
	}
	if p.Message != nil {
		m.Message = *p.Message
	}
	if err := s.Ratings.Update(ctx, m, cols...); err != nil {
		return nil, db.Classify("rating", err)
	}
	s.forget(ctx, m.RecipeID)
	return m, nil
}

func (s *FeedbackService) RemoveRating(ctx context.Context, rc domain.RequestContext, rawStudent, rawDoc string) error {
	m, err := s.ownRating(ctx, rc, rawStudent, rawDoc)
	if err != nil {
		return err
	}
	if err := s.Ratings.Delete(ctx, m.ID); err != nil {
		return db.Classify("rating", err)
	}
	s.forget(ctx, m.RecipeID)
	return nil
}

func (s *FeedbackService) StudentReviews(ctx context.Context, rc domain.RequestContext, rawStudent string, p ListParams) (*ListResult[models.ChefReview], error) {
	if err := requireSelfOrAdmin(rc, rawStudent); err != nil {
		return nil, err
	}
	id, err := domain.ParseID("id", rawStudent)
	if err != nil {
		return nil, err
	}
	plan, page := p.plan(listDefaults{Page: s.ReviewPage, Sort: "updatedAt", Order: query.DescendingToken},
		[]query.Filter{repositories.ReviewByStudent(id)}, nil)
	items, total, err := s.Reviews.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("review", err)
	}
	return listResult(items, total, page, plan), nil
}

// AddReview stores the caller's review of a chef. One review per chef.
func (s *FeedbackService) AddReview(ctx context.Context, rc domain.RequestContext, chefID uuid.UUID, in RatingInput) (*models.ChefReview, error) {
	if err := requireRole(rc, domain.RoleStudent); err != nil {
		return nil, err
	}
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	if _, err := s.Chefs.Get(ctx, chefID); err != nil {
		return nil, db.Classify("chef", err)
	}
	m := &models.ChefReview{ChefID: chefID, StudentID: rc.UserID(), Rating: in.Rating, Message: in.Message}
	if err := s.Reviews.Create(ctx, m); err != nil {
		return nil, db.Classify("review", err)
	}
	return m, nil
}

func (s *FeedbackService) AddStudentReview(ctx context.Context, rc domain.RequestContext, rawStudent string, in StudentReviewInput) (*models.ChefReview, error) {
	if err := requireSelf(rc, rawStudent); err != nil {
		return nil, err
	}
	chefID, err := domain.ParseID("chefId", in.ChefID)
	if err != nil {
		return nil, err
	}
	return s.AddReview(ctx, rc, chefID, in.RatingInput)
}

func (s *FeedbackService) ownReview(ctx context.Context, rc domain.RequestContext, rawStudent, rawDoc string) (*models.ChefReview, error) {
	if err := requireSelf(rc, rawStudent); err != nil {
		return nil, err
	}
	docID, err := domain.ParseID("docId", rawDoc)
	if err != nil {
		return nil, err
	}
	m, err := s.Reviews.Get(ctx, docID)
	if err != nil {
		return nil, db.Classify("review", err)
	}
	if m.StudentID != rc.UserID() {
		return nil, domain.ForbiddenError{Msg: "not your review"}
	}
	return m, nil
}

func (s *FeedbackService) EditReview(ctx context.Context, rc domain.RequestContext, rawStudent, rawDoc string, p FeedbackPatch) (*models.ChefReview, error) {
	if err := invalid(p.Validate()); err != nil {
		return nil, err
	}
	cols := p.columns()
	if len(cols) == 0 {
		return nil, domain.ValidationError{Msg: "no update data provided"}
	}
	m, err := s.ownReview(ctx, rc, rawStudent, rawDoc)
	if err != nil {
		return nil, err
	}
	if p.Rating != nil {
		m.Rating = *p.Rating
	}
	if p.Message != nil {
		m.Message = *p.Message
	}
	if err := s.Reviews.Update(ctx, m, cols...); err != nil {
		return nil, db.Classify("review", err)
	}
	return m, nil
}

func (s *FeedbackService) RemoveReview(ctx context.Context, rc domain.RequestContext, rawStudent, rawDoc string) error {
	m, err := s.ownReview(ctx, rc, rawStudent, rawDoc)
	if err != nil {
		return err
	}
	return db.Classify("review", s.Reviews.Delete(ctx, m.ID))
}

func (s *FeedbackService) forget(ctx context.Context, recipeID uuid.UUID) {
	if err := s.Cache.Delete(ctx, recipeKey(recipeID)); err != nil {
		utils.LogFailure(ctx, "rating", "cache_delete", err)
	}
}
