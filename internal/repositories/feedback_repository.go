package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/db"
	"madchef/internal/domain/models"
	"madchef/internal/query"
)

func RatingByRecipe(id uuid.UUID) query.Filter {
	return query.Filter{Name: "recipeId", Expr: "rating.recipe_id = ?", Args: []any{id}}
}

func RatingByStudent(id uuid.UUID) query.Filter {
	return query.Filter{Name: "studentId", Expr: "rating.student_id = ?", Args: []any{id}}
}

func ReviewByChef(id uuid.UUID) query.Filter {
	return query.Filter{Name: "chefId", Expr: "review.chef_id = ?", Args: []any{id}}
}

func ReviewByStudent(id uuid.UUID) query.Filter {
	return query.Filter{Name: "studentId", Expr: "review.student_id = ?", Args: []any{id}}
}

// RatingRepository stores recipe ratings.
type RatingRepository struct {
	DB bun.IDB
}

func NewRatingRepository(idb bun.IDB) *RatingRepository {
	return &RatingRepository{DB: idb}
}

func (r *RatingRepository) List(ctx context.Context, plan query.Plan) ([]models.Rating, int64, error) {
	return db.RunList[models.Rating](ctx, r.DB, RatingSource, plan)
}

func (r *RatingRepository) Get(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	m := &models.Rating{ID: id}
	if err := getByPK(ctx, r.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *RatingRepository) Create(ctx context.Context, m *models.Rating) error {
	now := time.Now().UTC()
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = now, now
	return insert(ctx, r.DB, m)
}

func (r *RatingRepository) Update(ctx context.Context, m *models.Rating, columns ...string) error {
	m.UpdatedAt = time.Now().UTC()
	_, err := r.DB.NewUpdate().Model(m).Column(append(columns, "updated_at")...).WherePK().Exec(ctx)
	return err
}

func (r *RatingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByPK(ctx, r.DB, &models.Rating{ID: id})
}

// ChefReviewRepository stores students' reviews of chefs.
type ChefReviewRepository struct {
	DB bun.IDB
}

func NewChefReviewRepository(idb bun.IDB) *ChefReviewRepository {
	return &ChefReviewRepository{DB: idb}
}

func (r *ChefReviewRepository) List(ctx context.Context, plan query.Plan) ([]models.ChefReview, int64, error) {
	return db.RunList[models.ChefReview](ctx, r.DB, ChefReviewSource, plan)
}

func (r *ChefReviewRepository) Get(ctx context.Context, id uuid.UUID) (*models.ChefReview, error) {
	m := &models.ChefReview{ID: id}
	if err := getByPK(ctx, r.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *ChefReviewRepository) Create(ctx context.Context, m *models.ChefReview) error {
	now := time.Now().UTC()
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = now, now
	return insert(ctx, r.DB, m)
}

func (r *ChefReviewRepository) Update(ctx context.Context, m *models.ChefReview, columns ...string) error {
	m.UpdatedAt = time.Now().UTC()
	_, err := r.DB.NewUpdate().Model(m).Column(append(columns, "updated_at")...).WherePK().Exec(ctx)
	return err
}

func (r *ChefReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByPK(ctx, r.DB, &models.ChefReview{ID: id})
}
