package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/query"
	"madchef/internal/utils"
)

const authorJoin = "LEFT JOIN chefs AS author ON author.id = recipe.author_id"

// RecipeRepository wraps access to recipes and their like counter.
type RecipeRepository struct {
	DB bun.IDB
}

func NewRecipeRepository(idb bun.IDB) *RecipeRepository {
	return &RecipeRepository{DB: idb}
}

// WithTx binds the repository to a transaction.
func (r *RecipeRepository) WithTx(tx bun.IDB) *RecipeRepository {
	return &RecipeRepository{DB: tx}
}

// RecipeVisibility restricts what a caller may list. Admins see everything,
// chefs see published recipes plus their own, everyone else sees published.
func RecipeVisibility(role domain.Role, userID uuid.UUID) (query.Filter, bool) {
	switch {
	case role.SeesAllRecipes():
		return query.Filter{}, false
	case role == domain.RoleChef && userID != uuid.Nil:
		return query.Filter{
			Name: "visibility",
			Expr: "recipe.status = ? OR recipe.author_id = ?",
			Args: []any{domain.RecipePublished, userID},
		}, true
	default:
		return query.Filter{Name: "visibility", Expr: "recipe.status = ?", Args: []any{domain.RecipePublished}}, true
	}
}

// RecipeTextSearch matches the title or the author's name, case-insensitively.
func RecipeTextSearch(text string) query.Filter {
	pattern := utils.ContainsPattern(text)
	return query.Filter{
		Name:  "search",
		Expr:  "LOWER(recipe.title) LIKE LOWER(?) OR LOWER(author.name) LIKE LOWER(?)",
		Args:  []any{pattern, pattern},
		Joins: []string{authorJoin},
	}
}

func RecipeByAuthor(chefID uuid.UUID) query.Filter {
	return query.Filter{Name: "author", Expr: "recipe.author_id = ?", Args: []any{chefID}}
}

func RecipeByRegion(region string) query.Filter {
	return query.Filter{Name: "region", Expr: "recipe.region = ?", Args: []any{region}}
}

func RecipeCreatedSince(t time.Time) query.Filter {
	return query.Filter{Name: "uploadDate", Expr: "recipe.created_at >= ?", Args: []any{t}}
}

func (r *RecipeRepository) List(ctx context.Context, plan query.Plan) ([]models.Recipe, int64, error) {
	return db.RunList[models.Recipe](ctx, r.DB, RecipeSource, plan)
}

// Detail loads one recipe with its rating and rating count when the
// projection wants them. Extra filters (visibility) narrow the match.
func (r *RecipeRepository) Detail(ctx context.Context, id uuid.UUID, projection query.Projection, filters ...query.Filter) (*models.Recipe, error) {
	cf := RecipeRatingWithCount()
	plan := query.BuildPlan(
		append([]query.Filter{byID(RecipeSource, id)}, filters...),
		&cf,
		query.Sort{},
		query.PageRequest{Number: 1, Size: 1},
		projection,
	)
	return first[models.Recipe](ctx, r.DB, RecipeSource, plan)
}

func (r *RecipeRepository) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	rec := &models.Recipe{ID: id}
	if err := getByPK(ctx, r.DB, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecipeRepository) Create(ctx context.Context, rec *models.Recipe) error {
	now := time.Now().UTC()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = domain.RecipePending
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	return insert(ctx, r.DB, rec)
}

// Update writes the given columns of rec; updated_at is always written.
func (r *RecipeRepository) Update(ctx context.Context, rec *models.Recipe, columns ...string) error {
	rec.UpdatedAt = time.Now().UTC()
	_, err := r.DB.NewUpdate().Model(rec).Column(append(columns, "updated_at")...).WherePK().Exec(ctx)
	return err
}

func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByPK(ctx, r.DB, &models.Recipe{ID: id})
}

// AdjustLikes moves the like counter by delta, never below zero. MySQL
// reports unchanged rows as unaffected, so existence is the caller's check.
func (r *RecipeRepository) AdjustLikes(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.DB.NewUpdate().
		Table("recipes").
		Set("likes = GREATEST(likes + ?, 0)", delta).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
