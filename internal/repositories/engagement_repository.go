package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/domain/models"
)

// BookmarkRepository stores one bookmark per student and recipe.
type BookmarkRepository struct {
	DB bun.IDB
}

func NewBookmarkRepository(idb bun.IDB) *BookmarkRepository {
	return &BookmarkRepository{DB: idb}
}

func (r *BookmarkRepository) Find(ctx context.Context, studentID, recipeID uuid.UUID) (*models.Bookmark, error) {
	m := new(models.Bookmark)
	err := r.DB.NewSelect().Model(m).
		Where("bookmark.student_id = ?", studentID).
		Where("bookmark.recipe_id = ?", recipeID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *BookmarkRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Bookmark, error) {
	out := []models.Bookmark{}
	err := r.DB.NewSelect().Model(&out).
		Where("bookmark.student_id = ?", studentID).
		Order("bookmark.updated_at DESC", "bookmark.id ASC").
		Scan(ctx)
	return out, err
}

func (r *BookmarkRepository) Create(ctx context.Context, studentID, recipeID uuid.UUID) (*models.Bookmark, error) {
	now := time.Now().UTC()
	m := &models.Bookmark{ID: uuid.New(), StudentID: studentID, RecipeID: recipeID, CreatedAt: now, UpdatedAt: now}
	if err := insert(ctx, r.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Remove deletes the bookmark and reports sql.ErrNoRows when there was none.
func (r *BookmarkRepository) Remove(ctx context.Context, studentID, recipeID uuid.UUID) error {
	res, err := r.DB.NewDelete().Model((*models.Bookmark)(nil)).
		Where("student_id = ?", studentID).
		Where("recipe_id = ?", recipeID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// LikeRepository stores one like per student and recipe; the recipe's
// counter is kept by RecipeRepository.AdjustLikes in the same transaction.
type LikeRepository struct {
	DB bun.IDB
}

func NewLikeRepository(idb bun.IDB) *LikeRepository {
	return &LikeRepository{DB: idb}
}

func (r *LikeRepository) WithTx(tx bun.IDB) *LikeRepository {
	return &LikeRepository{DB: tx}
}

func (r *LikeRepository) Find(ctx context.Context, studentID, recipeID uuid.UUID) (*models.Like, error) {
	m := new(models.Like)
	err := r.DB.NewSelect().Model(m).
		Where("lk.student_id = ?", studentID).
		Where("lk.recipe_id = ?", recipeID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *LikeRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Like, error) {
	out := []models.Like{}
	err := r.DB.NewSelect().Model(&out).
		Where("lk.student_id = ?", studentID).
		Order("lk.updated_at DESC", "lk.id ASC").
		Scan(ctx)
	return out, err
}

func (r *LikeRepository) Create(ctx context.Context, studentID, recipeID uuid.UUID) (*models.Like, error) {
	now := time.Now().UTC()
	m := &models.Like{ID: uuid.New(), StudentID: studentID, RecipeID: recipeID, CreatedAt: now, UpdatedAt: now}
	if err := insert(ctx, r.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *LikeRepository) Remove(ctx context.Context, studentID, recipeID uuid.UUID) error {
	res, err := r.DB.NewDelete().Model((*models.Like)(nil)).
		Where("student_id = ?", studentID).
		Where("recipe_id = ?", recipeID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
