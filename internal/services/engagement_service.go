package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"madchef/internal/cache"
	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/repositories"
	"madchef/internal/utils"
)

// EngagementService keeps a student's bookmarks and likes.
type EngagementService struct {
	DB           *bun.DB
	RecipeRepo   *repositories.RecipeRepository
	BookmarkRepo *repositories.BookmarkRepository
	LikeRepo     *repositories.LikeRepository
	Cache        cache.Cache
}

// pair validates the student path id against the caller and the recipe id.
func pair(rc domain.RequestContext, rawStudent, rawRecipe string) (uuid.UUID, uuid.UUID, error) {
	if err := requireSelf(rc, rawStudent); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	recipeID, err := domain.ParseID("recipeId", rawRecipe)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return rc.UserID(), recipeID, nil
}

func (s *EngagementService) Bookmarks(ctx context.Context, rc domain.RequestContext, rawStudent string) ([]models.Bookmark, error) {
	if err := requireSelf(rc, rawStudent); err != nil {
		return nil, err
	}
	out, err := s.BookmarkRepo.ListByStudent(ctx, rc.UserID())
	if err != nil {
		return nil, db.Classify("bookmark", err)
	}
	return out, nil
}

// Bookmark returns the caller's bookmark of a recipe, nil when there is none.
func (s *EngagementService) Bookmark(ctx context.Context, rc domain.RequestContext, rawStudent, rawRecipe string) (*models.Bookmark, error) {
	studentID, recipeID, err := pair(rc, rawStudent, rawRecipe)
	if err != nil {
		return nil, err
	}
	m, err := s.BookmarkRepo.Find(ctx, studentID, recipeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Classify("bookmark", err)
	}
	return m, nil
}

func (s *EngagementService) AddBookmark(ctx context.Context, rc domain.RequestContext, rawStudent, rawRecipe string) (*models.Bookmark, error) {
	studentID, recipeID, err := pair(rc, rawStudent, rawRecipe)
	if err != nil {
		return nil, err
	}
	if _, err := s.RecipeRepo.Get(ctx, recipeID); err != nil {
		return nil, db.Classify("recipe", err)
	}
	m, err := s.BookmarkRepo.Create(ctx, studentID, recipeID)
	if db.IsDuplicate(err) {
		return nil, domain.ConflictError{Msg: "you already bookmarked it", Err: err}
	}
	if err != nil {
		return nil, db.Classify("bookmark", err)
	}
	return m, nil
}

func (s *EngagementService) RemoveBookmark(ctx context.Context, rc domain.RequestContext, rawStudent, rawRecipe string) error {
	studentID, recipeID, err := pair(rc, rawStudent, rawRecipe)
	if err != nil {
		return err
	}
	return db.Classify("bookmark", s.BookmarkRepo.Remove(ctx, studentID, recipeID))
}

func (s *EngagementService) Likes(ctx context.Context, rc domain.RequestContext, rawStudent string) ([]models.Like, error) {
	if err := requireSelf(rc, rawStudent); err != nil {
		return nil, err
	}
	out, err := s.LikeRepo.ListByStudent(ctx, rc.UserID())
	if err != nil {
		return nil, db.Classify("like", err)
	}
	return out, nil
}

// Like returns the caller's like of a recipe, nil when there is none.
func (s *EngagementService) Like(ctx context.Context, rc domain.RequestContext, rawStudent, rawRecipe string) (*models.Like, error) {
	studentID, recipeID, err := pair(rc, rawStudent, rawRecipe)
	if err != nil {
		return nil, err
	}
	m, err := s.LikeRepo.Find(ctx, studentID, recipeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Classify("like", err)
	}
	return m, nil
}

// AddLike stores the like and bumps the recipe counter in one transaction.
func (s *EngagementService) AddLike(ctx context.Context, rc domain.RequestContext, rawStudent, rawRecipe string) (*models.Like, error) {
	studentID, recipeID, err := pair(rc, rawStudent, rawRecipe)
	if err != nil {
		return nil, err
	}
	var like *models.Like
	err = db.RunInTx(ctx, s.DB, func(ctx context.Context, tx bun.Tx) error {
		recipes := s.RecipeRepo.WithTx(tx)
		if _, err := recipes.Get(ctx, recipeID); err != nil {
			return db.Classify("recipe", err)
		}
		m, err := s.LikeRepo.WithTx(tx).Create(ctx, studentID, recipeID)
		if db.IsDuplicate(err) {
			return domain.ConflictError{Msg: "like already exists", Err: err}
		}
		if err != nil {
			return err
		}
		like = m
		return recipes.AdjustLikes(ctx, recipeID, 1)
	})
	if err != nil {
		return nil, db.Classify("like", err)
	}
	s.forget(ctx, recipeID)
	utils.LogEvent(ctx, "like", "add", "recipe liked", zap.String("recipe_id", recipeID.String()))
	return like, nil
}

// RemoveLike deletes the like and lowers the recipe counter in one
// transaction.
func (s *EngagementService) RemoveLike(ctx context.Context, rc domain.RequestContext, rawStudent, rawRecipe string) error {
	studentID, recipeID, err := pair(rc, rawStudent, rawRecipe)
	if err != nil {
		return err
	}
	err = db.RunInTx(ctx, s.DB, func(ctx context.Context, tx bun.Tx) error {
		if err := s.LikeRepo.WithTx(tx).Remove(ctx, studentID, recipeID); err != nil {
			return db.Classify("like", err)
		}
		return s.RecipeRepo.WithTx(tx).AdjustLikes(ctx, recipeID, -1)
	})
	if err != nil {
		return db.Classify("like", err)
	}
	s.forget(ctx, recipeID)
	return nil
}

func (s *EngagementService) forget(ctx context.Context, recipeID uuid.UUID) {
	if err := s.Cache.Delete(ctx, recipeKey(recipeID)); err != nil {
		utils.LogFailure(ctx, "like", "cache_delete", err)
	}
}
