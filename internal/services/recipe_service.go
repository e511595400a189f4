package services

import (
	"context"
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"madchef/internal/cache"
	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/external"
	"madchef/internal/query"
	"madchef/internal/repositories"
	"madchef/internal/utils"
)

type RecipeService struct {
	DB         *bun.DB
	Recipes    *repositories.RecipeRepository
	Chefs      *repositories.ChefRepository
	RatingRepo *repositories.RatingRepository
	Media      external.MediaStore
	Cache      cache.Cache
	Page       query.PageConfig
	RatingPage query.PageConfig
}

// RecipeFilter is the decoded data_filter of a recipe search.
type RecipeFilter struct {
	SearchQuery string `json:"searchQuery"`
	ChefID      string `json:"chefId"`
	Region      string `json:"region"`
	UploadDate  string `json:"uploadDate"`
}

// ParseRecipeFilter decodes a data_filter value. Empty input is no filter.
func ParseRecipeFilter(raw string) (RecipeFilter, error) {
	var f RecipeFilter
	if strings.TrimSpace(raw) == "" {
		return f, nil
	}
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return f, domain.ValidationError{Field: "data_filter", Msg: "must be a JSON object", Err: err}
	}
	if f.ChefID != "" {
		if _, err := domain.ParseID("chefId", f.ChefID); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (f RecipeFilter) filters() []query.Filter {
	var out []query.Filter
	if q := utils.NormalizeSpace(f.SearchQuery); q != "" {
		out = append(out, repositories.RecipeTextSearch(q))
	}
	if id, err := uuid.Parse(f.ChefID); err == nil {
		out = append(out, repositories.RecipeByAuthor(id))
	}
	if r := strings.TrimSpace(f.Region); r != "" {
		out = append(out, repositories.RecipeByRegion(r))
	}
	// unknown buckets are ignored
	if since, ok := utils.BucketStart(f.UploadDate, utils.NowUTC()); ok {
		out = append(out, repositories.RecipeCreatedSince(since))
	}
	return out
}

func (s *RecipeService) defaults() listDefaults {
	return listDefaults{Page: s.Page, Sort: "updatedAt", Order: query.DescendingToken}
}

// Search lists the recipes visible to the caller.
func (s *RecipeService) Search(ctx context.Context, rc domain.RequestContext, p ListParams, f RecipeFilter) (*ListResult[models.Recipe], error) {
	var filters []query.Filter
	if vis, ok := repositories.RecipeVisibility(rc.Role(), rc.UserID()); ok {
		filters = append(filters, vis)
	}
	filters = append(filters, f.filters()...)

	rating := repositories.RecipeRating
	plan, page := p.plan(s.defaults(), filters, &rating)
	items, total, err := s.Recipes.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("recipe", err)
	}
	return listResult(items, total, page, plan), nil
}

func recipeKey(id uuid.UUID) string { return cache.Key("recipe", id.String()) }

// Get returns one recipe with its rating and rating count. Hidden recipes
// read as not found.
func (s *RecipeService) Get(ctx context.Context, rc domain.RequestContext, rawID, include, exclude string) (*models.Recipe, query.Projection, error) {
	id, err := domain.ParseID("recipeId", rawID)
	if err != nil {
		return nil, query.Projection{}, err
	}
	projection := query.BuildProjection(include, exclude)

	full := projection.IsEmpty()
	if full {
		var cached models.Recipe
		if hit, err := s.Cache.Get(ctx, recipeKey(id), &cached); err != nil {
			utils.LogFailure(ctx, "recipe", "cache_get", err)
		} else if hit {
			return &cached, projection, nil
		}
	}

	var filters []query.Filter
	if vis, ok := repositories.RecipeVisibility(rc.Role(), rc.UserID()); ok {
		filters = append(filters, vis)
	}
	rec, err := s.Recipes.Detail(ctx, id, projection, filters...)
	if err != nil {
		return nil, projection, db.Classify("recipe", err)
	}
	if full && rec.Status == domain.RecipePublished {
		if err := s.Cache.Set(ctx, recipeKey(id), rec); err != nil {
			utils.LogFailure(ctx, "recipe", "cache_set", err)
		}
	}
	return rec, projection, nil
}

func (s *RecipeService) forget(ctx context.Context, id uuid.UUID) {
	if err := s.Cache.Delete(ctx, recipeKey(id)); err != nil {
		utils.LogFailure(ctx, "recipe", "cache_delete", err)
	}
}

// RecipeInput is the body of a recipe create.
type RecipeInput struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Method      string   `json:"method"`
	Img         string   `json:"img"`
	ImgID       string   `json:"imgId"`
	ImgTitle    string   `json:"imgTitle"`
	Region      string   `json:"region"`
}

func (in RecipeInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Ingredients, validation.Required, validation.Each(validation.Required)),
		validation.Field(&in.Method, validation.Required),
		validation.Field(&in.Region, validation.Length(0, 100)),
	)
}

// Create stores a pending recipe by the calling chef. The uploaded image is
// removed from the media store when the recipe cannot be stored.
func (s *RecipeService) Create(ctx context.Context, rc domain.RequestContext, in RecipeInput) (rec *models.Recipe, err error) {
	if err := requireRole(rc, domain.RoleChef); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil && in.ImgID != "" {
			if derr := s.Media.Destroy(context.WithoutCancel(ctx), in.ImgID); derr != nil {
				utils.LogFailure(ctx, "recipe", "media_cleanup", derr, zap.String("img_id", in.ImgID))
			}
		}
	}()
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}

	rec = &models.Recipe{
		Title:       utils.NormalizeSpace(in.Title),
		Ingredients: in.Ingredients,
		Method:      in.Method,
		Img:         in.Img,
		ImgID:       in.ImgID,
		ImgTitle:    in.ImgTitle,
		Region:      strings.TrimSpace(in.Region),
		AuthorID:    rc.UserID(),
	}
	err = db.RunInTx(ctx, s.DB, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.Chefs.WithTx(tx).Get(ctx, rc.UserID()); err != nil {
			return db.Classify("chef", err)
		}
		return s.Recipes.WithTx(tx).Create(ctx, rec)
	})
	if err != nil {
		return nil, db.Classify("recipe", err)
	}
	utils.LogEvent(ctx, "recipe", "create", "recipe created", zap.String("recipe_id", rec.ID.String()))
	return rec, nil
}

// RecipePatch carries the fields an author may change; nil means unchanged.
type RecipePatch struct {
	Title       *string   `json:"title"`
	Ingredients *[]string `json:"ingredients"`
	Method      *string   `json:"method"`
	Img         *string   `json:"img"`
	ImgID       *string   `json:"imgId"`
	ImgTitle    *string   `json:"imgTitle"`
	Region      *string   `json:"region"`
}

func (p RecipePatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&p.Ingredients, validation.NilOrNotEmpty),
		validation.Field(&p.Method, validation.NilOrNotEmpty),
	)
}

// Edit applies a patch to a recipe owned by the calling chef.
func (s *RecipeService) Edit(ctx context.Context, rc domain.RequestContext, rawID string, p RecipePatch) (*models.Recipe, error) {
	if err := requireRole(rc, domain.RoleChef); err != nil {
		return nil, err
	}
	id, err := domain.ParseID("recipeId", rawID)
	if err != nil {
		return nil, err
	}
	if err := invalid(p.Validate()); err != nil {
		return nil, err
	}
	rec, err := s.Recipes.Get(ctx, id)
	if err != nil {
		return nil, db.Classify("recipe", err)
	}
	if rec.AuthorID != rc.UserID() {
		return nil, domain.ForbiddenError{Msg: "you are not allowed to edit this recipe"}
	}

	var cols []string
	set := func(col string) { cols = append(cols, col) }
	if p.Title != nil {
		rec.Title = utils.NormalizeSpace(*p.Title)
		set("title")
	}
	if p.Ingredients != nil {
		rec.Ingredients = *p.Ingredients
		set("ingredients")
	}
	if p.Method != nil {
		rec.Method = *p.Method
		set("method")
	}
	if p.Img != nil {
		rec.Img = *p.Img
		set("img")
	}
	if p.ImgID != nil {
		rec.ImgID = *p.ImgID
		set("img_id")
	}
	if p.ImgTitle != nil {
		rec.ImgTitle = *p.ImgTitle
		set("img_title")
	}
	if p.Region != nil {
		rec.Region = strings.TrimSpace(*p.Region)
		set("region")
	}
	if len(cols) == 0 {
		return nil, domain.ValidationError{Msg: "no update data provided"}
	}
	if err := s.Recipes.Update(ctx, rec, cols...); err != nil {
		return nil, db.Classify("recipe", err)
	}
	s.forget(ctx, id)
	return rec, nil
}

// SetStatus moderates a recipe.
func (s *RecipeService) SetStatus(ctx context.Context, rc domain.RequestContext, rawID string, status domain.RecipeStatus) (*models.Recipe, error) {
	if err := requireRole(rc, domain.RoleAdmin); err != nil {
		return nil, err
	}
	id, err := domain.ParseID("recipeId", rawID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: "must be pending, published or rejected"}
	}
	rec, err := s.Recipes.Get(ctx, id)
	if err != nil {
		return nil, db.Classify("recipe", err)
	}
	rec.Status = status
	if err := s.Recipes.Update(ctx, rec, "status"); err != nil {
		return nil, db.Classify("recipe", err)
	}
	s.forget(ctx, id)
	utils.LogEvent(ctx, "recipe", "status", "recipe moderated", zap.String("recipe_id", id.String()), zap.String("status", string(status)))
	return rec, nil
}

// Delete removes a recipe. Admins may delete rejected recipes, chefs their
// own.
func (s *RecipeService) Delete(ctx context.Context, rc domain.RequestContext, rawID string) error {
	if err := requireRole(rc, domain.RoleAdmin, domain.RoleChef); err != nil {
		return err
	}
	id, err := domain.ParseID("recipeId", rawID)
	if err != nil {
		return err
	}
	rec, err := s.Recipes.Get(ctx, id)
	if err != nil {
		return db.Classify("recipe", err)
	}
	allowed := (rc.Role() == domain.RoleAdmin && rec.Status == domain.RecipeRejected) ||
		(rc.Role() == domain.RoleChef && rec.AuthorID == rc.UserID())
	if !allowed {
		return domain.ValidationError{Msg: "only rejected recipes can be deleted"}
	}
	if err := s.Recipes.Delete(ctx, id); err != nil {
		return db.Classify("recipe", err)
	}
	s.forget(ctx, id)
	if rec.ImgID != "" {
		if err := s.Media.Destroy(ctx, rec.ImgID); err != nil {
			utils.LogFailure(ctx, "recipe", "media_cleanup", err, zap.String("img_id", rec.ImgID))
		}
	}
	utils.LogEvent(ctx, "recipe", "delete", "recipe deleted", zap.String("recipe_id", id.String()))
	return nil
}

// Ratings lists the ratings of one recipe, highest first by default.
// Reviewer name and image are looked up only when explicitly included.
func (s *RecipeService) Ratings(ctx context.Context, rawID string, p ListParams) (*ListResult[models.Rating], error) {
	id, err := domain.ParseID("recipeId", rawID)
	if err != nil {
		return nil, err
	}
	var reviewer *query.ComputedField
	if pr := query.BuildProjection(p.Include, p.Exclude); !pr.IsExclude() && (pr.Lists("studentName") || pr.Lists("studentImg")) {
		cf := repositories.Reviewer
		reviewer = &cf
	}
	plan, page := p.plan(listDefaults{Page: s.RatingPage, Sort: "rating", Order: query.DescendingToken},
		[]query.Filter{repositories.RatingByRecipe(id)}, reviewer)
	items, total, err := s.RatingRepo.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("rating", err)
	}
	return listResult(items, total, page, plan), nil
}

// RatingInput is the body of a rating or review.
type RatingInput struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

func (in RatingInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Rating, validation.Min(0), validation.Max(5)),
		validation.Field(&in.Message, validation.Length(0, 2000)),
	)
}

// Rate stores the calling student's rating of a recipe. A second rating by
// the same student is a conflict.
func (s *RecipeService) Rate(ctx context.Context, rc domain.RequestContext, rawID string, in RatingInput) (*models.Rating, error) {
	if err := requireRole(rc, domain.RoleStudent); err != nil {
		return nil, err
	}
	id, err := domain.ParseID("recipeId", rawID)
	if err != nil {
		return nil, err
	}
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	if _, err := s.Recipes.Get(ctx, id); err != nil {
		return nil, db.Classify("recipe", err)
	}
	m := &models.Rating{RecipeID: id, StudentID: rc.UserID(), Rating: in.Rating, Message: in.Message}
	if err := s.RatingRepo.Create(ctx, m); err != nil {
		return nil, db.Classify("rating", err)
	}
	s.forget(ctx, id)
	return m, nil
}
