package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/domain"
)

type Recipe struct {
	bun.BaseModel `bun:"table:recipes,alias:recipe"`

	ID          uuid.UUID           `bun:"id,pk,type:char(36)" json:"id"`
	Title       string              `bun:"title,notnull" json:"title"`
	Ingredients []string            `bun:"ingredients,type:json" json:"ingredients"`
	Method      string              `bun:"method,notnull" json:"method"`
	Img         string              `bun:"img" json:"img"`
	ImgID       string              `bun:"img_id" json:"imgId"`
	ImgTitle    string              `bun:"img_title" json:"imgTitle"`
	Region      string              `bun:"region" json:"region"`
	Likes       int                 `bun:"likes,notnull" json:"likes"`
	Status      domain.RecipeStatus `bun:"status,notnull" json:"status"`
	AuthorID    uuid.UUID           `bun:"author_id,type:char(36)" json:"author"`
	CreatedAt   time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Rating      *float64 `bun:"rating,scanonly" json:"rating"`
	RatingCount *int64   `bun:"rating_count,scanonly" json:"ratingCount,omitempty"`
}

var RecipeFields = map[string]string{
	"id":          "id",
	"title":       "title",
	"ingredients": "ingredients",
	"method":      "method",
	"img":         "img",
	"imgId":       "img_id",
	"imgTitle":    "img_title",
	"region":      "region",
	"likes":       "likes",
	"status":      "status",
	"author":      "author_id",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// Rating is a student's score for a recipe, one per student and recipe.
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:rating"`

	ID        uuid.UUID `bun:"id,pk,type:char(36)" json:"id"`
	RecipeID  uuid.UUID `bun:"recipe_id,notnull,type:char(36),unique:ratings_recipe_student" json:"recipeId"`
	StudentID uuid.UUID `bun:"student_id,notnull,type:char(36),unique:ratings_recipe_student" json:"studentId"`
	Rating    int       `bun:"rating,notnull" json:"rating"`
	Message   string    `bun:"message" json:"message"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	StudentName *string `bun:"student_name,scanonly" json:"studentName,omitempty"`
	StudentImg  *string `bun:"student_img,scanonly" json:"studentImg,omitempty"`
}

var RatingFields = map[string]string{
	"id":        "id",
	"recipeId":  "recipe_id",
	"studentId": "student_id",
	"rating":    "rating",
	"message":   "message",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// ChefReview is a student's review of a chef, one per student and chef.
type ChefReview struct {
	bun.BaseModel `bun:"table:chef_reviews,alias:review"`

	ID        uuid.UUID `bun:"id,pk,type:char(36)" json:"id"`
	ChefID    uuid.UUID `bun:"chef_id,notnull,type:char(36),unique:reviews_chef_student" json:"chefId"`
	StudentID uuid.UUID `bun:"student_id,notnull,type:char(36),unique:reviews_chef_student" json:"studentId"`
	Rating    int       `bun:"rating,notnull" json:"rating"`
	Message   string    `bun:"message" json:"message"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	StudentName *string `bun:"student_name,scanonly" json:"studentName,omitempty"`
	StudentImg  *string `bun:"student_img,scanonly" json:"studentImg,omitempty"`
}

var ChefReviewFields = map[string]string{
	"id":        "id",
	"chefId":    "chef_id",
	"studentId": "student_id",
	"rating":    "rating",
	"message":   "message",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Bookmark and Like share a shape: one row per student and recipe.
type Bookmark struct {
	bun.BaseModel `bun:"table:bookmarks,alias:bookmark"`

	ID        uuid.UUID `bun:"id,pk,type:char(36)" json:"id"`
	StudentID uuid.UUID `bun:"student_id,notnull,type:char(36),unique:bookmarks_student_recipe" json:"studentId"`
	RecipeID  uuid.UUID `bun:"recipe_id,notnull,type:char(36),unique:bookmarks_student_recipe" json:"recipeId"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type Like struct {
	bun.BaseModel `bun:"table:likes,alias:lk"`

	ID        uuid.UUID `bun:"id,pk,type:char(36)" json:"id"`
	StudentID uuid.UUID `bun:"student_id,notnull,type:char(36),unique:likes_student_recipe" json:"studentId"`
	RecipeID  uuid.UUID `bun:"recipe_id,notnull,type:char(36),unique:likes_student_recipe" json:"recipeId"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}
