package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/domain"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:student"`

	ID            uuid.UUID      `bun:"id,pk,type:char(36)" json:"id"`
	Name          string         `bun:"name,notnull" json:"name"`
	Email         string         `bun:"email,notnull,unique" json:"email"`
	EmailVerified bool           `bun:"email_verified,notnull" json:"emailVerified"`
	Role          domain.Role    `bun:"role,notnull" json:"role"`
	Package       domain.Package `bun:"pkg,notnull" json:"pkg"`
	Img           string         `bun:"img" json:"img"`
	ImgID         string         `bun:"img_id" json:"imgId"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// StudentFields maps API field names to columns for list queries.
var StudentFields = map[string]string{
	"id":            "id",
	"name":          "name",
	"email":         "email",
	"emailVerified": "email_verified",
	"role":          "role",
	"pkg":           "pkg",
	"img":           "img",
	"imgId":         "img_id",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

const (
	DefaultChefBio        = "Best cook in the town"
	DefaultChefExperience = 3
)

type Chef struct {
	bun.BaseModel `bun:"table:chefs,alias:chef"`

	ID                uuid.UUID   `bun:"id,pk,type:char(36)" json:"id"`
	Name              string      `bun:"name,notnull" json:"name"`
	Email             string      `bun:"email,notnull,unique" json:"email"`
	EmailVerified     bool        `bun:"email_verified,notnull" json:"emailVerified"`
	Role              domain.Role `bun:"role,notnull" json:"role"`
	Img               string      `bun:"img" json:"img"`
	Bio               string      `bun:"bio" json:"bio"`
	YearsOfExperience int         `bun:"years_of_experience,notnull" json:"yearsOfExperience"`
	CreatedAt         time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt         time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Rating *float64 `bun:"rating,scanonly" json:"rating"`
}

var ChefFields = map[string]string{
	"id":                "id",
	"name":              "name",
	"email":             "email",
	"emailVerified":     "email_verified",
	"role":              "role",
	"img":               "img",
	"bio":               "bio",
	"yearsOfExperience": "years_of_experience",
	"createdAt":         "created_at",
	"updatedAt":         "updated_at",
}

type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:admin"`

	ID        uuid.UUID   `bun:"id,pk,type:char(36)" json:"id"`
	Name      string      `bun:"name,notnull" json:"name"`
	Email     string      `bun:"email,notnull,unique" json:"email"`
	Role      domain.Role `bun:"role,notnull" json:"role"`
	Img       string      `bun:"img" json:"img"`
	CreatedAt time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Account is the role-independent view of a user used by auth flows.
type Account struct {
	ID            uuid.UUID
	Name          string
	Email         string
	EmailVerified bool
	Role          domain.Role
	Package       domain.Package
}
