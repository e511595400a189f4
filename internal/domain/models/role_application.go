package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/domain"
)

// RoleApplication is a request by a student to be promoted.
type RoleApplication struct {
	bun.BaseModel `bun:"table:role_applications,alias:application"`

	ID        uuid.UUID                `bun:"id,pk,type:char(36)" json:"id"`
	UserID    uuid.UUID                `bun:"user_id,notnull,type:char(36)" json:"userId"`
	Role      domain.Role              `bun:"role,notnull" json:"role"`
	Status    domain.ApplicationStatus `bun:"status,notnull" json:"status"`
	CreatedAt time.Time                `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time                `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

var RoleApplicationFields = map[string]string{
	"id":        "id",
	"userId":    "user_id",
	"role":      "role",
	"status":    "status",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:refresh_token"`

	UserID    uuid.UUID `bun:"user_id,pk,type:char(36)"`
	TokenHash string    `bun:"token_hash,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
}

type NewsletterSubscriber struct {
	bun.BaseModel `bun:"table:newsletter_subscribers,alias:subscriber"`

	ID        uuid.UUID  `bun:"id,pk,type:char(36)" json:"id"`
	UserID    *uuid.UUID `bun:"user_id,unique,type:char(36)" json:"userId,omitempty"`
	Email     string     `bun:"email,notnull,unique" json:"email"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
