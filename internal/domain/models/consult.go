package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/domain"
)

type Consult struct {
	bun.BaseModel `bun:"table:consults,alias:consult"`

	ID        uuid.UUID            `bun:"id,pk,type:char(36)" json:"id"`
	StudentID uuid.UUID            `bun:"student_id,notnull,type:char(36)" json:"userId"`
	Username  string               `bun:"username" json:"username"`
	UserEmail string               `bun:"user_email" json:"userEmail"`
	ChefID    uuid.UUID            `bun:"chef_id,notnull,type:char(36)" json:"chefId"`
	ChefName  string               `bun:"chef_name" json:"chefName"`
	Date      string               `bun:"date,notnull" json:"date"`
	StartTime string               `bun:"start_time,notnull" json:"startTime"`
	EndTime   string               `bun:"end_time,notnull" json:"endTime"`
	Status    domain.ConsultStatus `bun:"status,notnull" json:"status"`
	CreatedAt time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

var ConsultFields = map[string]string{
	"id":        "id",
	"userId":    "student_id",
	"username":  "username",
	"userEmail": "user_email",
	"chefId":    "chef_id",
	"chefName":  "chef_name",
	"date":      "date",
	"startTime": "start_time",
	"endTime":   "end_time",
	"status":    "status",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}
