package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/domain"
)

// PaymentReceipt records a settled payment with the external processor.
type PaymentReceipt struct {
	bun.BaseModel `bun:"table:payment_receipts,alias:receipt"`

	ID            uuid.UUID           `bun:"id,pk,type:char(36)" json:"id"`
	UserID        uuid.UUID           `bun:"user_id,notnull,type:char(36)" json:"userId"`
	Username      string              `bun:"username" json:"username"`
	Email         string              `bun:"email" json:"email"`
	Title         domain.ReceiptTitle `bun:"title,notnull" json:"title"`
	TransactionID string              `bun:"transaction_id,notnull,unique" json:"transactionId"`
	Amount        int64               `bun:"amount,notnull" json:"amount"`
	Status        string              `bun:"status,notnull" json:"status"`
	CreatedAt     time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

var PaymentReceiptFields = map[string]string{
	"id":            "id",
	"userId":        "user_id",
	"username":      "username",
	"email":         "email",
	"title":         "title",
	"transactionId": "transaction_id",
	"amount":        "amount",
	"status":        "status",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}
