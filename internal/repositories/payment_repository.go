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
)

func ReceiptByUser(id uuid.UUID) query.Filter {
	return query.Filter{Name: "userId", Expr: "receipt.user_id = ?", Args: []any{id}}
}

func ReceiptByTitle(title domain.ReceiptTitle) query.Filter {
	return query.Filter{Name: "title", Expr: "receipt.title = ?", Args: []any{title}}
}

// PaymentRepository stores receipts of settled payments.
type PaymentRepository struct {
	DB bun.IDB
}

func NewPaymentRepository(idb bun.IDB) *PaymentRepository {
	return &PaymentRepository{DB: idb}
}

func (r *PaymentRepository) WithTx(tx bun.IDB) *PaymentRepository {
	return &PaymentRepository{DB: tx}
}

func (r *PaymentRepository) List(ctx context.Context, plan query.Plan) ([]models.PaymentReceipt, int64, error) {
	return db.RunList[models.PaymentReceipt](ctx, r.DB, ReceiptSource, plan)
}

func (r *PaymentRepository) Get(ctx context.Context, id uuid.UUID) (*models.PaymentReceipt, error) {
	m := &models.PaymentReceipt{ID: id}
	if err := getByPK(ctx, r.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PaymentRepository) Create(ctx context.Context, m *models.PaymentReceipt) error {
	now := time.Now().UTC()
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = now, now
	return insert(ctx, r.DB, m)
}

func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByPK(ctx, r.DB, &models.PaymentReceipt{ID: id})
}

// HasSucceeded reports whether the user holds a succeeded receipt for title.
func (r *PaymentRepository) HasSucceeded(ctx context.Context, userID uuid.UUID, title domain.ReceiptTitle) (bool, error) {
	n, err := r.DB.NewSelect().
		Model((*models.PaymentReceipt)(nil)).
		Where("receipt.user_id = ?", userID).
		Where("receipt.title = ?", title).
		Where("receipt.status = ?", domain.PaymentSucceeded).
		Count(ctx)
	return n > 0, err
}
