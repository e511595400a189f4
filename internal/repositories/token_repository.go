package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/domain/models"
)

// RefreshTokenRepository keeps one refresh token per user.
type RefreshTokenRepository struct {
	DB bun.IDB
}

func NewRefreshTokenRepository(idb bun.IDB) *RefreshTokenRepository {
	return &RefreshTokenRepository{DB: idb}
}

func (r *RefreshTokenRepository) WithTx(tx bun.IDB) *RefreshTokenRepository {
	return &RefreshTokenRepository{DB: tx}
}

// Save replaces the user's refresh token.
func (r *RefreshTokenRepository) Save(ctx context.Context, tok *models.RefreshToken) error {
	_, err := r.DB.NewInsert().
		Model(tok).
		On("DUPLICATE KEY UPDATE").
		Set("token_hash = VALUES(token_hash)").
		Set("expires_at = VALUES(expires_at)").
		Exec(ctx)
	return err
}

func (r *RefreshTokenRepository) Get(ctx context.Context, userID uuid.UUID) (*models.RefreshToken, error) {
	tok := &models.RefreshToken{UserID: userID}
	if err := getByPK(ctx, r.DB, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.DB.NewDelete().Model(&models.RefreshToken{UserID: userID}).WherePK().Exec(ctx)
	return err
}

// NewsletterRepository stores newsletter subscriptions.
type NewsletterRepository struct {
	DB bun.IDB
}

func NewNewsletterRepository(idb bun.IDB) *NewsletterRepository {
	return &NewsletterRepository{DB: idb}
}

// Exists reports a subscription by email or, when given, by user.
func (r *NewsletterRepository) Exists(ctx context.Context, email string, userID *uuid.UUID) (bool, error) {
	q := r.DB.NewSelect().Model((*models.NewsletterSubscriber)(nil))
	q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("subscriber.email = ?", email)
		if userID != nil {
			q = q.WhereOr("subscriber.user_id = ?", *userID)
		}
		return q
	})
	n, err := q.Count(ctx)
	return n > 0, err
}

func (r *NewsletterRepository) Create(ctx context.Context, m *models.NewsletterSubscriber) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()
	return insert(ctx, r.DB, m)
}
