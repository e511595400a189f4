package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"madchef/internal/domain/models"
)

func schema() []any {
	return []any{
		(*models.Student)(nil),
		(*models.Chef)(nil),
		(*models.Admin)(nil),
		(*models.Recipe)(nil),
		(*models.Rating)(nil),
		(*models.ChefReview)(nil),
		(*models.Bookmark)(nil),
		(*models.Like)(nil),
		(*models.Consult)(nil),
		(*models.PaymentReceipt)(nil),
		(*models.RoleApplication)(nil),
		(*models.RefreshToken)(nil),
		(*models.NewsletterSubscriber)(nil),
	}
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, model := range schema() {
				if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("create table for %T: %w", model, err)
				}
			}
			indexes := []struct {
				model   any
				name    string
				columns []string
			}{
				{(*models.Recipe)(nil), "recipes_status_updated_idx", []string{"status", "updated_at"}},
				{(*models.Recipe)(nil), "recipes_author_idx", []string{"author_id"}},
				{(*models.Consult)(nil), "consults_chef_idx", []string{"chef_id"}},
				{(*models.PaymentReceipt)(nil), "receipts_user_idx", []string{"user_id"}},
			}
			for _, idx := range indexes {
				if _, err := tx.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).Exec(ctx); err != nil {
					return fmt.Errorf("create index %s: %w", idx.name, err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		tables := schema()
		for i := len(tables) - 1; i >= 0; i-- {
			if _, err := db.NewDropTable().Model(tables[i]).IfExists().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
