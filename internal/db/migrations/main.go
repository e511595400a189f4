// Package migrations holds the schema history applied by the migrate command.
package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

var Migrations = migrate.NewMigrations()

// Up applies every pending migration as one group.
func Up(ctx context.Context, db *bun.DB, log *zap.Logger) error {
	m := migrate.NewMigrator(db, Migrations)
	if err := m.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Lock(ctx); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer func() { _ = m.Unlock(ctx) }()

	group, err := m.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if group.IsZero() {
		log.Info("no new migrations")
		return nil
	}
	log.Info("migrated", zap.String("group", group.String()))
	return nil
}

// Down rolls back the last applied group.
func Down(ctx context.Context, db *bun.DB, log *zap.Logger) error {
	m := migrate.NewMigrator(db, Migrations)
	if err := m.Lock(ctx); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer func() { _ = m.Unlock(ctx) }()

	group, err := m.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	if group.IsZero() {
		log.Info("nothing to roll back")
		return nil
	}
	log.Info("rolled back", zap.String("group", group.String()))
	return nil
}
