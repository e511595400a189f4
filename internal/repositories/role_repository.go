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

func ApplicationByStatus(status domain.ApplicationStatus) query.Filter {
	return query.Filter{Name: "status", Expr: "application.status = ?", Args: []any{status}}
}

func ApplicationByRole(role domain.Role) query.Filter {
	return query.Filter{Name: "role", Expr: "application.role = ?", Args: []any{role}}
}

// RoleApplicationRepository stores promotion requests.
type RoleApplicationRepository struct {
	DB bun.IDB
}

func NewRoleApplicationRepository(idb bun.IDB) *RoleApplicationRepository {
	return &RoleApplicationRepository{DB: idb}
}

func (r *RoleApplicationRepository) WithTx(tx bun.IDB) *RoleApplicationRepository {
	return &RoleApplicationRepository{DB: tx}
}

func (r *RoleApplicationRepository) List(ctx context.Context, plan query.Plan) ([]models.RoleApplication, int64, error) {
	return db.RunList[models.RoleApplication](ctx, r.DB, RoleApplicationSource, plan)
}

func (r *RoleApplicationRepository) Get(ctx context.Context, id uuid.UUID) (*models.RoleApplication, error) {
	m := &models.RoleApplication{ID: id}
	if err := getByPK(ctx, r.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *RoleApplicationRepository) Find(ctx context.Context, userID uuid.UUID, role domain.Role) (*models.RoleApplication, error) {
	m := new(models.RoleApplication)
	err := r.DB.NewSelect().Model(m).
		Where("application.user_id = ?", userID).
		Where("application.role = ?", role).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *RoleApplicationRepository) Create(ctx context.Context, m *models.RoleApplication) error {
	now := time.Now().UTC()
	m.ID = uuid.New()
	m.Status = domain.ApplicationPending
	m.CreatedAt, m.UpdatedAt = now, now
	return insert(ctx, r.DB, m)
}

func (r *RoleApplicationRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) error {
	_, err := r.DB.NewUpdate().
		Table("role_applications").
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *RoleApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByPK(ctx, r.DB, &models.RoleApplication{ID: id})
}
