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

// ConsultParticipant limits consults to the ones the caller takes part in.
// Admins see all of them.
func ConsultParticipant(role domain.Role, userID uuid.UUID) (query.Filter, bool) {
	switch role {
	case domain.RoleAdmin:
		return query.Filter{}, false
	case domain.RoleChef:
		return query.Filter{Name: "participant", Expr: "consult.chef_id = ?", Args: []any{userID}}, true
	default:
		return query.Filter{Name: "participant", Expr: "consult.student_id = ?", Args: []any{userID}}, true
	}
}

func ConsultByStatus(status domain.ConsultStatus) query.Filter {
	return query.Filter{Name: "status", Expr: "consult.status = ?", Args: []any{status}}
}

type ConsultRepository struct {
	DB bun.IDB
}

func NewConsultRepository(idb bun.IDB) *ConsultRepository {
	return &ConsultRepository{DB: idb}
}

func (r *ConsultRepository) List(ctx context.Context, plan query.Plan) ([]models.Consult, int64, error) {
	return db.RunList[models.Consult](ctx, r.DB, ConsultSource, plan)
}

func (r *ConsultRepository) Get(ctx context.Context, id uuid.UUID) (*models.Consult, error) {
	m := &models.Consult{ID: id}
	if err := getByPK(ctx, r.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *ConsultRepository) Create(ctx context.Context, m *models.Consult) error {
	now := time.Now().UTC()
	m.ID = uuid.New()
	m.Status = domain.ConsultPending
	m.CreatedAt, m.UpdatedAt = now, now
	return insert(ctx, r.DB, m)
}

// SetStatus moves the consult from one status to another. It reports
// sql.ErrNoRows when the consult is no longer in from.
func (r *ConsultRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.ConsultStatus) error {
	res, err := r.DB.NewUpdate().
		Table("consults").
		Set("status = ?", to).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *ConsultRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByPK(ctx, r.DB, &models.Consult{ID: id})
}
