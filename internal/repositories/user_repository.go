package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/query"
)

type StudentRepository struct {
	DB bun.IDB
}

func NewStudentRepository(idb bun.IDB) *StudentRepository {
	return &StudentRepository{DB: idb}
}

func (r *StudentRepository) WithTx(tx bun.IDB) *StudentRepository {
	return &StudentRepository{DB: tx}
}

func (r *StudentRepository) List(ctx context.Context, plan query.Plan) ([]models.Student, int64, error) {
	return db.RunList[models.Student](ctx, r.DB, StudentSource, plan)
}

func (r *StudentRepository) Get(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	s := &models.Student{ID: id}
	if err := getByPK(ctx, r.DB, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Detail loads one student shaped by projection.
func (r *StudentRepository) Detail(ctx context.Context, id uuid.UUID, projection query.Projection) (*models.Student, error) {
	plan := query.BuildPlan([]query.Filter{byID(StudentSource, id)}, nil, query.Sort{}, query.PageRequest{Number: 1, Size: 1}, projection)
	return first[models.Student](ctx, r.DB, StudentSource, plan)
}

func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	s := new(models.Student)
	if err := r.DB.NewSelect().Model(s).Where("student.email = ?", email).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	now := time.Now().UTC()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Package == "" {
		s.Package = domain.PackageBasic
	}
	s.Role = domain.RoleStudent
	s.CreatedAt, s.UpdatedAt = now, now
	return insert(ctx, r.DB, s)
}

// Update writes the given columns of s; updated_at is always written.
func (r *StudentRepository) Update(ctx context.Context, s *models.Student, columns ...string) error {
	s.UpdatedAt = time.Now().UTC()
	_, err := r.DB.NewUpdate().Model(s).Column(append(columns, "updated_at")...).WherePK().Exec(ctx)
	return err
}

// SetPackage moves a student to pkg. changed is false when the student was
// already on it.
func (r *StudentRepository) SetPackage(ctx context.Context, id uuid.UUID, pkg domain.Package) (changed bool, err error) {
	res, err := r.DB.NewUpdate().
		Table("students").
		Set("pkg = ?", pkg).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("pkg <> ?", pkg).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *StudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByPK(ctx, r.DB, &models.Student{ID: id})
}

type ChefRepository struct {
	DB bun.IDB
}

func NewChefRepository(idb bun.IDB) *ChefRepository {
	return &ChefRepository{DB: idb}
}

func (r *ChefRepository) WithTx(tx bun.IDB) *ChefRepository {
	return &ChefRepository{DB: tx}
}

func (r *ChefRepository) List(ctx context.Context, plan query.Plan) ([]models.Chef, int64, error) {
	return db.RunList[models.Chef](ctx, r.DB, ChefSource, plan)
}

// Detail loads one chef with the average review rating.
func (r *ChefRepository) Detail(ctx context.Context, id uuid.UUID, projection query.Projection) (*models.Chef, error) {
	cf := ChefRating
	plan := query.BuildPlan([]query.Filter{byID(ChefSource, id)}, &cf, query.Sort{}, query.PageRequest{Number: 1, Size: 1}, projection)
	return first[models.Chef](ctx, r.DB, ChefSource, plan)
}

func (r *ChefRepository) Get(ctx context.Context, id uuid.UUID) (*models.Chef, error) {
	c := &models.Chef{ID: id}
	if err := getByPK(ctx, r.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ChefRepository) FindByEmail(ctx context.Context, email string) (*models.Chef, error) {
	c := new(models.Chef)
	if err := r.DB.NewSelect().Model(c).Where("chef.email = ?", email).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ChefRepository) Create(ctx context.Context, c *models.Chef) error {
	now := time.Now().UTC()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Role = domain.RoleChef
	c.CreatedAt, c.UpdatedAt = now, now
	return insert(ctx, r.DB, c)
}

type AdminRepository struct {
	DB bun.IDB
}

func NewAdminRepository(idb bun.IDB) *AdminRepository {
	return &AdminRepository{DB: idb}
}

func (r *AdminRepository) WithTx(tx bun.IDB) *AdminRepository {
	return &AdminRepository{DB: tx}
}

func (r *AdminRepository) Get(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	a := &models.Admin{ID: id}
	if err := getByPK(ctx, r.DB, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	a := new(models.Admin)
	if err := r.DB.NewSelect().Model(a).Where("admin.email = ?", email).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a *models.Admin) error {
	now := time.Now().UTC()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Role = domain.RoleAdmin
	a.CreatedAt, a.UpdatedAt = now, now
	return insert(ctx, r.DB, a)
}

// AccountRepository resolves a user across the three role tables.
type AccountRepository struct {
	Students *StudentRepository
	Chefs    *ChefRepository
	Admins   *AdminRepository
}

func NewAccountRepository(idb bun.IDB) *AccountRepository {
	return &AccountRepository{
		Students: NewStudentRepository(idb),
		Chefs:    NewChefRepository(idb),
		Admins:   NewAdminRepository(idb),
	}
}

// FindByEmail looks the email up as a student, then a chef, then an admin.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	s, err := r.Students.FindByEmail(ctx, email)
	if err == nil {
		return &models.Account{ID: s.ID, Name: s.Name, Email: s.Email, EmailVerified: s.EmailVerified, Role: domain.RoleStudent, Package: s.Package}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	c, err := r.Chefs.FindByEmail(ctx, email)
	if err == nil {
		return &models.Account{ID: c.ID, Name: c.Name, Email: c.Email, EmailVerified: c.EmailVerified, Role: domain.RoleChef}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	a, err := r.Admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &models.Account{ID: a.ID, Name: a.Name, Email: a.Email, EmailVerified: true, Role: domain.RoleAdmin}, nil
}
