package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/query"
	"madchef/internal/repositories"
	"madchef/internal/utils"
)

// RoleService handles promotion requests from students to chef or admin.
type RoleService struct {
	DB           *bun.DB
	Applications *repositories.RoleApplicationRepository
	Students     *repositories.StudentRepository
	Chefs        *repositories.ChefRepository
	Admins       *repositories.AdminRepository
	Tokens       *repositories.RefreshTokenRepository
	Page         query.PageConfig
}

func parsePromotionRole(raw string) (domain.Role, error) {
	role := domain.Role(raw)
	if role != domain.RoleChef && role != domain.RoleAdmin {
		return "", domain.ValidationError{Field: "role", Msg: "a valid role is required"}
	}
	return role, nil
}

// Apply files a promotion request for the calling student.
func (s *RoleService) Apply(ctx context.Context, rc domain.RequestContext, rawRole string) (*models.RoleApplication, error) {
	if err := requireRole(rc, domain.RoleStudent); err != nil {
		return nil, err
	}
	role, err := parsePromotionRole(rawRole)
	if err != nil {
		return nil, err
	}
	_, err = s.Applications.Find(ctx, rc.UserID(), role)
	if err == nil {
		return nil, domain.ConflictError{Msg: "user already applied"}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, db.Classify("application", err)
	}
	m := &models.RoleApplication{UserID: rc.UserID(), Role: role}
	if err := s.Applications.Create(ctx, m); err != nil {
		return nil, db.Classify("application", err)
	}
	utils.LogEvent(ctx, "role", "apply", "promotion requested", zap.String("user_id", m.UserID.String()), zap.String("role", string(role)))
	return m, nil
}

// Applied reports whether the caller has asked for role.
func (s *RoleService) Applied(ctx context.Context, rc domain.RequestContext, rawRole string) (bool, error) {
	if rc.Claims == nil {
		return false, domain.UnauthorizedError{}
	}
	if rawRole == "" {
		return false, domain.ValidationError{Field: "role", Msg: "role is required"}
	}
	_, err := s.Applications.Find(ctx, rc.UserID(), domain.Role(rawRole))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, db.Classify("application", err)
	}
	return true, nil
}

// List pages through applications, optionally by status and role. Admin only.
func (s *RoleService) List(ctx context.Context, rc domain.RequestContext, p ListParams, status, role string) (*ListResult[models.RoleApplication], error) {
	if err := requireRole(rc, domain.RoleAdmin); err != nil {
		return nil, err
	}
	var filters []query.Filter
	if status != "" {
		filters = append(filters, repositories.ApplicationByStatus(domain.ApplicationStatus(status)))
	}
	if role != "" {
		filters = append(filters, repositories.ApplicationByRole(domain.Role(role)))
	}
	plan, page := p.plan(listDefaults{Page: s.Page, Sort: "createdAt", Order: query.DescendingToken}, filters, nil)
	items, total, err := s.Applications.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("application", err)
	}
	return listResult(items, total, page, plan), nil
}

// Get returns an application to an admin or to its applicant.
func (s *RoleService) Get(ctx context.Context, rc domain.RequestContext, rawID string) (*models.RoleApplication, error) {
	if rc.Claims == nil {
		return nil, domain.UnauthorizedError{}
	}
	id, err := domain.ParseID("id", rawID)
	if err != nil {
		return nil, err
	}
	m, err := s.Applications.Get(ctx, id)
	if err != nil {
		return nil, db.Classify("application", err)
	}
	if rc.Role() != domain.RoleAdmin && m.UserID != rc.UserID() {
		return nil, domain.NotFoundError{Resource: "application"}
	}
	return m, nil
}

// Decide accepts or rejects a pending application. Accepting moves the
// student into the requested role table and revokes their refresh token,
// all in one transaction; it requires a verified email.
func (s *RoleService) Decide(ctx context.Context, rc domain.RequestContext, rawID string, status domain.ApplicationStatus) (*models.RoleApplication, error) {
	if err := requireRole(rc, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if status != domain.ApplicationAccepted && status != domain.ApplicationRejected {
		return nil, domain.ValidationError{Field: "status", Msg: "must be accepted or rejected"}
	}
	id, err := domain.ParseID("id", rawID)
	if err != nil {
		return nil, err
	}

	var app *models.RoleApplication
	err = db.RunInTx(ctx, s.DB, func(ctx context.Context, tx bun.Tx) error {
		apps := s.Applications.WithTx(tx)
		m, err := apps.Get(ctx, id)
		if err != nil {
			return db.Classify("application", err)
		}
		if m.Status != domain.ApplicationPending {
			return domain.ConflictError{Resource: "application", Msg: "already " + string(m.Status)}
		}
		if status == domain.ApplicationAccepted {
			if err := s.promote(ctx, tx, m); err != nil {
				return err
			}
		}
		if err := apps.SetStatus(ctx, m.ID, status); err != nil {
			return err
		}
		m.Status = status
		app = m
		return nil
	})
	if err != nil {
		return nil, db.Classify("application", err)
	}
	utils.LogEvent(ctx, "role", "decide", "application decided", zap.String("application_id", id.String()), zap.String("status", string(status)))
	return app, nil
}

func (s *RoleService) promote(ctx context.Context, tx bun.Tx, m *models.RoleApplication) error {
	students := s.Students.WithTx(tx)
	st, err := students.Get(ctx, m.UserID)
	if err != nil {
		return db.Classify("student", err)
	}
	if !st.EmailVerified {
		return domain.ValidationError{Field: "email", Msg: "applicant email is not verified"}
	}

	switch m.Role {
	case domain.RoleChef:
		err = s.Chefs.WithTx(tx).Create(ctx, &models.Chef{
			ID:                st.ID,
			Name:              st.Name,
			Email:             st.Email,
			EmailVerified:     st.EmailVerified,
			Img:               st.Img,
			Bio:               models.DefaultChefBio,
			YearsOfExperience: models.DefaultChefExperience,
		})
	case domain.RoleAdmin:
		err = s.Admins.WithTx(tx).Create(ctx, &models.Admin{ID: st.ID, Name: st.Name, Email: st.Email, Img: st.Img})
	default:
		return domain.ValidationError{Field: "role", Msg: "unsupported role"}
	}
	if err != nil {
		return db.Classify(string(m.Role), err)
	}
	if err := students.Delete(ctx, st.ID); err != nil {
		return db.Classify("student", err)
	}
	return s.Tokens.WithTx(tx).Delete(ctx, st.ID)
}

// Delete removes an application; applicants may withdraw their own.
func (s *RoleService) Delete(ctx context.Context, rc domain.RequestContext, rawID string) error {
	m, err := s.Get(ctx, rc, rawID)
	if err != nil {
		return err
	}
	return db.Classify("application", s.Applications.Delete(ctx, m.ID))
}
