package services

import (
	"context"
	"database/sql"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/query"
	"madchef/internal/repositories"
	"madchef/internal/utils"
)

type ConsultService struct {
	Consults *repositories.ConsultRepository
	Students *repositories.StudentRepository
	Chefs    *repositories.ChefRepository
	Page     query.PageConfig
}

// List pages through the consults the caller takes part in, optionally
// narrowed to one status.
func (s *ConsultService) List(ctx context.Context, rc domain.RequestContext, p ListParams, status string) (*ListResult[models.Consult], error) {
	if rc.Claims == nil {
		return nil, domain.UnauthorizedError{}
	}
	var filters []query.Filter
	if f, ok := repositories.ConsultParticipant(rc.Role(), rc.UserID()); ok {
		filters = append(filters, f)
	}
	if status != "" {
		filters = append(filters, repositories.ConsultByStatus(domain.ConsultStatus(status)))
	}
	plan, page := p.plan(listDefaults{Page: s.Page, Sort: "createdAt", Order: query.DescendingToken}, filters, nil)
	items, total, err := s.Consults.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("consult", err)
	}
	return listResult(items, total, page, plan), nil
}

// ConsultInput is a booking request.
type ConsultInput struct {
	ChefID    string `json:"chefId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (in ConsultInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ChefID, validation.Required),
		validation.Field(&in.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&in.StartTime, validation.Required, validation.Date("15:04")),
		validation.Field(&in.EndTime, validation.Required, validation.Date("15:04")),
	)
}

// Book stores a pending consult. Only pro students may book.
func (s *ConsultService) Book(ctx context.Context, rc domain.RequestContext, in ConsultInput) (*models.Consult, error) {
	if err := requireRole(rc, domain.RoleStudent); err != nil {
		return nil, err
	}
	if rc.Claims.Package != domain.PackagePro {
		return nil, domain.ForbiddenError{Msg: "only pro students can book consultations"}
	}
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	chefID, err := domain.ParseID("chefId", in.ChefID)
	if err != nil {
		return nil, err
	}
	day, _ := utils.ParseDate(in.Date)
	start, _ := utils.ParseClock(in.StartTime)
	end, _ := utils.ParseClock(in.EndTime)
	if !end.After(start) {
		return nil, domain.ValidationError{Field: "endTime", Msg: "must be after startTime"}
	}

	student, err := s.Students.Get(ctx, rc.UserID())
	if err != nil {
		return nil, db.Classify("student", err)
	}
	chef, err := s.Chefs.Get(ctx, chefID)
	if err != nil {
		return nil, db.Classify("chef", err)
	}
	m := &models.Consult{
		StudentID: student.ID,
		Username:  student.Name,
		UserEmail: student.Email,
		ChefID:    chef.ID,
		ChefName:  chef.Name,
		Date:      utils.FormatDate(day),
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if err := s.Consults.Create(ctx, m); err != nil {
		return nil, db.Classify("consult", err)
	}
	utils.LogEvent(ctx, "consult", "book", "consult booked", zap.String("consult_id", m.ID.String()))
	return m, nil
}

// move applies one status transition guarded by the current status.
func (s *ConsultService) move(ctx context.Context, m *models.Consult, to domain.ConsultStatus) (*models.Consult, error) {
	if !m.Status.CanMoveTo(to) {
		return nil, domain.ValidationError{Field: "status", Msg: "cannot move from " + string(m.Status) + " to " + string(to)}
	}
	err := s.Consults.SetStatus(ctx, m.ID, m.Status, to)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ConflictError{Resource: "consult", Msg: "status changed concurrently", Err: err}
	}
	if err != nil {
		return nil, db.Classify("consult", err)
	}
	m.Status = to
	utils.LogEvent(ctx, "consult", "status", "consult moved", zap.String("consult_id", m.ID.String()), zap.String("status", string(to)))
	return m, nil
}

func (s *ConsultService) load(ctx context.Context, rawID string) (*models.Consult, error) {
	id, err := domain.ParseID("consultId", rawID)
	if err != nil {
		return nil, err
	}
	m, err := s.Consults.Get(ctx, id)
	if err != nil {
		return nil, db.Classify("consult", err)
	}
	return m, nil
}

// Cancel lets either participant cancel a pending or accepted consult.
func (s *ConsultService) Cancel(ctx context.Context, rc domain.RequestContext, rawID string) (*models.Consult, error) {
	if err := requireRole(rc, domain.RoleStudent, domain.RoleChef); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if m.StudentID != rc.UserID() && m.ChefID != rc.UserID() {
		return nil, domain.ForbiddenError{Msg: "not your consult"}
	}
	return s.move(ctx, m, domain.ConsultCancelled)
}

// SetStatus is the chef's side of the consult lifecycle.
func (s *ConsultService) SetStatus(ctx context.Context, rc domain.RequestContext, rawID string, to domain.ConsultStatus) (*models.Consult, error) {
	if err := requireRole(rc, domain.RoleChef); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if m.ChefID != rc.UserID() {
		return nil, domain.ForbiddenError{Msg: "not your consult"}
	}
	return s.move(ctx, m, to)
}

// Delete removes a consult. Admins may delete any, students their own.
func (s *ConsultService) Delete(ctx context.Context, rc domain.RequestContext, rawID string) error {
	if err := requireRole(rc, domain.RoleAdmin, domain.RoleStudent); err != nil {
		return err
	}
	m, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}
	if rc.Role() != domain.RoleAdmin && m.StudentID != rc.UserID() {
		return domain.ForbiddenError{Msg: "not your consult"}
	}
	return db.Classify("consult", s.Consults.Delete(ctx, m.ID))
}
