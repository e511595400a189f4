package services

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/external"
	"madchef/internal/query"
	"madchef/internal/repositories"
	"madchef/internal/utils"
)

const receiptCurrency = "usd"

// PaymentService opens payment intents with the processor and records
// settled payments as receipts.
type PaymentService struct {
	Payments  *repositories.PaymentRepository
	Students  *repositories.StudentRepository
	Processor external.PaymentProcessor
	Page      query.PageConfig
}

// IntentInput asks for a payment intent; Amount is in cents.
type IntentInput struct {
	Amount int64               `json:"amount"`
	Title  domain.ReceiptTitle `json:"title"`
}

func (in IntentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Amount, validation.Required, validation.Min(int64(50))),
		validation.Field(&in.Title, validation.Required, validation.In(domain.ReceiptProPackage, domain.ReceiptChefSupport)),
	)
}

// CreateIntent returns the client secret of a new payment intent.
func (s *PaymentService) CreateIntent(ctx context.Context, rc domain.RequestContext, in IntentInput) (string, error) {
	if rc.Claims == nil {
		return "", domain.UnauthorizedError{}
	}
	if err := invalid(in.Validate()); err != nil {
		return "", err
	}
	pi, err := s.Processor.CreateIntent(ctx, in.Amount, receiptCurrency, map[string]string{
		"user_id": rc.UserID().String(),
		"title":   string(in.Title),
	})
	if err != nil {
		return "", domain.InternalError{Msg: "payment processor unavailable", Err: err}
	}
	utils.LogEvent(ctx, "payment", "create_intent", "payment intent created", zap.String("intent_id", pi.ID), zap.Int64("amount", in.Amount))
	return pi.ClientSecret, nil
}

// Receipts lists receipts: all of them for admins, the caller's own
// otherwise.
func (s *PaymentService) Receipts(ctx context.Context, rc domain.RequestContext, p ListParams, title string) (*ListResult[models.PaymentReceipt], error) {
	if rc.Claims == nil {
		return nil, domain.UnauthorizedError{}
	}
	var filters []query.Filter
	if rc.Role() != domain.RoleAdmin {
		filters = append(filters, repositories.ReceiptByUser(rc.UserID()))
	}
	if title != "" {
		filters = append(filters, repositories.ReceiptByTitle(domain.ReceiptTitle(title)))
	}
	plan, page := p.plan(listDefaults{Page: s.Page, Sort: "createdAt", Order: query.DescendingToken}, filters, nil)
	items, total, err := s.Payments.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("receipt", err)
	}
	return listResult(items, total, page, plan), nil
}

// ReceiptInput names a processor payment to record.
type ReceiptInput struct {
	TransactionID string              `json:"transactionId"`
	Title         domain.ReceiptTitle `json:"title"`
}

func (in ReceiptInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.TransactionID, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Title, validation.Required, validation.In(domain.ReceiptProPackage, domain.ReceiptChefSupport)),
	)
}

// SaveReceipt records a payment after confirming it with the processor.
// Amount and status come from the processor, never from the client.
func (s *PaymentService) SaveReceipt(ctx context.Context, rc domain.RequestContext, in ReceiptInput) (*models.PaymentReceipt, error) {
	if err := requireRole(rc, domain.RoleStudent); err != nil {
		return nil, err
	}
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	pi, err := s.Processor.GetIntent(ctx, in.TransactionID)
	if errors.Is(err, external.ErrIntentNotFound) {
		return nil, domain.ValidationError{Field: "transactionId", Msg: "unknown payment", Err: err}
	}
	if err != nil {
		return nil, domain.InternalError{Msg: "payment processor unavailable", Err: err}
	}
	student, err := s.Students.Get(ctx, rc.UserID())
	if err != nil {
		return nil, db.Classify("student", err)
	}
	m := &models.PaymentReceipt{
		UserID:        student.ID,
		Username:      student.Name,
		Email:         student.Email,
		Title:         in.Title,
		TransactionID: pi.ID,
		Amount:        pi.Amount,
		Status:        pi.Status,
	}
	if err := s.Payments.Create(ctx, m); err != nil {
		return nil, db.Classify("receipt", err)
	}
	utils.LogEvent(ctx, "payment", "save_receipt", "receipt saved", zap.String("receipt_id", m.ID.String()), zap.String("status", m.Status))
	return m, nil
}

func (s *PaymentService) receipt(ctx context.Context, rc domain.RequestContext, rawID string) (*models.PaymentReceipt, error) {
	if rc.Claims == nil {
		return nil, domain.UnauthorizedError{}
	}
	id, err := domain.ParseID("id", rawID)
	if err != nil {
		return nil, err
	}
	m, err := s.Payments.Get(ctx, id)
	if err != nil {
		return nil, db.Classify("receipt", err)
	}
	if rc.Role() != domain.RoleAdmin && m.UserID != rc.UserID() {
		return nil, domain.NotFoundError{Resource: "receipt"}
	}
	return m, nil
}

// ReceiptPDF renders a receipt the caller owns (or any, for admins).
func (s *PaymentService) ReceiptPDF(ctx context.Context, rc domain.RequestContext, rawID string) ([]byte, string, error) {
	m, err := s.receipt(ctx, rc, rawID)
	if err != nil {
		return nil, "", err
	}
	pdf, name, err := buildReceiptPDF(m)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "receipt rendering failed", Err: err}
	}
	utils.LogEvent(ctx, "payment", "receipt_pdf", "receipt rendered", zap.String("receipt_id", m.ID.String()))
	return pdf, name, nil
}

func (s *PaymentService) DeleteReceipt(ctx context.Context, rc domain.RequestContext, rawID string) error {
	if err := requireRole(rc, domain.RoleAdmin); err != nil {
		return err
	}
	id, err := domain.ParseID("id", rawID)
	if err != nil {
		return err
	}
	return db.Classify("receipt", s.Payments.Delete(ctx, id))
}
