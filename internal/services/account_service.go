package services

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/repositories"
)

// AdminService reads admin profiles.
type AdminService struct {
	Admins *repositories.AdminRepository
}

func (s *AdminService) Get(ctx context.Context, rc domain.RequestContext, rawID string) (*models.Admin, error) {
	if err := requireRole(rc, domain.RoleAdmin); err != nil {
		return nil, err
	}
	id, err := domain.ParseID("adminId", rawID)
	if err != nil {
		return nil, err
	}
	a, err := s.Admins.Get(ctx, id)
	if err != nil {
		return nil, db.Classify("admin", err)
	}
	return a, nil
}

// NewsletterService records newsletter subscriptions.
type NewsletterService struct {
	Subscribers *repositories.NewsletterRepository
}

type SubscribeInput struct {
	Email string `json:"email"`
}

func (in SubscribeInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
	)
}

// Subscribe adds an email, linked to the caller when signed in. An email or
// user already subscribed is a conflict.
func (s *NewsletterService) Subscribe(ctx context.Context, rc domain.RequestContext, in SubscribeInput) (*models.NewsletterSubscriber, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	var userID *uuid.UUID
	if rc.Claims != nil {
		id := rc.UserID()
		userID = &id
	}
	exists, err := s.Subscribers.Exists(ctx, in.Email, userID)
	if err != nil {
		return nil, db.Classify("subscriber", err)
	}
	if exists {
		return nil, domain.ConflictError{Msg: "already subscribed"}
	}
	m := &models.NewsletterSubscriber{UserID: userID, Email: in.Email}
	if err := s.Subscribers.Create(ctx, m); err != nil {
		return nil, db.Classify("subscriber", err)
	}
	return m, nil
}
