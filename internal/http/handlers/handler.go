package handlers

import (
	"time"

	"github.com/uptrace/bun"

	"madchef/internal/services"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	DB *bun.DB

	Auth       *services.AuthService
	Students   *services.StudentService
	Engagement *services.EngagementService
	Feedback   *services.FeedbackService
	Chefs      *services.ChefService
	Recipes    *services.RecipeService
	Consults   *services.ConsultService
	Payments   *services.PaymentService
	Roles      *services.RoleService
	Admins     *services.AdminService
	Newsletter *services.NewsletterService

	Cookie CookieConfig
	// EmailVerifiedRedirect is where the verify-email link lands.
	EmailVerifiedRedirect string
}

// CookieConfig shapes the refresh token cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}
