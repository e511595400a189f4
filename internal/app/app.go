// Package app assembles repositories, services and the router from an Env.
package app

import (
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"madchef/internal/cache"
	"madchef/internal/config"
	"madchef/internal/external"
	api "madchef/internal/http"
	h "madchef/internal/http/handlers"
	"madchef/internal/repositories"
	"madchef/internal/services"
)

// Clients are the outbound integrations. Nil fields are built from Env.
type Clients struct {
	Identity  external.IdentityProvider
	Media     external.MediaStore
	Processor external.PaymentProcessor
}

func (c Clients) withDefaults(env config.Env) Clients {
	if c.Identity == nil {
		c.Identity = external.NewFirebaseProvider(external.FirebaseConfig{
			ProjectID: env.FirebaseProjectID,
			APIKey:    env.FirebaseAPIKey,
			JWKSURL:   env.FirebaseJWKSURL,
		}, resty.New())
	}
	if c.Media == nil {
		c.Media = external.NewCloudinaryClient(external.CloudinaryConfig{
			BaseURL:   env.CloudinaryBaseURL,
			CloudName: env.CloudinaryCloudName,
			APIKey:    env.CloudinaryAPIKey,
			APISecret: env.CloudinaryAPISecret,
		})
	}
	if c.Processor == nil {
		c.Processor = external.NewStripeClient(env.StripeBaseURL, env.StripeAPIKey)
	}
	return c
}

// NewIssuer builds the token issuer from the token settings in env.
func NewIssuer(env config.Env) *services.TokenIssuer {
	return &services.TokenIssuer{
		AccessSecret:  []byte(env.AccessTokenSecret),
		RefreshSecret: []byte(env.RefreshTokenSecret),
		AccessTTL:     env.AccessTokenTTL,
		RefreshTTL:    env.RefreshTokenTTL,
		HashCost:      bcrypt.DefaultCost,
	}
}

// NewHandler wires every repository and service over one bun.DB.
func NewHandler(env config.Env, db *bun.DB, store cache.Cache, clients Clients, issuer *services.TokenIssuer) *h.Handler {
	if store == nil {
		store = cache.Nop{}
	}
	clients = clients.withDefaults(env)

	students := repositories.NewStudentRepository(db)
	chefs := repositories.NewChefRepository(db)
	admins := repositories.NewAdminRepository(db)
	recipes := repositories.NewRecipeRepository(db)
	ratings := repositories.NewRatingRepository(db)
	reviews := repositories.NewChefReviewRepository(db)
	payments := repositories.NewPaymentRepository(db)
	tokens := repositories.NewRefreshTokenRepository(db)

	feedback := &services.FeedbackService{
		Recipes:    recipes,
		Chefs:      chefs,
		Ratings:    ratings,
		Reviews:    reviews,
		Cache:      store,
		RatingPage: env.Page(config.PageRatings),
		ReviewPage: env.Page(config.PageReviews),
	}

	return &h.Handler{
		DB: db,
		Auth: &services.AuthService{
			Accounts: repositories.NewAccountRepository(db),
			Students: students,
			Tokens:   tokens,
			Identity: clients.Identity,
			Issuer:   issuer,
		},
		Students: &services.StudentService{
			DB:       db,
			Students: students,
			Payments: payments,
			Tokens:   tokens,
			Issuer:   issuer,
			Identity: clients.Identity,
			Media:    clients.Media,
			Page:     env.Page(config.PageUsers),
		},
		Engagement: &services.EngagementService{
			DB:           db,
			RecipeRepo:   recipes,
			BookmarkRepo: repositories.NewBookmarkRepository(db),
			LikeRepo:     repositories.NewLikeRepository(db),
			Cache:        store,
		},
		Feedback: feedback,
		Chefs: &services.ChefService{
			Chefs:      chefs,
			ReviewRepo: reviews,
			Feedback:   feedback,
			Page:       env.Page(config.PageChefs),
			ReviewPage: env.Page(config.PageReviews),
		},
		Recipes: &services.RecipeService{
			DB:         db,
			Recipes:    recipes,
			Chefs:      chefs,
			RatingRepo: ratings,
			Media:      clients.Media,
			Cache:      store,
			Page:       env.Page(config.PageRecipes),
			RatingPage: env.Page(config.PageRatings),
		},
		Consults: &services.ConsultService{
			Consults: repositories.NewConsultRepository(db),
			Students: students,
			Chefs:    chefs,
			Page:     env.Page(config.PageConsults),
		},
		Payments: &services.PaymentService{
			Payments:  payments,
			Students:  students,
			Processor: clients.Processor,
			Page:      env.Page(config.PageReceipts),
		},
		Roles: &services.RoleService{
			DB:           db,
			Applications: repositories.NewRoleApplicationRepository(db),
			Students:     students,
			Chefs:        chefs,
			Admins:       admins,
			Tokens:       tokens,
			Page:         env.Page(config.PageApplications),
		},
		Admins:     &services.AdminService{Admins: admins},
		Newsletter: &services.NewsletterService{Subscribers: repositories.NewNewsletterRepository(db)},
		Cookie: h.CookieConfig{
			Name:   env.RefreshTokenCookieName,
			Secure: env.SecureCookies,
			TTL:    env.RefreshTokenTTL,
		},
		EmailVerifiedRedirect: env.EmailVerifiedRedirect,
	}
}

// NewEngine builds the full HTTP engine.
func NewEngine(env config.Env, log *zap.Logger, db *bun.DB, store cache.Cache, clients Clients) *gin.Engine {
	issuer := NewIssuer(env)
	hd := NewHandler(env, db, store, clients, issuer)
	return api.NewRouter(api.RouterConfig{
		Logger:         log,
		Tokens:         issuer,
		AllowedOrigins: env.CORSAllowedOrigins,
		RateLimitRPS:   env.RateLimitRPS,
		RateLimitBurst: env.RateLimitBurst,
	}, hd)
}

// NewCache connects to Redis when an address is configured.
func NewCache(env config.Env, log *zap.Logger) (cache.Cache, func()) {
	if env.RedisAddr == "" {
		return cache.Nop{}, func() {}
	}
	r, err := cache.NewRedis(cache.Config{Addr: env.RedisAddr, TTL: env.CacheTTL})
	if err != nil {
		log.Warn("cache disabled", zap.Error(err))
		return cache.Nop{}, func() {}
	}
	return r, func() { _ = r.Close() }
}
