package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"madchef/internal/query"
)

// Resources with their own default page size.
const (
	PageRecipes      = "recipes"
	PageUsers        = "users"
	PageChefs        = "chefs"
	PageRatings      = "ratings"
	PageReviews      = "reviews"
	PageConsults     = "consults"
	PageReceipts     = "receipts"
	PageApplications = "applications"
)

var pageKeys = map[string]string{
	PageRecipes:      "RECIPES_PER_PAGE",
	PageUsers:        "USERS_PER_PAGE",
	PageChefs:        "CHEFS_PER_PAGE",
	PageRatings:      "RATINGS_PER_PAGE",
	PageReviews:      "REVIEWS_PER_PAGE",
	PageConsults:     "CONSULTS_PER_PAGE",
	PageReceipts:     "RECEIPTS_PER_PAGE",
	PageApplications: "APPLICATIONS_PER_PAGE",
}

type Env struct {
	AppAddr  string
	GinMode  string
	AppEnv   string
	LogLevel string

	DBDSN          string
	DBMaxOpenConns int
	DBDebug        bool

	RedisAddr string
	CacheTTL  time.Duration

	AccessTokenSecret      string
	RefreshTokenSecret     string
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration
	RefreshTokenCookieName string
	SecureCookies          bool

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	DefaultPageSize int
	MaxPageSize     int
	PageSizes       map[string]int

	FirebaseProjectID     string
	FirebaseAPIKey        string
	FirebaseJWKSURL       string
	StripeAPIKey          string
	StripeBaseURL         string
	CloudinaryCloudName   string
	CloudinaryAPIKey      string
	CloudinaryAPISecret   string
	CloudinaryBaseURL     string
	EmailVerifiedRedirect string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_DSN", "root:@tcp(127.0.0.1:3306)/mad_chef?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_DEBUG", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("ACCESS_TOKEN_TTL", "1h")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h")
	v.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "mad_chef_refresh")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("MAX_PAGE_SIZE", 100)
	v.SetDefault("FIREBASE_JWKS_URL", "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com")
	v.SetDefault("STRIPE_BASE_URL", "https://api.stripe.com")
	v.SetDefault("CLOUDINARY_BASE_URL", "https://api.cloudinary.com")
	v.SetDefault("EMAIL_VERIFIED_REDIRECT", "http://localhost:5173/profile/student/my-profile")
}

// LoadEnv reads .env (when present) and the process environment.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	env := FromViper(v)
	return env, env.Validate()
}

// FromViper builds an Env from an already populated viper instance.
func FromViper(v *viper.Viper) Env {
	env := Env{
		AppAddr:  strings.TrimSpace(v.GetString("APP_ADDR")),
		GinMode:  strings.TrimSpace(v.GetString("GIN_MODE")),
		AppEnv:   strings.TrimSpace(v.GetString("APP_ENV")),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBDSN:          v.GetString("DB_DSN"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		DBDebug:        v.GetBool("DB_DEBUG"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		CacheTTL:  v.GetDuration("CACHE_TTL"),

		AccessTokenSecret:      v.GetString("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:     v.GetString("REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:         v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:        v.GetDuration("REFRESH_TOKEN_TTL"),
		RefreshTokenCookieName: v.GetString("REFRESH_TOKEN_COOKIE_NAME"),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),

		DefaultPageSize: v.GetInt("DEFAULT_PAGE_SIZE"),
		MaxPageSize:     v.GetInt("MAX_PAGE_SIZE"),
		PageSizes:       map[string]int{},

		FirebaseProjectID:     v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseAPIKey:        v.GetString("FIREBASE_API_KEY"),
		FirebaseJWKSURL:       v.GetString("FIREBASE_JWKS_URL"),
		StripeAPIKey:          v.GetString("STRIPE_API_KEY"),
		StripeBaseURL:         v.GetString("STRIPE_BASE_URL"),
		CloudinaryCloudName:   v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:      v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:   v.GetString("CLOUDINARY_API_SECRET"),
		CloudinaryBaseURL:     v.GetString("CLOUDINARY_BASE_URL"),
		EmailVerifiedRedirect: v.GetString("EMAIL_VERIFIED_REDIRECT"),
	}
	env.SecureCookies = env.AppEnv != "dev" && env.AppEnv != "local"

	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			env.CORSAllowedOrigins = append(env.CORSAllowedOrigins, o)
		}
	}
	for resource, key := range pageKeys {
		if v.IsSet(key) {
			env.PageSizes[resource] = v.GetInt(key)
		}
	}
	return env
}

func (e Env) Validate() error {
	var errs []error
	if e.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if e.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if len(e.CORSAllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must list at least one origin"))
	}
	if e.DefaultPageSize < 1 {
		errs = append(errs, errors.New("DEFAULT_PAGE_SIZE must be positive"))
	}
	for resource, size := range e.PageSizes {
		if size < 1 {
			errs = append(errs, errors.New(pageKeys[resource]+" must be positive"))
		}
	}
	return errors.Join(errs...)
}

// Page returns the paging defaults for a resource, falling back to
// DEFAULT_PAGE_SIZE.
func (e Env) Page(resource string) query.PageConfig {
	size := e.DefaultPageSize
	if s, ok := e.PageSizes[resource]; ok && s > 0 {
		size = s
	}
	return query.PageConfig{DefaultPageSize: size, MaxPageSize: e.MaxPageSize}
}
