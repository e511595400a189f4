package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"go.uber.org/zap"

	"madchef/internal/cache"
	"madchef/internal/config"
)

func testEnv() config.Env {
	return config.Env{
		AccessTokenSecret:      "access",
		RefreshTokenSecret:     "refresh",
		AccessTokenTTL:         time.Hour,
		RefreshTokenTTL:        24 * time.Hour,
		RefreshTokenCookieName: "mad_chef_refresh",
		DefaultPageSize:        10,
		MaxPageSize:            100,
		CORSAllowedOrigins:     []string{"http://localhost:5173"},
		PageSizes:              map[string]int{config.PageChefs: 6},
		StripeBaseURL:          "http://127.0.0.1:1",
		CloudinaryBaseURL:      "http://127.0.0.1:1",
		EmailVerifiedRedirect:  "http://localhost:5173/profile",
	}
}

func testDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, _, err := sqlmock.New()
	require.NoError(t, err)
	bdb := bun.NewDB(sqldb, mysqldialect.New())
	t.Cleanup(func() { _ = bdb.Close() })
	return bdb
}

func TestNewHandlerWiresEveryService(t *testing.T) {
	env := testEnv()
	hd := NewHandler(env, testDB(t), nil, Clients{}, NewIssuer(env))

	assert.NotNil(t, hd.Auth)
	assert.NotNil(t, hd.Students)
	assert.NotNil(t, hd.Engagement)
	assert.NotNil(t, hd.Feedback)
	assert.NotNil(t, hd.Chefs)
	assert.NotNil(t, hd.Recipes)
	assert.NotNil(t, hd.Consults)
	assert.NotNil(t, hd.Payments)
	assert.NotNil(t, hd.Roles)
	assert.NotNil(t, hd.Admins)
	assert.NotNil(t, hd.Newsletter)

	assert.Equal(t, 6, hd.Chefs.Page.DefaultPageSize)
	assert.Equal(t, 10, hd.Recipes.Page.DefaultPageSize)
	assert.Equal(t, 100, hd.Recipes.Page.MaxPageSize)
	assert.IsType(t, cache.Nop{}, hd.Recipes.Cache)
	assert.Same(t, hd.Feedback, hd.Chefs.Feedback)
	assert.Equal(t, "mad_chef_refresh", hd.Cookie.Name)
	assert.Equal(t, env.EmailVerifiedRedirect, hd.EmailVerifiedRedirect)
}

func TestNewEngineServesHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := NewEngine(testEnv(), zap.NewNop(), testDB(t), cache.Nop{}, Clients{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewCacheWithoutAddrIsNop(t *testing.T) {
	c, closeFn := NewCache(testEnv(), zap.NewNop())
	defer closeFn()
	assert.IsType(t, cache.Nop{}, c)
}

func TestNewEngineWithoutOriginsDoesNotPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := testEnv()
	env.CORSAllowedOrigins = nil

	assert.NotPanics(t, func() {
		NewEngine(env, zap.NewNop(), testDB(t), cache.Nop{}, Clients{})
	})
}
