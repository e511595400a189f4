package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"madchef/internal/domain"
	h "madchef/internal/http/handlers"
	"madchef/internal/http/middleware"
)

// RouterConfig carries what the router needs besides the handlers.
type RouterConfig struct {
	Logger         *zap.Logger
	Tokens         middleware.TokenParser
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(cfg RouterConfig, hd *h.Handler) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(cfg.Logger),
		middleware.AccessLog(),
		gin.Recovery(),
		middleware.Metrics(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		cfg.Logger.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      stdhttp.StatusText(stdhttp.StatusNotFound),
			"code":       "route_not_found",
			"message":    "route not found",
			"request_id": middleware.GetRequestID(c),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.Auth(cfg.Tokens)
	optional := middleware.OptionalAuth(cfg.Tokens)
	admin := middleware.RequireRoles(domain.RoleAdmin)
	student := middleware.RequireRoles(domain.RoleStudent)
	chef := middleware.RequireRoles(domain.RoleChef)

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.GET("/db-check", hd.DBCheck)

		// Auth
		authGroup := api.Group("/auth")
		authGroup.POST("", hd.Authenticate)
		authGroup.GET("/refresh-token", hd.RefreshToken)
		authGroup.DELETE("/logout", auth, hd.Logout)

		// Students
		students := api.Group("/students")
		students.GET("/verify-email", hd.VerifyEmail)
		students.GET("", auth, admin, hd.ListStudents)
		students.GET("/:id", auth, hd.GetStudent)
		students.PATCH("/me", auth, student, hd.UpdateMe)
		students.PATCH("/me/package", auth, student, hd.UpgradePackage)
		students.POST("/me/profile-picture", auth, student, hd.UploadProfilePicture)
		mountStudentRecords(students.Group("/:id", auth), hd)

		// Chefs
		chefs := api.Group("/chefs")
		chefs.GET("", hd.ListChefs)
		chefs.GET("/:chefId", hd.GetChef)
		chefs.GET("/:chefId/reviews", hd.ListChefReviews)
		chefs.POST("/:chefId/reviews", auth, student, hd.AddChefReview)

		// Recipes
		recipes := api.Group("/recipes")
		recipes.GET("", optional, hd.SearchRecipes)
		recipes.GET("/:recipeId", optional, hd.GetRecipe)
		recipes.POST("", auth, chef, hd.CreateRecipe)
		recipes.PATCH("/:recipeId", auth, chef, hd.EditRecipe)
		recipes.PATCH("/:recipeId/status", auth, admin, hd.SetRecipeStatus)
		recipes.DELETE("/:recipeId", auth, hd.DeleteRecipe)
		recipes.GET("/:recipeId/ratings", hd.ListRecipeRatings)
		recipes.POST("/:recipeId/ratings", auth, student, hd.RateRecipe)

		// Consults
		consults := api.Group("/consults", auth)
		consults.GET("", hd.ListConsults)
		consults.POST("", student, hd.BookConsult)
		consults.PATCH("/:consultId/cancel", hd.CancelConsult)
		consults.PATCH("/:consultId/status", chef, hd.SetConsultStatus)
		consults.DELETE("/:consultId", hd.DeleteConsult)

		// Payments
		payments := api.Group("/payments", auth)
		payments.POST("/create-payment-intent", hd.CreatePaymentIntent)
		payments.GET("/receipts", hd.ListReceipts)
		payments.POST("/receipts", student, hd.SaveReceipt)
		payments.GET("/receipts/:id/pdf", hd.ReceiptPDF)
		payments.DELETE("/receipts/:id", admin, hd.DeleteReceipt)

		// Role promotion
		roles := api.Group("/roles", auth)
		roles.POST("/apply", student, hd.ApplyForRole)
		roles.GET("/applied", hd.AppliedForRole)
		roles.GET("/applications", admin, hd.ListApplications)
		roles.GET("/applications/:id", hd.GetApplication)
		roles.PATCH("/applications/:id", admin, hd.DecideApplication)
		roles.DELETE("/applications/:id", hd.DeleteApplication)

		api.GET("/admins/:adminId", auth, admin, hd.GetAdmin)
		api.POST("/newsletter", optional, hd.Subscribe)
	}

	return r
}

// mountStudentRecords mounts a student's bookmarks, likes, ratings and
// reviews under /students/:id.
func mountStudentRecords(g *gin.RouterGroup, hd *h.Handler) {
	g.GET("/bookmarks", hd.ListBookmarks)
	g.GET("/bookmark", hd.GetBookmark)
	g.POST("/bookmarks", hd.AddBookmark)
	g.DELETE("/bookmarks", hd.RemoveBookmark)

	g.GET("/likes", hd.ListLikes)
	g.GET("/like", hd.GetLike)
	g.POST("/likes", hd.AddLike)
	g.DELETE("/likes", hd.RemoveLike)

	g.GET("/ratings", hd.ListStudentRatings)
	g.POST("/ratings", hd.AddStudentRating)
	g.PATCH("/ratings", hd.EditStudentRating)
	g.DELETE("/ratings", hd.RemoveStudentRating)

	g.GET("/reviews", hd.ListStudentReviews)
	g.POST("/reviews", hd.AddStudentReview)
	g.PATCH("/reviews", hd.EditStudentReview)
	g.DELETE("/reviews", hd.RemoveStudentReview)
}
