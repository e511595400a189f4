package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/services"
)

// GET /api/chefs
func (h *Handler) ListChefs(c *gin.Context) {
	res, err := h.Chefs.List(c.Request.Context(), listParams(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// GET /api/chefs/:chefId
func (h *Handler) GetChef(c *gin.Context) {
	chef, projection, err := h.Chefs.Get(c.Request.Context(), c.Param("chefId"), c.Query("include"), c.Query("exclude"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondShaped(c, chef, projection)
}

// GET /api/chefs/:chefId/reviews
func (h *Handler) ListChefReviews(c *gin.Context) {
	res, err := h.Chefs.Reviews(c.Request.Context(), c.Param("chefId"), listParams(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// POST /api/chefs/:chefId/reviews
func (h *Handler) AddChefReview(c *gin.Context) {
	var body services.RatingInput
	if !BindJSONOrError(c, &body) {
		return
	}
	m, err := h.Chefs.AddReview(c.Request.Context(), rc(c), c.Param("chefId"), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "review added", m)
}
