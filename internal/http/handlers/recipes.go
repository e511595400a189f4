package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/domain"
	"madchef/internal/services"
)

// GET /api/recipes?data_filter=
func (h *Handler) SearchRecipes(c *gin.Context) {
	f, err := services.ParseRecipeFilter(c.Query("data_filter"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	res, err := h.Recipes.Search(c.Request.Context(), rc(c), listParams(c), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// GET /api/recipes/:recipeId
func (h *Handler) GetRecipe(c *gin.Context) {
	rec, projection, err := h.Recipes.Get(c.Request.Context(), rc(c), c.Param("recipeId"), c.Query("include"), c.Query("exclude"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondShaped(c, rec, projection)
}

// POST /api/recipes
func (h *Handler) CreateRecipe(c *gin.Context) {
	var body services.RecipeInput
	if !BindJSONOrError(c, &body) {
		return
	}
	rec, err := h.Recipes.Create(c.Request.Context(), rc(c), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "recipe created", rec)
}

// PATCH /api/recipes/:recipeId
func (h *Handler) EditRecipe(c *gin.Context) {
	var body services.RecipePatch
	if !BindJSONOrError(c, &body) {
		return
	}
	rec, err := h.Recipes.Edit(c.Request.Context(), rc(c), c.Param("recipeId"), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "recipe updated", rec)
}

// PATCH /api/recipes/:recipeId/status
func (h *Handler) SetRecipeStatus(c *gin.Context) {
	status, ok := bindStatus(c)
	if !ok {
		return
	}
	rec, err := h.Recipes.SetStatus(c.Request.Context(), rc(c), c.Param("recipeId"), domain.RecipeStatus(status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "recipe status updated", rec)
}

// DELETE /api/recipes/:recipeId
func (h *Handler) DeleteRecipe(c *gin.Context) {
	if err := h.Recipes.Delete(c.Request.Context(), rc(c), c.Param("recipeId")); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondMessage(c, "recipe deleted")
}

// GET /api/recipes/:recipeId/ratings
func (h *Handler) ListRecipeRatings(c *gin.Context) {
	res, err := h.Recipes.Ratings(c.Request.Context(), c.Param("recipeId"), listParams(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// POST /api/recipes/:recipeId/ratings
func (h *Handler) RateRecipe(c *gin.Context) {
	var body services.RatingInput
	if !BindJSONOrError(c, &body) {
		return
	}
	m, err := h.Recipes.Rate(c.Request.Context(), rc(c), c.Param("recipeId"), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "rating added", m)
}
