package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/students/:id/bookmarks
func (h *Handler) ListBookmarks(c *gin.Context) {
	out, err := h.Engagement.Bookmarks(c.Request.Context(), rc(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "", out)
}

// GET /api/students/:id/bookmark?recipeId=
func (h *Handler) GetBookmark(c *gin.Context) {
	m, err := h.Engagement.Bookmark(c.Request.Context(), rc(c), c.Param("id"), c.Query("recipeId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "", m)
}

// POST /api/students/:id/bookmarks?recipeId=
func (h *Handler) AddBookmark(c *gin.Context) {
	m, err := h.Engagement.AddBookmark(c.Request.Context(), rc(c), c.Param("id"), c.Query("recipeId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "bookmark added", m)
}

// DELETE /api/students/:id/bookmarks?recipeId=
func (h *Handler) RemoveBookmark(c *gin.Context) {
	if err := h.Engagement.RemoveBookmark(c.Request.Context(), rc(c), c.Param("id"), c.Query("recipeId")); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondMessage(c, "bookmark removed")
}

// GET /api/students/:id/likes
func (h *Handler) ListLikes(c *gin.Context) {
	out, err := h.Engagement.Likes(c.Request.Context(), rc(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "", out)
}

// GET /api/students/:id/like?recipeId=
func (h *Handler) GetLike(c *gin.Context) {
	m, err := h.Engagement.Like(c.Request.Context(), rc(c), c.Param("id"), c.Query("recipeId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "", m)
}

// POST /api/students/:id/likes?recipeId=
func (h *Handler) AddLike(c *gin.Context) {
	m, err := h.Engagement.AddLike(c.Request.Context(), rc(c), c.Param("id"), c.Query("recipeId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "recipe liked", m)
}

// DELETE /api/students/:id/likes?recipeId=
func (h *Handler) RemoveLike(c *gin.Context) {
	if err := h.Engagement.RemoveLike(c.Request.Context(), rc(c), c.Param("id"), c.Query("recipeId")); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondMessage(c, "like removed")
}
