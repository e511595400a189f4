package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/services"
)

// GET /api/students/:id/ratings
func (h *Handler) ListStudentRatings(c *gin.Context) {
	res, err := h.Feedback.StudentRatings(c.Request.Context(), rc(c), c.Param("id"), listParams(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// POST /api/students/:id/ratings
func (h *Handler) AddStudentRating(c *gin.Context) {
	var body services.StudentRatingInput
	if !BindJSONOrError(c, &body) {
		return
	}
	m, err := h.Feedback.AddRating(c.Request.Context(), rc(c), c.Param("id"), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "rating added", m)
}

// PATCH /api/students/:id/ratings?docId=
func (h *Handler) EditStudentRating(c *gin.Context) {
	var body services.FeedbackPatch
	if !BindJSONOrError(c, &body) {
		return
	}
	m, err := h.Feedback.EditRating(c.Request.Context(), rc(c), c.Param("id"), c.Query("docId"), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "rating updated", m)
}

// DELETE /api/students/:id/ratings?docId=
func (h *Handler) RemoveStudentRating(c *gin.Context) {
	if err := h.Feedback.RemoveRating(c.Request.Context(), rc(c), c.Param("id"), c.Query("docId")); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondMessage(c, "rating removed")
}

// GET /api/students/:id/reviews
func (h *Handler) ListStudentReviews(c *gin.Context) {
	res, err := h.Feedback.StudentReviews(c.Request.Context(), rc(c), c.Param("id"), listParams(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// POST /api/students/:id/reviews
func (h *Handler) AddStudentReview(c *gin.Context) {
	var body services.StudentReviewInput
	if !BindJSONOrError(c, &body) {
		return
	}
	m, err := h.Feedback.AddStudentReview(c.Request.Context(), rc(c), c.Param("id"), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "review added", m)
}

// PATCH /api/students/:id/reviews?docId=
func (h *Handler) EditStudentReview(c *gin.Context) {
	var body services.FeedbackPatch
	if !BindJSONOrError(c, &body) {
		return
	}
	m, err := h.Feedback.EditReview(c.Request.Context(), rc(c), c.Param("id"), c.Query("docId"), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "review updated", m)
}

// DELETE /api/students/:id/reviews?docId=
func (h *Handler) RemoveStudentReview(c *gin.Context) {
	if err := h.Feedback.RemoveReview(c.Request.Context(), rc(c), c.Param("id"), c.Query("docId")); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondMessage(c, "review removed")
}
