package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/services"
)

// GET /api/admins/:adminId
func (h *Handler) GetAdmin(c *gin.Context) {
	a, err := h.Admins.Get(c.Request.Context(), rc(c), c.Param("adminId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "", a)
}

// POST /api/newsletter
func (h *Handler) Subscribe(c *gin.Context) {
	var body services.SubscribeInput
	if !BindJSONOrError(c, &body) {
		return
	}
	m, err := h.Newsletter.Subscribe(c.Request.Context(), rc(c), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "subscribed", m)
}
