package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/domain"
	"madchef/internal/services"
)

// GET /api/consults?status=
func (h *Handler) ListConsults(c *gin.Context) {
	res, err := h.Consults.List(c.Request.Context(), rc(c), listParams(c), c.Query("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// POST /api/consults
func (h *Handler) BookConsult(c *gin.Context) {
	var body services.ConsultInput
	if !BindJSONOrError(c, &body) {
		return
	}
	m, err := h.Consults.Book(c.Request.Context(), rc(c), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "consult booked", m)
}

// PATCH /api/consults/:consultId/cancel
func (h *Handler) CancelConsult(c *gin.Context) {
	m, err := h.Consults.Cancel(c.Request.Context(), rc(c), c.Param("consultId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "consult cancelled", m)
}

// PATCH /api/consults/:consultId/status
func (h *Handler) SetConsultStatus(c *gin.Context) {
	status, ok := bindStatus(c)
	if !ok {
		return
	}
	m, err := h.Consults.SetStatus(c.Request.Context(), rc(c), c.Param("consultId"), domain.ConsultStatus(status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "consult status updated", m)
}

// DELETE /api/consults/:consultId
func (h *Handler) DeleteConsult(c *gin.Context) {
	if err := h.Consults.Delete(c.Request.Context(), rc(c), c.Param("consultId")); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondMessage(c, "consult deleted")
}
