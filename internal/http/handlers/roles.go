package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/domain"
)

// POST /api/roles/apply?role=
func (h *Handler) ApplyForRole(c *gin.Context) {
	m, err := h.Roles.Apply(c.Request.Context(), rc(c), c.Query("role"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusCreated, "application submitted", m)
}

// GET /api/roles/applied?role=
func (h *Handler) AppliedForRole(c *gin.Context) {
	applied, err := h.Roles.Applied(c.Request.Context(), rc(c), c.Query("role"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "", gin.H{"applied": applied})
}

// GET /api/roles/applications?status=&role=
func (h *Handler) ListApplications(c *gin.Context) {
	res, err := h.Roles.List(c.Request.Context(), rc(c), listParams(c), c.Query("status"), c.Query("role"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// GET /api/roles/applications/:id
func (h *Handler) GetApplication(c *gin.Context) {
	m, err := h.Roles.Get(c.Request.Context(), rc(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "", m)
}

// PATCH /api/roles/applications/:id
func (h *Handler) DecideApplication(c *gin.Context) {
	status, ok := bindStatus(c)
	if !ok {
		return
	}
	m, err := h.Roles.Decide(c.Request.Context(), rc(c), c.Param("id"), domain.ApplicationStatus(status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "application "+string(m.Status), m)
}

// DELETE /api/roles/applications/:id
func (h *Handler) DeleteApplication(c *gin.Context) {
	if err := h.Roles.Delete(c.Request.Context(), rc(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	respondMessage(c, "application deleted")
}
