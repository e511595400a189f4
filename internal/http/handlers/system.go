package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/config"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "mad chef api is running"})
}

func (h *Handler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database is not connected", "")
		return
	}
	if err := config.PingDB(c.Request.Context(), h.DB); err != nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database did not answer", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection ok"})
}
