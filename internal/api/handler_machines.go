package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMachines handles GET /api/machines.
func (h *Handler) GetMachines(c *gin.Context) {
	machines, err := h.store.LatestMachines(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machines"})
		return
	}
	c.JSON(http.StatusOK, machines)
}
