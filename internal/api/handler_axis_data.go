package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultWindowMinutes = 15

// GetAxisDataWindow handles GET /api/machines/:machine_id/axis_data.
// It returns the machine's axis samples from the last `minutes` minutes
// (default 15), optionally filtered by one or more `axis_name` parameters.
// An empty window is a 404: for this bounded query, no rows means no data
// existed for the given parameters.
func (h *Handler) GetAxisDataWindow(c *gin.Context) {
	machineID, err := strconv.ParseInt(c.Param("machine_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid machine ID"})
		return
	}

	minutes := defaultWindowMinutes
	if raw := c.Query("minutes"); raw != "" {
		minutes, err = strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid minutes parameter"})
			return
		}
	}

	axisNames := c.QueryArray("axis_name")
	since := time.Now().UTC().Add(-time.Duration(minutes) * time.Minute)

	rows, err := h.store.AxisDataWindow(c.Request.Context(), machineID, axisNames, since)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve axis data"})
		return
	}

	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No data found for the given parameters"})
		return
	}

	c.JSON(http.StatusOK, rows)
}
