package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"smartwaste-backend/internal/route"
)

// GetRoute handles GET /api/route. The optional threshold query selects bins
// at or above that fill percentage; it defaults to 80.
func (h *Handler) GetRoute(c *gin.Context) {
	var threshold *int
	if raw := strings.TrimSpace(c.Query("threshold")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "threshold must be a number"})
			return
		}
		t := route.ThresholdFromFloat(v)
		threshold = &t
	}

	c.JSON(http.StatusOK, h.routes.Plan(threshold))
}

// GetSummary handles GET /api/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Summary())
}
