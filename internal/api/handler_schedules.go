package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartwaste-backend/internal/live"
)

// ListSchedules handles GET /api/schedules.
func (h *Handler) ListSchedules(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Schedules().ListSchedules())
}

// CompleteSchedule handles POST /api/schedules/:id/complete. Completing a visit
// empties its bin.
func (h *Handler) CompleteSchedule(c *gin.Context) {
	entry, err := h.state.Schedules().Complete(c.Param("id"))
	if err != nil {
		abortWithStoreError(c, err, "Schedule not found")
		return
	}

	log.Printf("Schedule %s completed; bin %s emptied", entry.ID, entry.BinID)
	h.publish(live.TypeSchedule, entry)
	h.publishBins()
	c.JSON(http.StatusOK, entry)
}
