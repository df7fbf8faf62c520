package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartwaste-backend/internal/model"
)

// ListBins handles GET /api/bins.
func (h *Handler) ListBins(c *gin.Context) {
	c.JSON(http.StatusOK, h.binViews())
}

// GetBin handles GET /api/bins/:id.
func (h *Handler) GetBin(c *gin.Context) {
	bin, err := h.state.Bins().GetBin(c.Param("id"))
	if err != nil {
		abortWithStoreError(c, err, "Bin not found")
		return
	}
	c.JSON(http.StatusOK, bin.View(h.critical()))
}

// UpdateBin handles POST /api/bins/:id. Only numeric weight, lat and lng
// members are applied; anything else in the body is ignored.
func (h *Handler) UpdateBin(c *gin.Context) {
	fields, err := readFields(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bin, err := h.state.Bins().UpdateBin(c.Param("id"), model.BinPatch{
		Weight: numberField(fields, "weight"),
		Lat:    numberField(fields, "lat"),
		Lng:    numberField(fields, "lng"),
	})
	if err != nil {
		abortWithStoreError(c, err, "Bin not found")
		return
	}

	h.publishBins()
	c.JSON(http.StatusOK, bin.View(h.critical()))
}
