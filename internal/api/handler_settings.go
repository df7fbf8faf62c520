package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartwaste-backend/internal/live"
	"smartwaste-backend/internal/model"
)

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Settings().Get())
}

// UpdateSettings handles POST /api/settings. Each member is validated on its
// own and invalid ones are dropped; the full settings are returned.
func (h *Handler) UpdateSettings(c *gin.Context) {
	fields, err := readFields(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	settings := h.state.Settings().Update(settingsPatch(fields))

	h.publish(live.TypeSettings, settings)
	// Severities depend on the critical threshold.
	h.publishBins()
	c.JSON(http.StatusOK, settings)
}

func settingsPatch(fields map[string]json.RawMessage) model.SettingsPatch {
	patch := model.SettingsPatch{
		CriticalFillPercent: numberField(fields, "criticalFillPercent"),
		RefreshSeconds:      numberField(fields, "refreshSeconds"),
		Theme:               stringField(fields, "theme"),
	}

	if depot := objectField(fields, "depot"); depot != nil {
		lat, lng := numberField(depot, "lat"), numberField(depot, "lng")
		if lat != nil && lng != nil {
			patch.Depot = &model.Position{Lat: *lat, Lng: *lng}
		}
	}
	return patch
}
