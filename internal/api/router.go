package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"smartwaste-backend/config"
	"smartwaste-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router. responseCache backs the
// GET response cache and is flushed after every successful write; liveFeed,
// when set, is mounted at /ws.
func NewRouter(h *Handler, cfg config.ServerConfig, responseCache *mw.ResponseCache, liveFeed gin.HandlerFunc) *gin.Engine {
	r := gin.Default()
	r.Use(mw.RequestID(), mw.CORS(cfg.AllowedOrigins))

	if responseCache == nil {
		responseCache = mw.NewResponseCache(cfg.CacheTTL)
	}
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	caching := responseCache.Handler()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if liveFeed != nil {
		r.GET("/ws", liveFeed)
	}

	api := r.Group("/api")
	api.Use(rateLimiter, responseCache.Invalidate())
	{
		api.GET("/bins", caching, h.ListBins)
		api.GET("/bins/:id", caching, h.GetBin)
		api.POST("/bins/:id", h.UpdateBin)

		api.GET("/schedules", caching, h.ListSchedules)
		api.POST("/schedules/:id/complete", h.CompleteSchedule)

		api.GET("/settings", caching, h.GetSettings)
		api.POST("/settings", h.UpdateSettings)

		// Routes are always planned over the live state.
		api.GET("/route", h.GetRoute)
		api.GET("/summary", caching, h.GetSummary)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	if cfg.StaticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))
	}

	return r
}
