package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"smartwaste-backend/internal/live"
	"smartwaste-backend/internal/model"
	"smartwaste-backend/internal/route"
	"smartwaste-backend/internal/store"
)

// Publisher pushes state changes to live clients.
type Publisher interface {
	Publish(msgType string, data any)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	state     *store.State
	routes    *route.Service
	publisher Publisher
	db        *gorm.DB
	webpush   *webpush.Options
}

// NewHandler creates a new API handler. db, publisher and webpushOptions may be
// nil, which disables the subscription registry, the live feed and push keys.
func NewHandler(state *store.State, db *gorm.DB, publisher Publisher, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		state:     state,
		routes:    route.NewService(state.Bins(), state.Settings()),
		publisher: publisher,
		db:        db,
		webpush:   webpushOptions,
	}
}

func (h *Handler) publish(msgType string, data any) {
	if h.publisher != nil {
		h.publisher.Publish(msgType, data)
	}
}

func (h *Handler) publishBins() {
	h.publish(live.TypeBins, h.binViews())
}

func (h *Handler) critical() int {
	return h.state.Settings().Get().CriticalFillPercent
}

func (h *Handler) binViews() []model.BinView {
	return model.ViewBins(h.state.Bins().ListBins(), h.critical())
}

// abortWithStoreError maps store errors onto HTTP statuses.
func abortWithStoreError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, store.ErrAlreadyCompleted):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
