package route

import (
	"log"

	"smartwaste-backend/internal/model"
	"smartwaste-backend/internal/store"
)

// Service plans routes over the live bin state.
type Service struct {
	bins     store.BinStore
	settings store.SettingsStore
}

// NewService creates a route service reading from the given stores.
func NewService(bins store.BinStore, settings store.SettingsStore) *Service {
	return &Service{bins: bins, settings: settings}
}

// Plan computes a fresh route over a copy of the current bins, using the
// configured depot. A nil threshold selects DefaultThreshold.
func (s *Service) Plan(threshold *int) model.RouteResult {
	t := DefaultThreshold
	if threshold != nil {
		t = *threshold
	}

	bins := s.bins.ListBins()
	depot := s.settings.Get().Depot
	result := Plan(bins, t, depot)

	log.Printf("Planned route over %d bins at >=%d%%: %d stops, distance %.4f",
		len(bins), t, len(result.Stops)-2, result.TotalDistance)
	return result
}
