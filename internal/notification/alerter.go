package notification

import (
	"context"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"smartwaste-backend/internal/model"
	"smartwaste-backend/internal/simulator"
	"smartwaste-backend/internal/store"
)

// Alerter watches simulator ticks for bins crossing the critical threshold.
type Alerter struct {
	settings   store.SettingsStore
	dispatcher Dispatcher
	recent     *cache.Cache
}

// NewAlerter creates an alerter. A bin alerted within cooldown is not alerted
// again. A nil dispatcher only logs.
func NewAlerter(settings store.SettingsStore, dispatcher Dispatcher, cooldown time.Duration) *Alerter {
	return &Alerter{
		settings:   settings,
		dispatcher: dispatcher,
		recent:     cache.New(cooldown, 2*cooldown),
	}
}

// OnTick is a simulator hook.
func (a *Alerter) OnTick(_ context.Context, tick simulator.Tick) {
	a.Evaluate(tick.Before, tick.After)
}

// Evaluate dispatches an alert for every bin that is critical after the change
// but was not before it, and returns them.
func (a *Alerter) Evaluate(before, after []model.Bin) []Alert {
	threshold := a.settings.Get().CriticalFillPercent

	prev := make(map[string]int, len(before))
	for _, b := range before {
		prev[b.ID] = b.FillPercent()
	}

	var alerts []Alert
	for _, b := range after {
		fill := b.FillPercent()
		if fill < threshold {
			continue
		}
		if was, ok := prev[b.ID]; ok && was >= threshold {
			continue
		}
		if _, found := a.recent.Get(b.ID); found {
			continue
		}
		a.recent.SetDefault(b.ID, fill)

		alert := Alert{BinID: b.ID, FillPercent: fill, Threshold: threshold}
		alerts = append(alerts, alert)
		log.Printf("Bin %s reached %d%% (critical at %d%%)", b.ID, fill, threshold)
		if a.dispatcher != nil {
			a.dispatcher.Dispatch(alert)
		}
	}
	return alerts
}
