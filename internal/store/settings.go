package store

import (
	"math"

	"smartwaste-backend/internal/model"
)

type settingsStore struct{ s *State }

var _ SettingsStore = settingsStore{}

func (st settingsStore) Get() model.Settings {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()
	return st.s.settings
}

// Update merges the valid subset of patch into the settings and returns the
// result. Invalid fields are dropped, so the call never fails.
func (st settingsStore) Update(patch model.SettingsPatch) model.Settings {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	st.s.settings = MergeSettings(st.s.settings, patch)
	return st.s.settings
}

// MergeSettings applies the per-field rules: depot needs both coordinates
// finite, the critical threshold is clamped to [0,100], the refresh interval is
// floored at MinRefreshSeconds and the theme must be exactly light or dark.
func MergeSettings(cur model.Settings, patch model.SettingsPatch) model.Settings {
	if d := patch.Depot; d != nil && finite(d.Lat) && finite(d.Lng) {
		cur.Depot = *d
	}
	if v := patch.CriticalFillPercent; v != nil && finite(*v) {
		cur.CriticalFillPercent = int(math.Max(0, math.Min(100, math.Round(*v))))
	}
	if v := patch.RefreshSeconds; v != nil && finite(*v) {
		cur.RefreshSeconds = int(math.Max(model.MinRefreshSeconds, math.Min(math.MaxInt32, math.Round(*v))))
	}
	if t := patch.Theme; t != nil {
		switch model.Theme(*t) {
		case model.ThemeLight, model.ThemeDark:
			cur.Theme = model.Theme(*t)
		}
	}
	return cur
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
