package model

// Theme is the dashboard color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	// MinRefreshSeconds is the lowest accepted dashboard polling interval.
	MinRefreshSeconds = 5

	DefaultCriticalFillPercent = 80
	DefaultRefreshSeconds      = 30
)

// Position is a geographic point in degrees.
type Position struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Settings holds the tunable collection policy.
type Settings struct {
	Depot               Position `json:"depot"`
	CriticalFillPercent int      `json:"criticalFillPercent"`
	RefreshSeconds      int      `json:"refreshSeconds"`
	Theme               Theme    `json:"theme"`
}

// DefaultSettings returns the policy the service starts with before any overrides.
func DefaultSettings() Settings {
	return Settings{
		Depot:               Position{Lat: 11.0305, Lng: 78.0305},
		CriticalFillPercent: DefaultCriticalFillPercent,
		RefreshSeconds:      DefaultRefreshSeconds,
		Theme:               ThemeLight,
	}
}

// SettingsPatch is a sparse settings update. A nil field was either absent from
// the request or failed to decode, and leaves the current value in place.
type SettingsPatch struct {
	Depot               *Position
	CriticalFillPercent *float64
	RefreshSeconds      *float64
	Theme               *string
}

// SettingsRecord is the persisted form of the singleton settings row.
type SettingsRecord struct {
	ID                  int64   `gorm:"primaryKey"`
	DepotLat            float64 `gorm:"not null"`
	DepotLng            float64 `gorm:"not null"`
	CriticalFillPercent int     `gorm:"not null"`
	RefreshSeconds      int     `gorm:"not null"`
	Theme               string  `gorm:"size:16;not null"`
}

// ToRecord flattens settings for storage.
func (s Settings) ToRecord() SettingsRecord {
	return SettingsRecord{
		ID:                  1,
		DepotLat:            s.Depot.Lat,
		DepotLng:            s.Depot.Lng,
		CriticalFillPercent: s.CriticalFillPercent,
		RefreshSeconds:      s.RefreshSeconds,
		Theme:               string(s.Theme),
	}
}

// Patch turns a stored row back into an update, so restored values go through
// the same validation as any other settings change.
func (r SettingsRecord) Patch() SettingsPatch {
	critical := float64(r.CriticalFillPercent)
	refresh := float64(r.RefreshSeconds)
	theme := r.Theme
	return SettingsPatch{
		Depot:               &Position{Lat: r.DepotLat, Lng: r.DepotLng},
		CriticalFillPercent: &critical,
		RefreshSeconds:      &refresh,
		Theme:               &theme,
	}
}
