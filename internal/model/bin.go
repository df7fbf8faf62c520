package model

import "math"

const (
	// MaxCapacityKg is the weight at which a bin reads as 100% full.
	MaxCapacityKg = 25.0

	// WarningFillPercent is the fixed lower bound of the warning band.
	WarningFillPercent = 50
)

// Bin is a single waste bin as reported by its load sensor.
type Bin struct {
	ID     string  `json:"id" gorm:"primaryKey;size:64"`
	Lat    float64 `json:"lat" gorm:"not null"`
	Lng    float64 `json:"lng" gorm:"not null"`
	Weight float64 `json:"weight" gorm:"not null"`
	Seq    int     `json:"-" gorm:"not null"` // Insertion order, kept when persisted
}

// BinPatch carries the optional fields of a bin update. Nil fields are left untouched.
type BinPatch struct {
	Weight *float64
	Lat    *float64
	Lng    *float64
}

// Severity classifies a fill percentage.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ClampWeight bounds w to [0, MaxCapacityKg].
func ClampWeight(w float64) float64 {
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	if w > MaxCapacityKg {
		return MaxCapacityKg
	}
	return w
}

// FillPercent normalizes a weight to a rounded 0..100 percentage of capacity.
func FillPercent(weight float64) int {
	p := math.Round(weight / MaxCapacityKg * 100)
	if p > 100 {
		return 100
	}
	if p < 0 || math.IsNaN(p) {
		return 0
	}
	return int(p)
}

// SeverityFor classifies fill against the fixed warning band and the configurable
// critical threshold. The critical check wins when the threshold is set below 50.
func SeverityFor(fill, criticalPercent int) Severity {
	switch {
	case fill >= criticalPercent:
		return SeverityCritical
	case fill >= WarningFillPercent:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}

// FillPercent is recomputed from the current weight on every call.
func (b Bin) FillPercent() int {
	return FillPercent(b.Weight)
}

// Severity classifies the bin against the given critical threshold.
func (b Bin) Severity(criticalPercent int) Severity {
	return SeverityFor(b.FillPercent(), criticalPercent)
}

// Position returns the bin's coordinates.
func (b Bin) Position() Position {
	return Position{Lat: b.Lat, Lng: b.Lng}
}

// BinView is a bin with its derived fill and severity, as served to clients.
type BinView struct {
	Bin
	FillPercent int      `json:"fillPercent"`
	Severity    Severity `json:"severity"`
}

// ViewBins derives the client view of each bin against the critical threshold.
func ViewBins(bins []Bin, criticalPercent int) []BinView {
	views := make([]BinView, len(bins))
	for i, b := range bins {
		views[i] = b.View(criticalPercent)
	}
	return views
}

// View derives the client view of the bin.
func (b Bin) View(criticalPercent int) BinView {
	fill := b.FillPercent()
	return BinView{Bin: b, FillPercent: fill, Severity: SeverityFor(fill, criticalPercent)}
}
