package route

import (
	"math"

	"smartwaste-backend/internal/model"
)

// DefaultThreshold is the fill percentage used when a caller does not pick one.
const DefaultThreshold = 80

// MaxThreshold lies above every possible fill percentage and selects no bin.
const MaxThreshold = 101

// ThresholdFromFloat rounds a requested threshold and bounds it to
// [0, MaxThreshold] so any finite input maps onto a meaningful selection.
func ThresholdFromFloat(v float64) int {
	return int(math.Max(0, math.Min(MaxThreshold, math.Round(v))))
}

// Plan builds a collection tour with a greedy nearest-neighbor heuristic.
//
// Bins at or above threshold are visited starting from the depot, always
// moving to the closest remaining bin, then returning to the depot. Distances
// are Euclidean in raw degrees. Ties go to the bin that appears first in the
// input, so identical input always yields the identical tour. The result is not
// an optimal tour.
func Plan(bins []model.Bin, threshold int, depot model.Position) model.RouteResult {
	remaining := make([]model.Bin, 0, len(bins))
	for _, b := range bins {
		if b.FillPercent() >= threshold {
			remaining = append(remaining, b)
		}
	}

	stops := make([]string, 0, len(remaining)+2)
	stops = append(stops, model.DepotMarker)

	current := depot
	total := 0.0
	for len(remaining) > 0 {
		bestIdx := 0
		bestDistance := math.Inf(1)
		for i, b := range remaining {
			// Strict comparison keeps the earliest bin on ties.
			if d := Distance(current, b.Position()); d < bestDistance {
				bestDistance = d
				bestIdx = i
			}
		}

		next := remaining[bestIdx]
		total += bestDistance
		stops = append(stops, next.ID)
		current = next.Position()
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	total += Distance(current, depot)
	stops = append(stops, model.DepotMarker)

	return model.RouteResult{
		Threshold:     threshold,
		Stops:         stops,
		TotalDistance: total,
	}
}

// Distance is the straight-line distance between two points in degree units.
func Distance(a, b model.Position) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
}
