package model

// DepotMarker is the stop identifier used for the depot at both ends of a route.
const DepotMarker = "DEPOT"

// RouteResult is an ordered collection tour. It is derived on demand and never stored.
type RouteResult struct {
	Threshold     int      `json:"threshold"`
	Stops         []string `json:"stops"`
	TotalDistance float64  `json:"totalDistance"`
}

// Summary aggregates the dashboard KPIs.
type Summary struct {
	TotalBins          int            `json:"totalBins"`
	AverageFillPercent int            `json:"averageFillPercent"`
	CriticalBins       int            `json:"criticalBins"`
	NextPending        *ScheduleEntry `json:"nextPending"`
}
