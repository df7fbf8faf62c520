package store

import "smartwaste-backend/internal/model"

// DefaultSeed is the demo fleet the service starts with when no seed is configured.
// Schedules are dated today.
func DefaultSeed(today string) Snapshot {
	return Snapshot{
		Bins: []model.Bin{
			{ID: "Bin-1", Lat: 11.030, Lng: 78.030, Weight: 5},
			{ID: "Bin-2", Lat: 11.032, Lng: 78.033, Weight: 12},
			{ID: "Bin-3", Lat: 11.028, Lng: 78.028, Weight: 20},
			{ID: "Bin-4", Lat: 11.035, Lng: 78.035, Weight: 8},
			{ID: "Bin-5", Lat: 11.027, Lng: 78.032, Weight: 3},
		},
		Schedules: []model.ScheduleEntry{
			{ID: "SCH-1001", BinID: "Bin-3", Window: "09:00–11:00", Date: today, Status: model.StatusScheduled},
			{ID: "SCH-1002", BinID: "Bin-2", Window: "11:00–13:00", Date: today, Status: model.StatusScheduled},
			{ID: "SCH-1003", BinID: "Bin-4", Window: "14:00–16:00", Date: today, Status: model.StatusScheduled},
		},
		Settings: model.DefaultSettings(),
	}
}
