package store

import (
	"fmt"

	"smartwaste-backend/internal/model"
)

type scheduleStore struct{ s *State }

var _ ScheduleStore = scheduleStore{}

func (sc scheduleStore) ListSchedules() []model.ScheduleEntry {
	sc.s.mu.RLock()
	defer sc.s.mu.RUnlock()
	return sc.s.copySchedules()
}

// Complete marks the visit completed and empties its bin in the same critical
// section. A second call reports ErrAlreadyCompleted and changes nothing.
// Other pending visits for the same bin are left as they are.
func (sc scheduleStore) Complete(id string) (model.ScheduleEntry, error) {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()

	i, ok := sc.s.schedIdx[id]
	if !ok {
		return model.ScheduleEntry{}, fmt.Errorf("schedule %q: %w", id, ErrNotFound)
	}
	entry := &sc.s.schedules[i]
	if entry.Completed() {
		return *entry, fmt.Errorf("schedule %q: %w", id, ErrAlreadyCompleted)
	}

	entry.Status = model.StatusCompleted
	// A visit may point at a bin that no longer exists in the seed; there is
	// nothing to empty then.
	if bin, err := sc.s.binLocked(entry.BinID); err == nil {
		bin.Weight = 0
	}
	return *entry, nil
}

func (sc scheduleStore) NextPending() (model.ScheduleEntry, bool) {
	sc.s.mu.RLock()
	defer sc.s.mu.RUnlock()
	return nextPending(sc.s.schedules)
}

func nextPending(entries []model.ScheduleEntry) (model.ScheduleEntry, bool) {
	for _, e := range entries {
		if !e.Completed() {
			return e, true
		}
	}
	return model.ScheduleEntry{}, false
}
