package store

import (
	"fmt"
	"sync"

	"smartwaste-backend/internal/model"
)

// BinStore owns the bin records and their weights.
type BinStore interface {
	ListBins() []model.Bin
	GetBin(id string) (model.Bin, error)
	ApplyWeightDelta(id string, delta float64) (model.Bin, error)
	// ApplyWeightDeltas applies a batch of deltas in one critical section and
	// returns the full snapshot before and after. Unknown ids are skipped.
	ApplyWeightDeltas(deltas map[string]float64) (before, after []model.Bin)
	SetWeight(id string, weight float64) (model.Bin, error)
	SetPosition(id string, lat, lng float64) (model.Bin, error)
	UpdateBin(id string, patch model.BinPatch) (model.Bin, error)
}

// SettingsStore owns the singleton policy settings.
type SettingsStore interface {
	Get() model.Settings
	Update(patch model.SettingsPatch) model.Settings
}

// ScheduleStore owns the collection visits.
type ScheduleStore interface {
	ListSchedules() []model.ScheduleEntry
	Complete(id string) (model.ScheduleEntry, error)
	NextPending() (model.ScheduleEntry, bool)
}

// Snapshot is a consistent copy of the whole state.
type Snapshot struct {
	Bins      []model.Bin
	Schedules []model.ScheduleEntry
	Settings  model.Settings
}

// State is the in-memory system state. A single lock serializes every write
// across bins, settings and schedules; reads copy under the read lock.
type State struct {
	mu sync.RWMutex

	bins      []model.Bin
	binIndex  map[string]int
	settings  model.Settings
	schedules []model.ScheduleEntry
	schedIdx  map[string]int
}

// New builds the state from a seed. Weights are clamped and insertion order is
// taken from the slice order. A zero Settings value selects the defaults.
func New(seed Snapshot) (*State, error) {
	s := &State{
		bins:      make([]model.Bin, 0, len(seed.Bins)),
		binIndex:  make(map[string]int, len(seed.Bins)),
		settings:  seed.Settings,
		schedules: make([]model.ScheduleEntry, 0, len(seed.Schedules)),
		schedIdx:  make(map[string]int, len(seed.Schedules)),
	}
	if s.settings == (model.Settings{}) {
		s.settings = model.DefaultSettings()
	}

	for _, b := range seed.Bins {
		if _, dup := s.binIndex[b.ID]; dup {
			return nil, fmt.Errorf("bin %q: %w", b.ID, ErrDuplicateID)
		}
		b.Weight = model.ClampWeight(b.Weight)
		b.Seq = len(s.bins)
		s.binIndex[b.ID] = len(s.bins)
		s.bins = append(s.bins, b)
	}

	for _, e := range seed.Schedules {
		if _, dup := s.schedIdx[e.ID]; dup {
			return nil, fmt.Errorf("schedule %q: %w", e.ID, ErrDuplicateID)
		}
		if e.Status != model.StatusCompleted {
			e.Status = model.StatusScheduled
		}
		e.Seq = len(s.schedules)
		s.schedIdx[e.ID] = len(s.schedules)
		s.schedules = append(s.schedules, e)
	}

	return s, nil
}

// Bins returns the bin view of the state.
func (s *State) Bins() BinStore { return binStore{s} }

// Settings returns the settings view of the state.
func (s *State) Settings() SettingsStore { return settingsStore{s} }

// Schedules returns the schedule view of the state.
func (s *State) Schedules() ScheduleStore { return scheduleStore{s} }

// Snapshot copies everything under one read lock.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Bins:      s.copyBins(),
		Schedules: s.copySchedules(),
		Settings:  s.settings,
	}
}

// Summary derives the dashboard KPIs from a single consistent snapshot.
func (s *State) Summary() model.Summary {
	snap := s.Snapshot()

	summary := model.Summary{TotalBins: len(snap.Bins)}
	total := 0
	for _, b := range snap.Bins {
		fill := b.FillPercent()
		total += fill
		if fill >= snap.Settings.CriticalFillPercent {
			summary.CriticalBins++
		}
	}
	if len(snap.Bins) > 0 {
		summary.AverageFillPercent = int(float64(total)/float64(len(snap.Bins)) + 0.5)
	}
	if next, ok := nextPending(snap.Schedules); ok {
		summary.NextPending = &next
	}
	return summary
}

func (s *State) copyBins() []model.Bin {
	out := make([]model.Bin, len(s.bins))
	copy(out, s.bins)
	return out
}

func (s *State) copySchedules() []model.ScheduleEntry {
	out := make([]model.ScheduleEntry, len(s.schedules))
	copy(out, s.schedules)
	return out
}

// binLocked returns a pointer into the bin slice. Callers hold s.mu.
func (s *State) binLocked(id string) (*model.Bin, error) {
	i, ok := s.binIndex[id]
	if !ok {
		return nil, fmt.Errorf("bin %q: %w", id, ErrNotFound)
	}
	return &s.bins[i], nil
}
