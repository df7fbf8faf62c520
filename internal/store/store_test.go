package store

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartwaste-backend/internal/model"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s, err := New(DefaultSeed("2026-10-18"))
	require.NoError(t, err)
	return s
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New(Snapshot{Bins: []model.Bin{{ID: "A"}, {ID: "A"}}})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = New(Snapshot{Schedules: []model.ScheduleEntry{{ID: "S"}, {ID: "S"}}})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestNew_ClampsSeedAndDefaultsSettings(t *testing.T) {
	s, err := New(Snapshot{Bins: []model.Bin{{ID: "A", Weight: 99}, {ID: "B", Weight: -4}}})
	require.NoError(t, err)

	bins := s.Bins().ListBins()
	require.Len(t, bins, 2)
	assert.Equal(t, model.MaxCapacityKg, bins[0].Weight)
	assert.Equal(t, 0.0, bins[1].Weight)
	assert.Equal(t, model.DefaultSettings(), s.Settings().Get())
}

func TestBinStore_ListKeepsInsertionOrder(t *testing.T) {
	s := newTestState(t)
	bins := s.Bins().ListBins()

	ids := make([]string, len(bins))
	for i, b := range bins {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"Bin-1", "Bin-2", "Bin-3", "Bin-4", "Bin-5"}, ids)
}

func TestBinStore_ListReturnsCopy(t *testing.T) {
	s := newTestState(t)
	bins := s.Bins().ListBins()
	bins[0].Weight = 24

	b, err := s.Bins().GetBin("Bin-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, b.Weight)
}

func TestBinStore_NotFound(t *testing.T) {
	s := newTestState(t)
	bins := s.Bins()

	_, err := bins.GetBin("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = bins.ApplyWeightDelta("nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = bins.SetWeight("nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = bins.SetPosition("nope", 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = bins.UpdateBin("nope", model.BinPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBinStore_WeightAlwaysClamped(t *testing.T) {
	testCases := []struct {
		name  string
		apply func(BinStore) (model.Bin, error)
		want  float64
	}{
		{
			name:  "huge positive delta",
			apply: func(b BinStore) (model.Bin, error) { return b.ApplyWeightDelta("Bin-1", 1e12) },
			want:  model.MaxCapacityKg,
		},
		{
			name:  "negative overflow delta",
			apply: func(b BinStore) (model.Bin, error) { return b.ApplyWeightDelta("Bin-1", -1e12) },
			want:  0,
		},
		{
			name:  "small delta",
			apply: func(b BinStore) (model.Bin, error) { return b.ApplyWeightDelta("Bin-1", 2) },
			want:  7,
		},
		{
			name:  "set above capacity",
			apply: func(b BinStore) (model.Bin, error) { return b.SetWeight("Bin-1", 30) },
			want:  model.MaxCapacityKg,
		},
		{
			name:  "set negative",
			apply: func(b BinStore) (model.Bin, error) { return b.SetWeight("Bin-1", -1) },
			want:  0,
		},
		{
			name:  "set infinity",
			apply: func(b BinStore) (model.Bin, error) { return b.SetWeight("Bin-1", math.Inf(1)) },
			want:  model.MaxCapacityKg,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestState(t)
			got, err := tc.apply(s.Bins())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Weight)

			stored, err := s.Bins().GetBin("Bin-1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, stored.Weight)
		})
	}
}

func TestBinStore_UpdateBinAppliesOnlyPresentFields(t *testing.T) {
	s := newTestState(t)
	lat := 11.5

	got, err := s.Bins().UpdateBin("Bin-2", model.BinPatch{Lat: &lat})
	require.NoError(t, err)
	assert.Equal(t, 11.5, got.Lat)
	assert.Equal(t, 78.033, got.Lng)
	assert.Equal(t, 12.0, got.Weight)

	w := 100.0
	got, err = s.Bins().UpdateBin("Bin-2", model.BinPatch{Weight: &w})
	require.NoError(t, err)
	assert.Equal(t, model.MaxCapacityKg, got.Weight)
}

func TestBinStore_SetPosition(t *testing.T) {
	s := newTestState(t)
	got, err := s.Bins().SetPosition("Bin-5", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.Position{Lat: 1, Lng: 2}, got.Position())
}

func TestBinStore_ApplyWeightDeltas(t *testing.T) {
	s := newTestState(t)

	before, after := s.Bins().ApplyWeightDeltas(map[string]float64{
		"Bin-1":   2,
		"Bin-3":   10, // 20 + 10 is clamped
		"missing": 5,
	})

	require.Len(t, before, 5)
	require.Len(t, after, 5)
	assert.Equal(t, 5.0, before[0].Weight)
	assert.Equal(t, 7.0, after[0].Weight)
	assert.Equal(t, 20.0, before[2].Weight)
	assert.Equal(t, model.MaxCapacityKg, after[2].Weight)
	assert.Equal(t, before[1], after[1])
}

func TestSettingsStore_Update(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	str := func(v string) *string { return &v }

	testCases := []struct {
		name  string
		patch model.SettingsPatch
		check func(t *testing.T, got model.Settings)
	}{
		{
			name:  "critical above range is clamped",
			patch: model.SettingsPatch{CriticalFillPercent: f(150)},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, 100, got.CriticalFillPercent) },
		},
		{
			name:  "critical below range is clamped",
			patch: model.SettingsPatch{CriticalFillPercent: f(-20)},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, 0, got.CriticalFillPercent) },
		},
		{
			name:  "critical fraction is rounded",
			patch: model.SettingsPatch{CriticalFillPercent: f(72.6)},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, 73, got.CriticalFillPercent) },
		},
		{
			name:  "refresh is floored at five",
			patch: model.SettingsPatch{RefreshSeconds: f(2)},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, 5, got.RefreshSeconds) },
		},
		{
			name:  "refresh accepted",
			patch: model.SettingsPatch{RefreshSeconds: f(60)},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, 60, got.RefreshSeconds) },
		},
		{
			name:  "dark theme accepted",
			patch: model.SettingsPatch{Theme: str("dark")},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, model.ThemeDark, got.Theme) },
		},
		{
			name:  "unknown theme ignored",
			patch: model.SettingsPatch{Theme: str("Dark")},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, model.ThemeLight, got.Theme) },
		},
		{
			name:  "depot accepted",
			patch: model.SettingsPatch{Depot: &model.Position{Lat: 1, Lng: 2}},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, model.Position{Lat: 1, Lng: 2}, got.Depot) },
		},
		{
			name:  "non-finite depot ignored",
			patch: model.SettingsPatch{Depot: &model.Position{Lat: math.NaN(), Lng: 2}},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, model.DefaultSettings().Depot, got.Depot) },
		},
		{
			name:  "empty patch changes nothing",
			patch: model.SettingsPatch{},
			check: func(t *testing.T, got model.Settings) { assert.Equal(t, model.DefaultSettings(), got) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestState(t)
			got := s.Settings().Update(tc.patch)
			tc.check(t, got)
			assert.Equal(t, got, s.Settings().Get())
		})
	}
}

func TestSettingsStore_PartialUpdateKeepsOtherFields(t *testing.T) {
	s := newTestState(t)
	critical := 65.0
	s.Settings().Update(model.SettingsPatch{CriticalFillPercent: &critical})

	bad := "purple"
	got := s.Settings().Update(model.SettingsPatch{Theme: &bad})
	assert.Equal(t, 65, got.CriticalFillPercent)
	assert.Equal(t, model.ThemeLight, got.Theme)
	assert.Equal(t, model.DefaultRefreshSeconds, got.RefreshSeconds)
}

func TestScheduleStore_Complete(t *testing.T) {
	s := newTestState(t)

	entry, err := s.Schedules().Complete("SCH-1001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, entry.Status)
	assert.Equal(t, "Bin-3", entry.BinID)

	bin, err := s.Bins().GetBin("Bin-3")
	require.NoError(t, err)
	assert.Equal(t, 0.0, bin.Weight)
}

func TestScheduleStore_CompleteTwiceDoesNotReapply(t *testing.T) {
	s := newTestState(t)

	_, err := s.Schedules().Complete("SCH-1002")
	require.NoError(t, err)

	// The bin refills after the visit; a repeated completion must not empty it again.
	_, err = s.Bins().SetWeight("Bin-2", 9)
	require.NoError(t, err)

	entry, err := s.Schedules().Complete("SCH-1002")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, model.StatusCompleted, entry.Status)

	bin, err := s.Bins().GetBin("Bin-2")
	require.NoError(t, err)
	assert.Equal(t, 9.0, bin.Weight)
}

func TestScheduleStore_CompleteUnknown(t *testing.T) {
	s := newTestState(t)
	_, err := s.Schedules().Complete("SCH-0")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestScheduleStore_CompleteLeavesOtherVisitsForSameBin(t *testing.T) {
	s, err := New(Snapshot{
		Bins: []model.Bin{{ID: "B", Weight: 20}},
		Schedules: []model.ScheduleEntry{
			{ID: "S1", BinID: "B"},
			{ID: "S2", BinID: "B"},
		},
	})
	require.NoError(t, err)

	_, err = s.Schedules().Complete("S1")
	require.NoError(t, err)

	list := s.Schedules().ListSchedules()
	assert.Equal(t, model.StatusCompleted, list[0].Status)
	assert.Equal(t, model.StatusScheduled, list[1].Status)
}

func TestScheduleStore_NextPending(t *testing.T) {
	s := newTestState(t)

	next, ok := s.Schedules().NextPending()
	require.True(t, ok)
	assert.Equal(t, "SCH-1001", next.ID)

	_, err := s.Schedules().Complete("SCH-1001")
	require.NoError(t, err)
	next, ok = s.Schedules().NextPending()
	require.True(t, ok)
	assert.Equal(t, "SCH-1002", next.ID)

	for _, id := range []string{"SCH-1002", "SCH-1003"} {
		_, err := s.Schedules().Complete(id)
		require.NoError(t, err)
	}
	_, ok = s.Schedules().NextPending()
	assert.False(t, ok)
}

func TestState_Summary(t *testing.T) {
	s := newTestState(t)

	// Weights 5, 12, 20, 8, 3 give fills 20, 48, 80, 32, 12.
	summary := s.Summary()
	assert.Equal(t, 5, summary.TotalBins)
	assert.Equal(t, 38, summary.AverageFillPercent)
	assert.Equal(t, 1, summary.CriticalBins)
	require.NotNil(t, summary.NextPending)
	assert.Equal(t, "SCH-1001", summary.NextPending.ID)

	critical := 40.0
	s.Settings().Update(model.SettingsPatch{CriticalFillPercent: &critical})
	assert.Equal(t, 2, s.Summary().CriticalBins)
}

func TestState_SummaryEmpty(t *testing.T) {
	s, err := New(Snapshot{})
	require.NoError(t, err)

	summary := s.Summary()
	assert.Equal(t, 0, summary.TotalBins)
	assert.Equal(t, 0, summary.AverageFillPercent)
	assert.Nil(t, summary.NextPending)
}

func TestState_ConcurrentMutationsStayInRange(t *testing.T) {
	s := newTestState(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				delta := float64((i+j)%7) - 3
				s.Bins().ApplyWeightDeltas(map[string]float64{"Bin-1": delta, "Bin-3": -delta})
				_, _ = s.Bins().ApplyWeightDelta("Bin-2", delta*10)
				_ = s.Summary()
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, id := range []string{"SCH-1001", "SCH-1002", "SCH-1003"} {
			_, _ = s.Schedules().Complete(id)
		}
	}()
	wg.Wait()

	for _, b := range s.Bins().ListBins() {
		assert.GreaterOrEqual(t, b.Weight, 0.0)
		assert.LessOrEqual(t, b.Weight, model.MaxCapacityKg)
	}
	_, ok := s.Schedules().NextPending()
	assert.False(t, ok)
}

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed("2026-10-18")

	require.Len(t, seed.Bins, 5)
	require.Len(t, seed.Schedules, 3)

	windows := make([]string, len(seed.Schedules))
	for i, e := range seed.Schedules {
		windows[i] = e.Window
		assert.Equal(t, "2026-10-18", e.Date)
	}
	// Windows are labelled with an en dash.
	assert.Equal(t, []string{"09:00–11:00", "11:00–13:00", "14:00–16:00"}, windows)
}
