package store

import "smartwaste-backend/internal/model"

type binStore struct{ s *State }

var _ BinStore = binStore{}

func (b binStore) ListBins() []model.Bin {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	return b.s.copyBins()
}

func (b binStore) GetBin(id string) (model.Bin, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	bin, err := b.s.binLocked(id)
	if err != nil {
		return model.Bin{}, err
	}
	return *bin, nil
}

func (b binStore) ApplyWeightDelta(id string, delta float64) (model.Bin, error) {
	return b.mutate(id, func(bin *model.Bin) {
		bin.Weight = model.ClampWeight(bin.Weight + delta)
	})
}

func (b binStore) ApplyWeightDeltas(deltas map[string]float64) (before, after []model.Bin) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	before = b.s.copyBins()
	for id, delta := range deltas {
		if i, ok := b.s.binIndex[id]; ok {
			b.s.bins[i].Weight = model.ClampWeight(b.s.bins[i].Weight + delta)
		}
	}
	return before, b.s.copyBins()
}

func (b binStore) SetWeight(id string, weight float64) (model.Bin, error) {
	return b.mutate(id, func(bin *model.Bin) {
		bin.Weight = model.ClampWeight(weight)
	})
}

func (b binStore) SetPosition(id string, lat, lng float64) (model.Bin, error) {
	return b.mutate(id, func(bin *model.Bin) {
		bin.Lat = lat
		bin.Lng = lng
	})
}

func (b binStore) UpdateBin(id string, patch model.BinPatch) (model.Bin, error) {
	return b.mutate(id, func(bin *model.Bin) {
		if patch.Weight != nil {
			bin.Weight = model.ClampWeight(*patch.Weight)
		}
		if patch.Lat != nil {
			bin.Lat = *patch.Lat
		}
		if patch.Lng != nil {
			bin.Lng = *patch.Lng
		}
	})
}

// mutate runs fn on the bin under the write lock and returns the result.
func (b binStore) mutate(id string, fn func(*model.Bin)) (model.Bin, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	bin, err := b.s.binLocked(id)
	if err != nil {
		return model.Bin{}, err
	}
	fn(bin)
	return *bin, nil
}
