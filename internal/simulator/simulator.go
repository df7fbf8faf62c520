package simulator

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"smartwaste-backend/config"
	"smartwaste-backend/internal/model"
	"smartwaste-backend/internal/store"
)

// MaxIncrementKg is the largest weight a bin can gain in a single tick.
const MaxIncrementKg = 2

// Rand is the random source used to draw fill increments.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Tick is the outcome of one simulation step.
type Tick struct {
	At     time.Time
	Before []model.Bin
	After  []model.Bin
}

// Hook is called after every tick with the bins before and after it.
type Hook func(ctx context.Context, tick Tick)

// Service simulates bins filling up over time.
type Service struct {
	cfg  config.SimulatorConfig
	bins store.BinStore

	mu    sync.Mutex // guards rng and hooks
	rng   Rand
	hooks []Hook

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewService creates a simulator over the given bin store.
func NewService(cfg config.SimulatorConfig, bins store.BinStore) *Service {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Service{
		cfg:  cfg,
		bins: bins,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SetRand replaces the random source.
func (s *Service) SetRand(r Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = r
}

// OnTick registers a hook run after every tick, in registration order.
func (s *Service) OnTick(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Start runs the simulation loop in the background. It is a no-op when the
// loop is already running. After Stop it may be started again.
func (s *Service) Start(ctx context.Context) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		s.Run(runCtx)
	}()
}

// Stop halts the background loop and waits for it to exit.
func (s *Service) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// Run ticks every configured interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if s.cfg.Disabled {
		log.Println("Simulator is disabled. Not starting.")
		return
	}
	log.Printf("Starting sensor simulator with interval %s...", s.cfg.Interval)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Simulator shutting down.")
			return
		case <-timer.C:
			s.TickOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// TickOnce performs a single simulation step: each bin independently stays put
// with probability 0.5, otherwise gains a uniform whole number of kilograms in
// [0, MaxIncrementKg]. Weights are clamped at capacity and never decrease.
func (s *Service) TickOnce(ctx context.Context) Tick {
	ids := binIDs(s.bins.ListBins())

	s.mu.Lock()
	deltas := make(map[string]float64, len(ids))
	for _, id := range ids {
		if s.rng.Float64() < 0.5 {
			continue
		}
		if add := s.rng.IntN(MaxIncrementKg + 1); add > 0 {
			deltas[id] = float64(add)
		}
	}
	hooks := make([]Hook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	before, after := s.bins.ApplyWeightDeltas(deltas)
	tick := Tick{At: time.Now(), Before: before, After: after}
	log.Printf("[SIM] Updated bin weights at %s (%d of %d bins received waste)",
		tick.At.Format(time.TimeOnly), len(deltas), len(after))

	for _, h := range hooks {
		h(ctx, tick)
	}
	return tick
}

func binIDs(bins []model.Bin) []string {
	ids := make([]string, len(bins))
	for i, b := range bins {
		ids[i] = b.ID
	}
	return ids
}
