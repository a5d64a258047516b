package system

import (
	"time"

	"github.com/l1jgo/scenert/internal/core/ecs"
	"go.uber.org/zap"
)

// DrainSystem runs one deferred queue cycle per frame. Drain errors are
// contract violations of user code; they go to onError and never stop the
// frame.
type DrainSystem struct {
	world   *ecs.World
	onError func(error)
}

func NewDrainSystem(w *ecs.World, onError func(error)) *DrainSystem {
	return &DrainSystem{world: w, onError: onError}
}

func (s *DrainSystem) Phase() Phase { return PhaseDrain }

func (s *DrainSystem) Update(_ time.Duration) {
	if err := s.world.Drain(); err != nil && s.onError != nil {
		s.onError(err)
	}
}

// UpdateSystem relays the frame tick to every live entity and view.
type UpdateSystem struct {
	world *ecs.World
}

func NewUpdateSystem(w *ecs.World) *UpdateSystem {
	return &UpdateSystem{world: w}
}

func (s *UpdateSystem) Phase() Phase { return PhaseUpdate }

func (s *UpdateSystem) Update(dt time.Duration) {
	s.world.Tick(dt)
}

// StatsSystem logs a snapshot of the world every interval frames.
type StatsSystem struct {
	world    *ecs.World
	log      *zap.Logger
	interval int
	frames   int
}

func NewStatsSystem(w *ecs.World, log *zap.Logger, interval int) *StatsSystem {
	if interval <= 0 {
		interval = 1
	}
	return &StatsSystem{world: w, log: log, interval: interval}
}

func (s *StatsSystem) Phase() Phase { return PhaseMetrics }

func (s *StatsSystem) Update(_ time.Duration) {
	s.frames++
	if s.frames%s.interval != 0 {
		return
	}
	s.log.Debug("world stats",
		zap.Int("entities", s.world.Store().Len()),
		zap.Int("pending", s.world.Queue().Pending()),
		zap.Int("subscribers", s.world.Events().TickSubscribers()),
		zap.Duration("elapsed", s.world.Events().Elapsed()),
		zap.Uint64("cycle", s.world.Queue().Cycle()),
	)
}
