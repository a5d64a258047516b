package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each frame.
type Runner struct {
	systems []System
	sorted  bool
	observe func(time.Duration)
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 4),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// ObserveFrames installs fn to receive the wall time of every Tick.
func (r *Runner) ObserveFrames(fn func(time.Duration)) {
	r.observe = fn
}

func (r *Runner) Tick(dt time.Duration) {
	start := time.Now()
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
	if r.observe != nil {
		r.observe(time.Since(start))
	}
}

// TickPhase runs only the systems of one phase. The host uses it to flush
// deferred work outside the frame loop, e.g. right after loading a scene.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
