package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseDrain   Phase = iota // 0: run deferred lifecycle work
	PhaseUpdate               // 1: broadcast the frame tick
	PhaseMetrics              // 2: frame statistics
)

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
