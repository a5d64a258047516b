// Package stage provides the root entity every scene hangs from.
package stage

import (
	"time"

	"github.com/l1jgo/scenert/internal/core/ecs"
	"go.uber.org/zap"
)

// ClassName is the registered name of the root class.
const ClassName = "Stage"

// Stage is the root entity. It needs no parent; destroying it tears down
// the whole scene.
type Stage struct {
	ecs.Entity
	name   string
	frames uint64
}

func Register(w *ecs.World) error {
	return ecs.RegisterClass[*Stage](w, ecs.ClassOptions{Name: ClassName, Root: true})
}

// New spawns the root entity of w.
func New(w *ecs.World, name string) (*Stage, error) {
	s := &Stage{name: name}
	if err := w.Spawn(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stage) Name() string { return s.name }

// Frames returns the number of ticks the stage has seen.
func (s *Stage) Frames() uint64 { return s.frames }

func (s *Stage) Init() {
	s.World().Logger().Info("stage ready", zap.String("stage", s.name), zap.String("id", s.ID()))
}

func (s *Stage) Update(_, _ time.Duration) { s.frames++ }

func (s *Stage) OnDestroy() {
	s.World().Logger().Info("stage destroyed", zap.String("stage", s.name), zap.Uint64("frames", s.frames))
}
