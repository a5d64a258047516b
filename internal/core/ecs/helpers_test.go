package ecs

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(zaptest.NewLogger(t))
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func drain(t *testing.T, w *World, cycles int) {
	t.Helper()
	for i := 0; i < cycles; i++ {
		if err := w.Drain(); err != nil {
			t.Fatalf("drain %d: %v", i+1, err)
		}
	}
}

// recorder collects lifecycle events in call order.
type recorder struct{ calls []string }

func (r *recorder) add(s string) { r.calls = append(r.calls, s) }

// tracked is a disposable resource that counts its disposals.
type tracked struct{ disposed int }

func (p *tracked) Destroy() { p.disposed++ }

// stage is the root class used by most tests.
type stage struct {
	Entity
	rec *recorder
}

func (s *stage) OnDestroy() {
	if s.rec != nil {
		s.rec.add("stage destroy")
	}
}

func newStage(t *testing.T, w *World) *stage {
	t.Helper()
	s := &stage{}
	must(t, w.Spawn(s))
	return s
}

// actor is a plain non-root class.
type actor struct {
	Entity
	destroyed int
}

func (a *actor) OnDestroy() { a.destroyed++ }

func newActor(t *testing.T, w *World, parent Owner) *actor {
	t.Helper()
	a := &actor{}
	must(t, w.Spawn(a))
	if parent != nil {
		must(t, a.AttachTo(parent))
	}
	return a
}

func registerStageAndActor(t *testing.T, w *World) {
	t.Helper()
	must(t, RegisterClass[*stage](w, ClassOptions{Root: true}))
	must(t, RegisterClass[*actor](w, ClassOptions{}))
}
