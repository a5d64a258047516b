package ecs

import (
	"errors"
	"reflect"
	"testing"

	"github.com/l1jgo/scenert/internal/core/service"
)

type clock struct{ now int }

func newClock() *clock { return &clock{now: 1} }

type textures struct {
	clock *clock
	loads int
}

func newTextures(c *clock) *textures { return &textures{clock: c} }

type sprite struct{ Entity }

type spriteView struct {
	View
	tex   *textures
	scale float64
}

func newSpriteView(_ *sprite, tex *textures, scale float64) *spriteView {
	tex.loads++
	return &spriteView{tex: tex, scale: scale}
}

type spriteHitbox struct {
	View
	clock *clock
}

func newSpriteHitbox(_ *sprite, c *clock) *spriteHitbox { return &spriteHitbox{clock: c} }

func spriteWorld(t *testing.T) (*World, *stage) {
	t.Helper()
	w := newTestWorld(t)
	registerStageAndActor(t, w)
	must(t, RegisterClass[*sprite](w, ClassOptions{}))
	must(t, w.Services().Provide(newClock))
	must(t, w.Services().Provide(newTextures))
	return w, newStage(t, w)
}

func newSprite(t *testing.T, w *World, parent Owner) *sprite {
	t.Helper()
	s := &sprite{}
	must(t, w.Spawn(s))
	must(t, s.AttachTo(parent))
	return s
}

func TestViewReceivesServices(t *testing.T) {
	w, root := spriteWorld(t)
	must(t, RegisterView(w, newSpriteView))
	must(t, RegisterView(w, newSpriteHitbox))

	s1 := newSprite(t, w, root)
	s2 := newSprite(t, w, root)
	drain(t, w, 1)

	v1, err := GetView[*spriteView](s1)
	must(t, err)
	v2, err := GetView[*spriteView](s2)
	must(t, err)
	hb, err := GetView[*spriteHitbox](s1)
	must(t, err)

	if v1.tex != v2.tex {
		t.Fatalf("views got distinct service instances")
	}
	if v1.tex.loads != 2 {
		t.Fatalf("shared service used %d times, want 2", v1.tex.loads)
	}
	if hb.clock != v1.tex.clock {
		t.Fatalf("transitive dependency is not the singleton")
	}
	if v1.scale != 0 {
		t.Fatalf("non-service parameter = %v, want zero", v1.scale)
	}
	if got := s1.Views(); len(got) != 2 || got[0] != ViewObject(v1) || got[1] != ViewObject(hb) {
		t.Fatalf("Views() not in registration order: %v", got)
	}
}

func TestViewServiceOverride(t *testing.T) {
	w, root := spriteWorld(t)
	must(t, RegisterView(w, newSpriteView))

	fake := &textures{}
	must(t, service.Override(w.Services(), fake))

	s := newSprite(t, w, root)
	drain(t, w, 1)
	v, err := GetView[*spriteView](s)
	must(t, err)
	if v.tex != fake {
		t.Fatalf("view got %p, want override %p", v.tex, fake)
	}
	if w.Services().Built(reflect.TypeOf((**textures)(nil)).Elem()) {
		t.Fatalf("real service constructed despite override")
	}
}

type broken struct{}

func newBroken() (*broken, error) { return nil, errors.New("no device") }

type brokenView struct{ View }

func newBrokenView(_ *sprite, _ *broken) *brokenView { return &brokenView{} }

func TestViewResolutionFailureMaterializesNothing(t *testing.T) {
	w, root := spriteWorld(t)
	must(t, w.Services().Provide(newBroken))
	must(t, RegisterView(w, newSpriteView))
	must(t, RegisterView(w, newBrokenView))

	s := newSprite(t, w, root)
	err := w.Drain()
	var re *service.ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("Drain() = %v, want ResolveError", err)
	}
	if len(s.Views()) != 0 {
		t.Fatalf("partial view set materialized: %v", s.Views())
	}
	if _, err := GetView[*spriteView](s); err == nil {
		t.Fatalf("earlier view constructed despite later failure")
	}
}

func TestRegisterViewValidation(t *testing.T) {
	w, _ := spriteWorld(t)
	type unregistered struct{ Entity }

	tests := []struct {
		name string
		fn   any
	}{
		{"nil", nil},
		{"not a func", 42},
		{"no params", func() *spriteView { return nil }},
		{"no view result", func(*sprite) int { return 0 }},
		{"two results", func(*sprite) (*spriteView, error) { return nil, nil }},
		{"variadic", func(*sprite, ...int) *spriteView { return nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inv InvalidViewError
			if err := RegisterView(w, tt.fn); !errors.As(err, &inv) {
				t.Fatalf("RegisterView() = %v, want InvalidViewError", err)
			}
		})
	}

	var unreg UnregisteredClassError
	if err := RegisterView(w, func(*unregistered) *spriteView { return nil }); !errors.As(err, &unreg) {
		t.Fatalf("unregistered owner = %v, want UnregisteredClassError", err)
	}

	must(t, RegisterView(w, newSpriteView))
	var dup DuplicateViewError
	if err := RegisterView(w, newSpriteView); !errors.As(err, &dup) {
		t.Fatalf("second registration = %v, want DuplicateViewError", err)
	}
}

type heldView struct{ View }

func newHeldView(*sprite) *heldView { return &heldView{} }

func TestViewResourcesDisposedWithEntity(t *testing.T) {
	w, root := spriteWorld(t)
	must(t, RegisterView(w, newHeldView))
	s := newSprite(t, w, root)
	drain(t, w, 1)

	v, err := GetView[*heldView](s)
	must(t, err)
	res := &tracked{}
	must(t, v.Attach(res))

	s.Destroy()
	if !v.Destroyed() || res.disposed != 1 {
		t.Fatalf("view destroyed=%v resource disposed=%d", v.Destroyed(), res.disposed)
	}
	if _, err := GetView[*heldView](s); err == nil {
		t.Fatalf("view still reachable after destroy")
	}
}
