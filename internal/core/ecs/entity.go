package ecs

import (
	"fmt"
	"reflect"
	"time"

	"github.com/l1jgo/scenert/internal/core/event"
	"go.uber.org/zap"
)

// Object is implemented by every user entity type through an embedded
// Entity:
//
//	type Player struct {
//		ecs.Entity
//		hp int
//	}
//
// Such a type must not declare its own Destroy method; teardown logic goes in
// OnDestroy.
type Object interface {
	Owner
	AttachTo(parent Owner) error
	Destroy()
	entity() *Entity
}

// Initializer is implemented by entities and views that want an Init call
// two drains after construction.
type Initializer interface {
	Init()
}

// Updater is implemented by entities and views that want frame ticks.
type Updater interface {
	Update(elapsed, delta time.Duration)
}

// DestroyHook is the own destroy body of an entity or view. It runs last,
// after views and attached resources are gone.
type DestroyHook interface {
	OnDestroy()
}

// Entity is the embedded base of all entity types.
type Entity struct {
	Node

	world        *World
	self         Object
	class        *entityClass
	id           string
	seq          uint64
	views        []ViewObject
	viewsByType  map[reflect.Type]ViewObject
	parent       Owner // back-reference only; the parent owns us, not the reverse
	attachCalled bool
	tick         *event.Subscription
}

func (e *Entity) entity() *Entity { return e }

// ID returns "<Class>:<sequence>", or "" before Spawn.
func (e *Entity) ID() string { return e.id }

// Class returns the registered class name.
func (e *Entity) Class() string {
	if e.class == nil {
		return ""
	}
	return e.class.name
}

func (e *Entity) World() *World { return e.world }

// Parent returns the owner the entity is attached to, if any.
func (e *Entity) Parent() Owner { return e.parent }

// Views returns the materialized views in registration order.
func (e *Entity) Views() []ViewObject {
	out := make([]ViewObject, len(e.views))
	copy(out, e.views)
	return out
}

// AttachTo makes parent the owner of the entity: destroying parent destroys
// the entity. A second call moves the entity to the new parent.
func (e *Entity) AttachTo(parent Owner) error {
	if parent == nil {
		return fmt.Errorf("attach %s: nil parent", e.id)
	}
	if n, ok := parent.(noder); ok && n.node() == &e.Node {
		return SelfAttachError{ID: e.id}
	}
	e.attachCalled = true
	if e.destroyed {
		return nil
	}
	self := e.owner()
	if e.parent != nil {
		e.parent.Detach(self)
		e.parent = nil
	}
	if err := parent.Attach(self); err != nil {
		return fmt.Errorf("attach %s: %w", e.id, err)
	}
	if !e.destroyed {
		e.parent = parent
	}
	return nil
}

// owner is the value registered with parents and the store: the outer user
// struct once spawned.
func (e *Entity) owner() Object {
	if e.self != nil {
		return e.self
	}
	return e
}

// Destroy tears the entity down: tick subscription, views in registration
// order, store entry, parent link, attached resources, then OnDestroy.
// Only the first call has an effect.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	if e.world == nil {
		e.teardown(nil)
		return
	}

	if e.tick != nil {
		e.tick.Unsubscribe()
		e.tick = nil
	}

	var failures []error
	views := e.views
	e.views = nil
	clear(e.viewsByType)
	for _, v := range views {
		failures = append(failures, guard(v, v.Destroy)...)
	}

	e.world.store.unregister(e.class.name, e.seq)
	if e.parent != nil {
		e.parent.Detach(e.self)
		e.parent = nil
	}
	if e.class.root {
		e.class.live = false
	}
	e.world.observer.EntityDestroyed(e.class.name)
	e.world.log.Debug("entity destroyed", zap.String("id", e.id))

	e.teardown(failures)
}

// materialize is the first deferred step: the attach check, then view
// construction. Entities destroyed in the meantime are skipped entirely.
// Argument lists for every view are resolved before any view is
// constructed, so a resolution failure leaves no partial set behind.
func (e *Entity) materialize() error {
	if e.destroyed {
		return nil
	}
	if !e.attachCalled && !e.class.root {
		err := OrphanEntityError{ID: e.id}
		e.world.observer.Violation("orphan")
		e.world.log.Error("entity never attached", zap.String("id", e.id))
		return err
	}

	classes := e.class.views
	args := make([][]reflect.Value, len(classes))
	for i, vc := range classes {
		resolved, err := e.world.services.Resolve(vc.params)
		if err != nil {
			return fmt.Errorf("materialize %v for %s: %w", vc.typ, e.id, err)
		}
		args[i] = append([]reflect.Value{reflect.ValueOf(e.self)}, resolved...)
	}

	for i, vc := range classes {
		v := vc.fn.Call(args[i])[0].Interface().(ViewObject)
		v.view().bind(e.self, v)
		e.views = append(e.views, v)
		e.viewsByType[vc.typ] = v
	}
	e.world.queue.Schedule(e.initialize)
	return nil
}

// initialize is the second deferred step.
func (e *Entity) initialize() error {
	if e.destroyed {
		return nil
	}
	if h, ok := e.self.(Initializer); ok {
		h.Init()
	}
	for _, v := range e.Views() {
		if v.view().destroyed {
			continue
		}
		if h, ok := v.(Initializer); ok {
			h.Init()
		}
	}
	return nil
}

func (e *Entity) relayTick(t event.Tick) {
	if h, ok := e.self.(Updater); ok {
		h.Update(t.Time, t.Delta)
	}
	for _, v := range e.Views() {
		if v.view().destroyed {
			continue
		}
		if h, ok := v.(Updater); ok {
			h.Update(t.Time, t.Delta)
		}
	}
}
