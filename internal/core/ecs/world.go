package ecs

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/scenert/internal/core/event"
	"github.com/l1jgo/scenert/internal/core/service"
	"github.com/l1jgo/scenert/internal/core/task"
	"go.uber.org/zap"
)

// Observer receives lifecycle counts. The metrics package implements it.
type Observer interface {
	EntitySpawned(class string)
	EntityDestroyed(class string)
	Violation(kind string)
	Drained(tasks int, err error)
	Reset()
}

type nopObserver struct{}

func (nopObserver) EntitySpawned(string)   {}
func (nopObserver) EntityDestroyed(string) {}
func (nopObserver) Violation(string)       {}
func (nopObserver) Drained(int, error)     {}
func (nopObserver) Reset()                 {}

// World is the runtime handle. It owns everything that would otherwise be
// process-wide state: the broadcaster, the deferred queue, the service
// container, the class registry and the entity store. Independent worlds
// can coexist; each must only be used from one goroutine.
type World struct {
	id       uuid.UUID
	log      *zap.Logger
	events   *event.Broadcaster
	queue    *task.Queue
	services *service.Container
	registry *Registry
	store    *Store
	observer Observer
}

type Option func(*World)

// WithObserver routes lifecycle counts to o.
func WithObserver(o Observer) Option {
	return func(w *World) { w.observer = o }
}

// WithID sets the world id, which is random by default.
func WithID(id uuid.UUID) Option {
	return func(w *World) { w.id = id }
}

func NewWorld(log *zap.Logger, opts ...Option) *World {
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		id:       uuid.New(),
		events:   event.NewBroadcaster(),
		queue:    task.NewQueue(),
		registry: NewRegistry(),
		store:    NewStore(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = log.With(zap.String("world", w.id.String()))
	w.services = service.NewContainer(w.log.Named("service"))
	// First reset subscriber, so user handlers observe an already reset world.
	w.events.OnReset(w.onReset)
	return w
}

func (w *World) ID() uuid.UUID                { return w.id }
func (w *World) Logger() *zap.Logger          { return w.log }
func (w *World) Events() *event.Broadcaster   { return w.events }
func (w *World) Queue() *task.Queue           { return w.queue }
func (w *World) Services() *service.Container { return w.services }
func (w *World) Store() *Store                { return w.store }
func (w *World) Registry() *Registry          { return w.registry }

// ClassOptions configures RegisterClass.
type ClassOptions struct {
	// Name overrides the class name, which defaults to the Go type name.
	Name string
	// Root flags the single root entity class of the world. Root entities
	// need no parent.
	Root bool
}

// RegisterClass declares T as an entity class. Class names are unique per
// world.
func RegisterClass[T Object](w *World, opts ClassOptions) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := opts.Name
	if name == "" {
		name = t.Name()
		if t.Kind() == reflect.Pointer {
			name = t.Elem().Name()
		}
	}
	if name == "" {
		return fmt.Errorf("register %v: anonymous type needs an explicit name", t)
	}
	if _, err := w.registry.addClass(t, name, opts.Root); err != nil {
		return err
	}
	w.log.Debug("entity class registered", zap.String("class", name), zap.Bool("root", opts.Root))
	return nil
}

// Spawn runs the construction protocol on obj: store registration, the
// deferred attach check and view materialization, and the tick relay.
// Call it first thing in the entity's constructor.
func (w *World) Spawn(obj Object) error {
	e := obj.entity()
	if e.world != nil {
		return AlreadySpawnedError{ID: e.id}
	}
	t := reflect.TypeOf(obj)
	cls, ok := w.registry.classOf(t)
	if !ok {
		return UnregisteredClassError{Type: t}
	}
	if cls.root {
		if cls.live {
			w.observer.Violation("root_instance")
			return DuplicateRootInstanceError{Class: cls.name}
		}
		cls.live = true
	}

	e.world = w
	e.self = obj
	e.class = cls
	e.viewsByType = make(map[reflect.Type]ViewObject, len(cls.views))
	e.cleanup = func() {
		if h, ok := obj.(DestroyHook); ok {
			h.OnDestroy()
		}
	}
	e.id, e.seq = w.store.register(obj, cls.name)
	w.queue.Schedule(e.materialize)
	e.tick = w.events.OnTick(e.relayTick)

	w.observer.EntitySpawned(cls.name)
	w.log.Debug("entity spawned", zap.String("id", e.id))
	return nil
}

// Configurable entities are set up by New after Spawn, with their world and
// the properties of the manifest node that produced them.
type Configurable interface {
	Configure(w *World, props map[string]string) error
}

// New creates and spawns a zero instance of the named class. The class type
// must be a pointer to a struct.
func (w *World) New(class string, props map[string]string) (Object, error) {
	cls, ok := w.registry.className(class)
	if !ok {
		return nil, UnregisteredClassError{Name: class}
	}
	if cls.typ.Kind() != reflect.Pointer || cls.typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("new %s: class type %v is not a struct pointer", class, cls.typ)
	}
	obj := reflect.New(cls.typ.Elem()).Interface().(Object)
	if err := w.Spawn(obj); err != nil {
		return nil, err
	}
	if c, ok := obj.(Configurable); ok {
		if err := c.Configure(w, props); err != nil {
			obj.Destroy()
			return nil, fmt.Errorf("configure %s: %w", obj.entity().id, err)
		}
	}
	return obj, nil
}

// EntityByID looks up a live entity.
func (w *World) EntityByID(id string) (Object, bool) {
	return w.store.EntityByID(id)
}

// Drain runs one cycle of the deferred queue. Contract violations found by
// deferred steps are joined into the returned error.
func (w *World) Drain() error {
	n := w.queue.Pending()
	err := w.queue.Drain()
	w.observer.Drained(n, err)
	if err != nil {
		w.log.Error("deferred tasks failed", zap.Int("tasks", n), zap.Error(err))
	}
	return err
}

// Tick advances the frame clock and relays the tick to every live entity.
func (w *World) Tick(delta time.Duration) {
	w.events.Tick(delta)
}

// HardReset destroys every entity and clears all registries, singletons,
// overrides and pending deferred work, then notifies reset subscribers.
func (w *World) HardReset() {
	w.events.Reset()
}

func (w *World) onReset() {
	failures := guard(w.store, w.store.reset)
	w.registry.reset()
	w.services.Reset()
	w.queue.Clear()
	w.observer.Reset()
	w.log.Info("hard reset")
	if len(failures) > 0 {
		panic(&DisposalError{Failures: failures})
	}
}
