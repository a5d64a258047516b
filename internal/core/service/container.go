// Package service is the lazy singleton container. Services are plain Go
// types built by constructor functions; constructor parameters whose types are
// themselves provided services are resolved recursively, everything else is
// passed as its zero value. The object graph is held in a dig container that
// is rebuilt after every Reset and whenever a constructor is added to a live
// graph; singletons built before a rebuild are carried over.
package service

import (
	"fmt"
	"reflect"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type constructor struct {
	fn         reflect.Value
	out        reflect.Type
	params     []reflect.Type
	returnsErr bool
}

// Container owns the singletons of one world. Not safe for concurrent use.
type Container struct {
	log       *zap.Logger
	ctors     []*constructor
	byType    map[reflect.Type]*constructor
	overrides map[reflect.Type]reflect.Value
	failed    map[reflect.Type]error
	built     map[reflect.Type]reflect.Value
	graph     *dig.Container
}

func NewContainer(log *zap.Logger) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	return &Container{
		log:       log,
		byType:    make(map[reflect.Type]*constructor),
		overrides: make(map[reflect.Type]reflect.Value),
		failed:    make(map[reflect.Type]error),
		built:     make(map[reflect.Type]reflect.Value),
	}
}

// Provide registers fn as the constructor of its first result type. fn must
// return either T or (T, error).
func (c *Container) Provide(fn any) error {
	ct, err := inspect(fn)
	if err != nil {
		return err
	}
	if _, dup := c.byType[ct.out]; dup {
		return DuplicateServiceError{Type: ct.out}
	}
	c.ctors = append(c.ctors, ct)
	c.byType[ct.out] = ct
	// Wrappers already in the graph were narrowed to the old service set.
	c.graph = nil
	clear(c.failed)
	return nil
}

func inspect(fn any) (*constructor, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, NotConstructorError{Constructor: fn, Reason: "not a function"}
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, NotConstructorError{Constructor: fn, Reason: "variadic constructors are not supported"}
	}
	ct := &constructor{fn: v}
	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
	case t.NumOut() == 2 && t.Out(1) == errorType && t.Out(0) != errorType:
		ct.returnsErr = true
	default:
		return nil, NotConstructorError{Constructor: fn, Reason: "must return T or (T, error)"}
	}
	ct.out = t.Out(0)
	for i := 0; i < t.NumIn(); i++ {
		ct.params = append(ct.params, t.In(i))
	}
	return ct, nil
}

// IsService reports whether t has a registered constructor.
func (c *Container) IsService(t reflect.Type) bool {
	_, ok := c.byType[t]
	return ok
}

// Override installs v as the instance returned for its dynamic type until
// the next Reset.
func (c *Container) Override(t reflect.Type, v any) error {
	if !c.IsService(t) {
		return NotServiceError{Type: t}
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || !rv.Type().AssignableTo(t) {
		return fmt.Errorf("override %v with %T: not assignable", t, v)
	}
	c.overrides[t] = rv
	c.log.Debug("service overridden", zap.Stringer("service", t))
	return nil
}

// Get returns the singleton of type t, constructing it and its service
// dependencies on first use.
func (c *Container) Get(t reflect.Type) (reflect.Value, error) {
	if v, ok := c.overrides[t]; ok {
		return v, nil
	}
	if !c.IsService(t) {
		return reflect.Value{}, NotServiceError{Type: t}
	}
	c.ensure()
	if err := c.cycleFor(t, map[reflect.Type]bool{}); err != nil {
		return reflect.Value{}, &CircularDependencyError{Type: t, Cause: err}
	}

	var out reflect.Value
	receiver := reflect.MakeFunc(
		reflect.FuncOf([]reflect.Type{t}, nil, false),
		func(args []reflect.Value) []reflect.Value {
			out = args[0]
			return nil
		},
	)
	if err := c.graph.Invoke(receiver.Interface()); err != nil {
		return reflect.Value{}, &ResolveError{Type: t, Cause: err}
	}
	return out, nil
}

// Resolve builds an argument list for params: services are resolved, other
// types get their zero value.
func (c *Container) Resolve(params []reflect.Type) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(params))
	for i, p := range params {
		if _, overridden := c.overrides[p]; !overridden && !c.IsService(p) {
			args[i] = reflect.Zero(p)
			continue
		}
		v, err := c.Get(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}

// Built reports whether the singleton of t currently exists.
func (c *Container) Built(t reflect.Type) bool {
	_, ok := c.built[t]
	return ok
}

// Instances returns the number of memoized singletons.
func (c *Container) Instances() int { return len(c.built) }

// Reset drops every singleton and override. Constructors stay registered.
func (c *Container) Reset() {
	c.graph = nil
	clear(c.overrides)
	clear(c.failed)
	clear(c.built)
}

func (c *Container) ensure() {
	if c.graph != nil {
		return
	}
	c.graph = dig.New()
	for _, ct := range c.ctors {
		c.provide(ct)
	}
}

func (c *Container) provide(ct *constructor) {
	if err := c.graph.Provide(c.wrap(ct)); err != nil {
		if dig.IsCycleDetected(err) {
			c.log.Error("circular service dependency", zap.Stringer("service", ct.out), zap.Error(err))
		} else {
			c.log.Error("provide service", zap.Stringer("service", ct.out), zap.Error(err))
		}
		c.failed[ct.out] = err
	}
}

// wrap narrows ct to the parameters the graph can satisfy and fills the rest
// with zero values. A singleton already built is returned as is.
func (c *Container) wrap(ct *constructor) any {
	var in []reflect.Type
	var slots []int
	for i, p := range ct.params {
		if c.IsService(p) {
			in = append(in, p)
			slots = append(slots, i)
		}
	}
	outs := []reflect.Type{ct.out}
	if ct.returnsErr {
		outs = append(outs, errorType)
	}
	return reflect.MakeFunc(reflect.FuncOf(in, outs, false), func(args []reflect.Value) []reflect.Value {
		if v, ok := c.built[ct.out]; ok {
			if ct.returnsErr {
				return []reflect.Value{v, reflect.Zero(errorType)}
			}
			return []reflect.Value{v}
		}
		full := make([]reflect.Value, len(ct.params))
		for i, p := range ct.params {
			full[i] = reflect.Zero(p)
		}
		for j, i := range slots {
			full[i] = args[j]
		}
		res := ct.fn.Call(full)
		if !ct.returnsErr || res[1].IsNil() {
			c.built[ct.out] = res[0]
			c.log.Debug("service constructed", zap.Stringer("service", ct.out))
		}
		return res
	}).Interface()
}

// cycleFor walks the service dependencies of t and returns the provide error
// of the first one the graph refused because of a cycle.
func (c *Container) cycleFor(t reflect.Type, seen map[reflect.Type]bool) error {
	if seen[t] {
		return nil
	}
	seen[t] = true
	if err, ok := c.failed[t]; ok && dig.IsCycleDetected(err) {
		return err
	}
	ct := c.byType[t]
	if ct == nil {
		return nil
	}
	for _, p := range ct.params {
		if err := c.cycleFor(p, seen); err != nil {
			return err
		}
	}
	return nil
}
