package ecs

import (
	"reflect"

	"golang.org/x/text/unicode/norm"
)

type entityClass struct {
	name  string
	typ   reflect.Type
	root  bool
	live  bool
	views []*viewClass
}

type viewClass struct {
	typ    reflect.Type
	fn     reflect.Value
	params []reflect.Type // constructor parameters after the owning entity
	owner  *entityClass
}

// Registry holds the class-level declarations of a world: entity classes by
// name and Go type, the root class, and the view classes bound to each
// entity class.
type Registry struct {
	byName map[string]*entityClass
	byType map[reflect.Type]*entityClass
	views  map[reflect.Type]*viewClass
	root   *entityClass
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*entityClass, 16),
		byType: make(map[reflect.Type]*entityClass, 16),
		views:  make(map[reflect.Type]*viewClass, 16),
	}
}

// canonicalName folds equivalent Unicode spellings together so that names
// that render the same cannot both be registered.
func canonicalName(name string) string {
	return norm.NFC.String(name)
}

func (r *Registry) addClass(typ reflect.Type, name string, root bool) (*entityClass, error) {
	name = canonicalName(name)
	if _, taken := r.byName[name]; taken {
		return nil, DuplicateClassError{Name: name}
	}
	if existing, taken := r.byType[typ]; taken {
		return nil, DuplicateClassError{Name: existing.name}
	}
	if root && r.root != nil {
		return nil, DuplicateRootClassError{Existing: r.root.name, Name: name}
	}
	cls := &entityClass{name: name, typ: typ, root: root}
	r.byName[name] = cls
	r.byType[typ] = cls
	if root {
		r.root = cls
	}
	return cls, nil
}

func (r *Registry) addView(vc *viewClass) error {
	if _, dup := r.views[vc.typ]; dup {
		return DuplicateViewError{View: vc.typ}
	}
	r.views[vc.typ] = vc
	vc.owner.views = append(vc.owner.views, vc)
	return nil
}

func (r *Registry) classOf(typ reflect.Type) (*entityClass, bool) {
	cls, ok := r.byType[typ]
	return cls, ok
}

func (r *Registry) className(name string) (*entityClass, bool) {
	cls, ok := r.byName[canonicalName(name)]
	return cls, ok
}

// Classes returns the number of registered entity classes.
func (r *Registry) Classes() int { return len(r.byName) }

// reset forgets every class, view and the root flag.
func (r *Registry) reset() {
	clear(r.byName)
	clear(r.byType)
	clear(r.views)
	r.root = nil
}
