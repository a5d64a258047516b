package ecs

import (
	"reflect"
)

// ViewObject is implemented by every view type through an embedded View.
type ViewObject interface {
	Owner
	Destroy()
	view() *View
}

// View is the embedded base of presentation counterparts. A view has no id
// and no store entry; it lives exactly as long as its entity.
type View struct {
	Node
	owner Object
}

func (v *View) view() *View { return v }

// Entity returns the owning entity.
func (v *View) Entity() Object { return v.owner }

func (v *View) bind(owner Object, self ViewObject) {
	v.owner = owner
	v.cleanup = func() {
		if h, ok := self.(DestroyHook); ok {
			h.OnDestroy()
		}
	}
}

var viewObjectType = reflect.TypeOf((*ViewObject)(nil)).Elem()

// RegisterView binds a view class to an entity class. constructor has the
// shape func(owner *E, deps...) *V where *E is a registered entity type and
// *V embeds View; deps that are services are resolved from the world's
// container when the view is materialized, any other parameter gets its zero
// value.
func RegisterView(w *World, constructor any) error {
	fn := reflect.ValueOf(constructor)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return InvalidViewError{Constructor: constructor, Reason: "not a function"}
	}
	ft := fn.Type()
	switch {
	case ft.IsVariadic():
		return InvalidViewError{Constructor: constructor, Reason: "variadic constructors are not supported"}
	case ft.NumIn() == 0:
		return InvalidViewError{Constructor: constructor, Reason: "first parameter must be the owning entity"}
	case ft.NumOut() != 1 || !ft.Out(0).Implements(viewObjectType):
		return InvalidViewError{Constructor: constructor, Reason: "must return a single type embedding ecs.View"}
	}

	owner, ok := w.registry.classOf(ft.In(0))
	if !ok {
		return UnregisteredClassError{Type: ft.In(0)}
	}
	vc := &viewClass{typ: ft.Out(0), fn: fn, owner: owner}
	for i := 1; i < ft.NumIn(); i++ {
		vc.params = append(vc.params, ft.In(i))
	}
	return w.registry.addView(vc)
}

// GetView returns the materialized view of type V. It never creates one.
func GetView[V ViewObject](obj Object) (V, error) {
	var zero V
	e := obj.entity()
	t := reflect.TypeOf((*V)(nil)).Elem()
	v, ok := e.viewsByType[t]
	if !ok {
		return zero, ViewNotFoundError{Entity: e.id, View: t}
	}
	return v.(V), nil
}
