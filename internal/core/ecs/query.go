package ecs

import "reflect"

// SelectEntities returns the live entities of class T in creation order.
func SelectEntities[T Object](w *World) []T {
	cls, ok := w.registry.classOf(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return nil
	}
	objs := w.store.entities(cls.name)
	out := make([]T, len(objs))
	for i, o := range objs {
		out[i] = o.(T)
	}
	return out
}

// SelectSingle returns the only live entity of class T. Zero or several
// matches are an error.
func SelectSingle[T Object](w *World) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()
	cls, ok := w.registry.classOf(t)
	if !ok {
		return zero, UnregisteredClassError{Type: t}
	}
	objs := w.store.entities(cls.name)
	if len(objs) != 1 {
		return zero, SelectionError{Class: cls.name, Count: len(objs)}
	}
	return objs[0].(T), nil
}

// Each visits the live entities of class T in creation order. The set is
// captured before the first call, so fn may spawn or destroy freely;
// entities destroyed mid-iteration are skipped.
func Each[T Object](w *World, fn func(T)) {
	for _, e := range SelectEntities[T](w) {
		if e.entity().destroyed {
			continue
		}
		fn(e)
	}
}
