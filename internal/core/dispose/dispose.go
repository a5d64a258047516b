// Package dispose resolves the shapes a node accepts as attached resources.
//
// A resource is disposable when it is
//   - a Destroyer or an Unsubscriber,
//   - a niladic teardown callback: func() or a named type such as
//     context.CancelFunc,
//   - a slice or array whose elements are disposable,
//   - a Holder whose current value is disposable (an empty holder is a no-op).
//
// Anything else is an UnsupportedResourceError.
package dispose

import (
	"fmt"
	"reflect"
)

type Destroyer interface {
	Destroy()
}

type Unsubscriber interface {
	Unsubscribe()
}

// Holder is a single-slot container. Disposing it disposes whatever it
// currently holds.
type Holder interface {
	Held() any
}

// Check reports whether r, and everything nested in it, is disposable.
func Check(r any) error {
	return walk(r, nil)
}

// Dispose disposes r. The whole shape is validated first, so an unsupported
// element anywhere in a collection leaves every sibling untouched.
func Dispose(r any) error {
	if err := Check(r); err != nil {
		return err
	}
	return walk(r, func(leaf any) {
		switch v := leaf.(type) {
		case Destroyer:
			v.Destroy()
		case Unsubscriber:
			v.Unsubscribe()
		case func():
			v()
		default:
			reflect.ValueOf(leaf).Call(nil)
		}
	})
}

func walk(r any, visit func(any)) error {
	switch v := r.(type) {
	case nil:
		return UnsupportedResourceError{Resource: r}
	case Destroyer, Unsubscriber, func():
		if visit != nil {
			visit(v)
		}
		return nil
	case Holder:
		held := v.Held()
		if empty(held) {
			return nil
		}
		if err := walk(held, visit); err != nil {
			return fmt.Errorf("holder %T: %w", r, err)
		}
		return nil
	case []any:
		for i, item := range v {
			if err := walk(item, visit); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	}

	rv := reflect.ValueOf(r)
	switch rv.Kind() {
	case reflect.Func:
		if t := rv.Type(); t.NumIn() == 0 && t.NumOut() == 0 && !rv.IsNil() {
			if visit != nil {
				visit(r)
			}
			return nil
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := walk(rv.Index(i).Interface(), visit); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	}
	return UnsupportedResourceError{Resource: r}
}

// empty reports whether a held value is nil, including typed nils.
func empty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Same reports whether a and b are the same resource. Comparable values use
// ==; slices, maps and funcs compare by the pointer reflect exposes for them.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}
