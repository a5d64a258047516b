package ecs

import (
	"fmt"
	"reflect"
)

// Inject assigns the service of type T (or its installed override) to *dst
// and keeps it current: after every hard reset that the owner survives, *dst
// is re-assigned on the next drain, so an override installed between the
// reset and that drain is honoured. The reset subscription is attached to
// owner and ends with it.
//
// Views and services cannot use field injection; they receive dependencies
// as constructor parameters.
func Inject[T any](w *World, owner Owner, dst *T) error {
	ot := reflect.TypeOf(owner)
	if _, isView := owner.(ViewObject); isView {
		return InjectionTargetError{Target: ot, Reason: "views take services as constructor parameters"}
	}
	if w.services.IsService(ot) {
		return InjectionTargetError{Target: ot, Reason: "services take services as constructor parameters"}
	}

	t := reflect.TypeOf((*T)(nil)).Elem()
	assign := func() error {
		v, err := w.services.Get(t)
		if err != nil {
			return err
		}
		*dst = v.Interface().(T)
		return nil
	}
	if err := assign(); err != nil {
		return fmt.Errorf("inject %v into %v: %w", t, ot, err)
	}

	alive := func() bool {
		n, ok := owner.(noder)
		return !ok || !n.node().destroyed
	}
	// The world clears its queue before other reset subscribers run.
	sub := w.events.OnReset(func() {
		if !alive() {
			return
		}
		w.queue.Schedule(func() error {
			if !alive() {
				return nil
			}
			if err := assign(); err != nil {
				return fmt.Errorf("re-inject %v into %v: %w", t, ot, err)
			}
			return nil
		})
	})
	return owner.Attach(sub)
}
