package dispose

// Variable is a mutable single-slot container. When attached to a node it is
// the value held at disposal time that gets disposed, not the one held at
// attach time.
type Variable[T any] struct {
	value T
	set   bool
}

func NewVariable[T any](v T) *Variable[T] {
	return &Variable[T]{value: v, set: true}
}

func (v *Variable[T]) Set(value T) {
	v.value = value
	v.set = true
}

func (v *Variable[T]) Value() T { return v.value }

// Clear empties the slot without disposing its value.
func (v *Variable[T]) Clear() {
	var zero T
	v.value = zero
	v.set = false
}

// Held implements Holder.
func (v *Variable[T]) Held() any {
	if !v.set {
		return nil
	}
	return any(v.value)
}
