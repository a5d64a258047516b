package service

import "reflect"

// Get returns the singleton of type T.
func Get[T any](c *Container) (T, error) {
	var zero T
	v, err := c.Get(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

// MustGet is Get for wiring code where a missing service is a programming
// error.
func MustGet[T any](c *Container) T {
	v, err := Get[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

// Override installs a test double for T until the next Reset.
func Override[T any](c *Container, v T) error {
	return c.Override(reflect.TypeOf((*T)(nil)).Elem(), v)
}
