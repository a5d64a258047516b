package service

import (
	"fmt"
	"reflect"
)

type NotConstructorError struct {
	Constructor any
	Reason      string
}

func (e NotConstructorError) Error() string {
	return fmt.Sprintf("service constructor %T: %s", e.Constructor, e.Reason)
}

type DuplicateServiceError struct {
	Type reflect.Type
}

func (e DuplicateServiceError) Error() string {
	return fmt.Sprintf("service %v is already provided", e.Type)
}

type NotServiceError struct {
	Type reflect.Type
}

func (e NotServiceError) Error() string {
	return fmt.Sprintf("%v is not a provided service", e.Type)
}

// CircularDependencyError is returned for a service whose dependency graph
// contains a cycle, either directly or through one of its dependencies.
type CircularDependencyError struct {
	Type  reflect.Type
	Cause error
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency: %v: %v", e.Type, e.Cause)
}

func (e *CircularDependencyError) Unwrap() error { return e.Cause }

// ResolveError wraps a failure raised while constructing a service.
type ResolveError struct {
	Type  reflect.Type
	Cause error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %v: %v", e.Type, e.Cause)
}

func (e *ResolveError) Unwrap() error { return e.Cause }
