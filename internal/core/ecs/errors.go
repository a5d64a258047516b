package ecs

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

type DuplicateClassError struct {
	Name string
}

func (e DuplicateClassError) Error() string {
	return fmt.Sprintf("entity class name %q is already taken", e.Name)
}

type DuplicateRootClassError struct {
	Existing, Name string
}

func (e DuplicateRootClassError) Error() string {
	return fmt.Sprintf("root entity class already defined (%s), cannot flag %s", e.Existing, e.Name)
}

type UnregisteredClassError struct {
	Type reflect.Type
	Name string
}

func (e UnregisteredClassError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("entity class %q is not registered", e.Name)
	}
	return fmt.Sprintf("entity type %v is not registered", e.Type)
}

type DuplicateRootInstanceError struct {
	Class string
}

func (e DuplicateRootInstanceError) Error() string {
	return fmt.Sprintf("root entity %s already has a live instance", e.Class)
}

type AlreadySpawnedError struct {
	ID string
}

func (e AlreadySpawnedError) Error() string {
	return fmt.Sprintf("entity %s is already spawned", e.ID)
}

// OrphanEntityError is reported by the deferred check when a non-root entity
// was never attached to a parent.
type OrphanEntityError struct {
	ID string
}

func (e OrphanEntityError) Error() string {
	return fmt.Sprintf("entity %s is not attached to anything", e.ID)
}

type SelfAttachError struct {
	ID string
}

func (e SelfAttachError) Error() string {
	return fmt.Sprintf("entity %s cannot be attached to itself", e.ID)
}

type ViewNotFoundError struct {
	Entity string
	View   reflect.Type
}

func (e ViewNotFoundError) Error() string {
	return fmt.Sprintf("no view %v is materialized for %s", e.View, e.Entity)
}

type DuplicateViewError struct {
	View reflect.Type
}

func (e DuplicateViewError) Error() string {
	return fmt.Sprintf("view %v is already registered", e.View)
}

type InvalidViewError struct {
	Constructor any
	Reason      string
}

func (e InvalidViewError) Error() string {
	return fmt.Sprintf("view constructor %T: %s", e.Constructor, e.Reason)
}

// SelectionError is returned by SelectSingle when the match count is not one.
type SelectionError struct {
	Class string
	Count int
}

func (e SelectionError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("select single %s: no entity found", e.Class)
	}
	return fmt.Sprintf("select single %s: %d entities found", e.Class, e.Count)
}

type InjectionTargetError struct {
	Target reflect.Type
	Reason string
}

func (e InjectionTargetError) Error() string {
	return fmt.Sprintf("cannot inject into %v: %s", e.Target, e.Reason)
}

// DisposalError collects every failure raised while a node tore down its
// resources. It is raised with panic once the whole batch has been attempted.
type DisposalError struct {
	Failures []error
}

func (e *DisposalError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d disposal failure(s): %s", len(e.Failures), strings.Join(msgs, "; "))
}

func (e *DisposalError) Unwrap() []error { return e.Failures }

// PanicError wraps a non-error value recovered from a disposal routine.
type PanicError struct {
	Resource any
	Value    any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("dispose %T: panic: %v", e.Resource, e.Value)
}

func recovered(resource, v any) []error {
	var de *DisposalError
	if err, ok := v.(error); ok && errors.As(err, &de) {
		return de.Failures
	}
	if err, ok := v.(error); ok {
		return []error{fmt.Errorf("dispose %T: %w", resource, err)}
	}
	return []error{PanicError{Resource: resource, Value: v}}
}
