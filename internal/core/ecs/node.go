package ecs

import (
	"fmt"

	"github.com/l1jgo/scenert/internal/core/dispose"
)

// Owner is anything that can hold attached resources. Entities, views and
// bare nodes all implement it.
type Owner interface {
	Attach(resource any) error
	Detach(resource any)
}

type noder interface {
	node() *Node
}

var _ Owner = (*Node)(nil)

// Node is the ownership-tree primitive. Attached resources are disposed
// exactly once, when the node is destroyed. The zero value is ready to use.
type Node struct {
	destroyed bool
	attached  []any
	cleanup   func()
}

// NewNode returns a node that runs cleanup after its resources are disposed.
func NewNode(cleanup func()) *Node {
	return &Node{cleanup: cleanup}
}

func (n *Node) node() *Node { return n }

// Attach binds resource to the node's lifetime. On a destroyed node the
// resource is disposed immediately.
func (n *Node) Attach(resource any) error {
	if err := dispose.Check(resource); err != nil {
		return fmt.Errorf("attach: %w", err)
	}
	if n.destroyed {
		if failures := disposeOne(resource); len(failures) > 0 {
			panic(&DisposalError{Failures: failures})
		}
		return nil
	}
	n.attached = append(n.attached, resource)
	return nil
}

// Detach forgets resource without disposing it.
func (n *Node) Detach(resource any) {
	for i, r := range n.attached {
		if dispose.Same(r, resource) {
			n.attached = append(n.attached[:i], n.attached[i+1:]...)
			return
		}
	}
}

// Destroy disposes every attached resource and then runs the cleanup body.
// Only the first call has an effect.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true
	n.teardown(nil)
}

func (n *Node) Destroyed() bool { return n.destroyed }

// Attached returns the number of resources currently attached.
func (n *Node) Attached() int { return len(n.attached) }

// teardown disposes a snapshot of the attached resources, so resources that
// detach themselves while being disposed cannot disturb the iteration.
// Failures do not stop the batch; they are raised together at the end.
func (n *Node) teardown(failures []error) {
	items := n.attached
	n.attached = nil
	for _, r := range items {
		failures = append(failures, disposeOne(r)...)
	}
	if n.cleanup != nil {
		failures = append(failures, guard(n, n.cleanup)...)
	}
	if len(failures) > 0 {
		panic(&DisposalError{Failures: failures})
	}
}

func disposeOne(r any) (failures []error) {
	defer func() {
		if v := recover(); v != nil {
			failures = recovered(r, v)
		}
	}()
	if err := dispose.Dispose(r); err != nil {
		return []error{err}
	}
	return nil
}

func guard(owner any, fn func()) (failures []error) {
	defer func() {
		if v := recover(); v != nil {
			failures = recovered(owner, v)
		}
	}()
	fn()
	return nil
}
