package ecs

import (
	"errors"
	"testing"

	"github.com/l1jgo/scenert/internal/core/dispose"
)

func TestNodeDestroyDisposesOnce(t *testing.T) {
	cleanups := 0
	n := NewNode(func() { cleanups++ })
	p := &tracked{}
	must(t, n.Attach(p))

	n.Destroy()
	n.Destroy()

	if p.disposed != 1 {
		t.Fatalf("resource disposed %d times, want 1", p.disposed)
	}
	if cleanups != 1 {
		t.Fatalf("cleanup ran %d times, want 1", cleanups)
	}
	if n.Attached() != 0 {
		t.Fatalf("Attached() = %d after destroy", n.Attached())
	}
}

func TestNodeAttachAfterDestroyDisposesImmediately(t *testing.T) {
	n := NewNode(nil)
	n.Destroy()

	p := &tracked{}
	must(t, n.Attach(p))

	if p.disposed != 1 {
		t.Fatalf("late resource disposed %d times, want 1", p.disposed)
	}
}

func TestNodeDetachPreventsDisposal(t *testing.T) {
	n := NewNode(nil)
	p := &tracked{}
	list := []any{&tracked{}}
	must(t, n.Attach(p))
	must(t, n.Attach(list))

	n.Detach(p)
	p.Destroy()
	n.Detach(list)
	n.Destroy()

	if p.disposed != 1 {
		t.Fatalf("detached resource disposed %d times, want 1", p.disposed)
	}
	if list[0].(*tracked).disposed != 0 {
		t.Fatalf("detached collection was disposed")
	}
}

func TestNodeAttachRejectsUnsupportedShapes(t *testing.T) {
	n := NewNode(nil)
	err := n.Attach("texture.png")
	var unsupported dispose.UnsupportedResourceError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Attach() = %v, want UnsupportedResourceError", err)
	}
}

// selfDetacher detaches itself from its owner while being disposed.
type selfDetacher struct {
	owner    *Node
	disposed int
}

func (s *selfDetacher) Destroy() {
	s.disposed++
	s.owner.Detach(s)
}

func TestNodeSelfDetachDuringDisposal(t *testing.T) {
	n := NewNode(nil)
	a := &selfDetacher{owner: n}
	b := &selfDetacher{owner: n}
	c := &tracked{}
	must(t, n.Attach(a))
	must(t, n.Attach(b))
	must(t, n.Attach(c))

	n.Destroy()

	if a.disposed != 1 || b.disposed != 1 || c.disposed != 1 {
		t.Fatalf("disposals a=%d b=%d c=%d, want 1 each", a.disposed, b.disposed, c.disposed)
	}
}

func TestNodeReentrantDestroyIsNoop(t *testing.T) {
	cleanups := 0
	n := NewNode(func() { cleanups++ })
	must(t, n.Attach(func() { n.Destroy() }))

	n.Destroy()

	if cleanups != 1 {
		t.Fatalf("cleanup ran %d times, want 1", cleanups)
	}
}

type exploding struct{}

func (exploding) Destroy() { panic("texture already freed") }

func TestNodeFailingDisposalDoesNotBlockOthers(t *testing.T) {
	cleanups := 0
	n := NewNode(func() { cleanups++ })
	before, after := &tracked{}, &tracked{}
	must(t, n.Attach(before))
	must(t, n.Attach(exploding{}))
	must(t, n.Attach(after))

	var raised any
	func() {
		defer func() { raised = recover() }()
		n.Destroy()
	}()

	de, ok := raised.(*DisposalError)
	if !ok {
		t.Fatalf("Destroy raised %v, want *DisposalError", raised)
	}
	if len(de.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(de.Failures))
	}
	var pe PanicError
	if !errors.As(de, &pe) {
		t.Fatalf("failure %v is not a PanicError", de.Failures[0])
	}
	if before.disposed != 1 || after.disposed != 1 {
		t.Fatalf("siblings disposed %d/%d, want 1/1", before.disposed, after.disposed)
	}
	if cleanups != 1 {
		t.Fatalf("cleanup ran %d times, want 1", cleanups)
	}

	n.Destroy() // already destroyed: nothing is retried
	if before.disposed != 1 {
		t.Fatalf("resource disposed again on second Destroy")
	}
}

func TestNodeDisposesVariableContents(t *testing.T) {
	n := NewNode(nil)
	first, second := &tracked{}, &tracked{}
	v := dispose.NewVariable[*tracked](first)
	must(t, n.Attach(v))
	v.Set(second)

	n.Destroy()

	if first.disposed != 0 || second.disposed != 1 {
		t.Fatalf("first=%d second=%d, want 0/1", first.disposed, second.disposed)
	}
}
