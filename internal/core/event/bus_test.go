package event

import (
	"reflect"
	"testing"
	"time"
)

func TestSignalDeliversInSubscriptionOrder(t *testing.T) {
	var sig Signal[int]
	var got []string
	sig.Subscribe(func(int) { got = append(got, "a") })
	sig.Subscribe(func(int) { got = append(got, "b") })
	sig.Subscribe(func(int) { got = append(got, "c") })

	sig.Emit(1)

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestSignalUnsubscribeDuringEmit(t *testing.T) {
	tests := []struct {
		name string
		// index of the handler that unsubscribes, and whom it removes
		remover, removed int
		want             []int
	}{
		{"self", 0, 0, []int{0, 1, 2}},
		{"later handler", 0, 1, []int{0, 2}},
		{"earlier handler", 2, 0, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sig Signal[struct{}]
			var got []int
			subs := make([]*Subscription, 3)
			for i := range subs {
				i := i
				subs[i] = sig.Subscribe(func(struct{}) {
					got = append(got, i)
					if i == tt.remover {
						subs[tt.removed].Unsubscribe()
					}
				})
			}

			sig.Emit(struct{}{})

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("delivered %v, want %v", got, tt.want)
			}
			if sig.Len() != 2 {
				t.Errorf("Len() = %d, want 2", sig.Len())
			}
		})
	}
}

func TestSignalSubscribeDuringEmitWaitsForNextEmit(t *testing.T) {
	var sig Signal[int]
	calls := 0
	sig.Subscribe(func(int) {
		sig.Subscribe(func(int) { calls++ })
	})

	sig.Emit(1)
	if calls != 0 {
		t.Fatalf("late subscriber ran during the emit that added it")
	}
	sig.Emit(2)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	var sig Signal[int]
	a := sig.Subscribe(func(int) {})
	sig.Subscribe(func(int) {})

	a.Unsubscribe()
	a.Unsubscribe()

	if sig.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", sig.Len())
	}
	if a.Active() {
		t.Fatalf("subscription still active")
	}
}

func TestBroadcasterAccumulatesAndResets(t *testing.T) {
	b := NewBroadcaster()
	var ticks []Tick
	b.OnTick(func(tk Tick) { ticks = append(ticks, tk) })
	resets := 0
	b.OnReset(func() { resets++ })

	b.Tick(16 * time.Millisecond)
	b.Tick(17 * time.Millisecond)
	b.Reset()
	b.Tick(10 * time.Millisecond)

	want := []Tick{
		{Time: 16 * time.Millisecond, Delta: 16 * time.Millisecond},
		{Time: 33 * time.Millisecond, Delta: 17 * time.Millisecond},
		{Time: 10 * time.Millisecond, Delta: 10 * time.Millisecond},
	}
	if !reflect.DeepEqual(ticks, want) {
		t.Fatalf("ticks = %v, want %v", ticks, want)
	}
	if resets != 1 {
		t.Fatalf("resets = %d, want 1", resets)
	}
}
