package event

// Signal is a synchronous broadcast point for values of type T. Handlers run in
// subscription order. Emit iterates over a snapshot of the handler list, so
// handlers added during an emit first fire on the next one, and handlers
// removed during an emit are skipped if they have not run yet.
type Signal[T any] struct {
	handlers []*Subscription
	fns      map[*Subscription]func(T)
}

// Subscription is returned by Subscribe. It satisfies the Unsubscribe shape of
// the dispose package, so it can be attached to any node.
type Subscription struct {
	active bool
	cancel func(*Subscription)
}

// Unsubscribe detaches the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	s.cancel(s)
}

// Active reports whether the handler is still subscribed.
func (s *Subscription) Active() bool {
	return s != nil && s.active
}

// Subscribe registers fn and returns its subscription.
func (sig *Signal[T]) Subscribe(fn func(T)) *Subscription {
	if sig.fns == nil {
		sig.fns = make(map[*Subscription]func(T))
	}
	sub := &Subscription{active: true, cancel: sig.remove}
	sig.handlers = append(sig.handlers, sub)
	sig.fns[sub] = fn
	return sub
}

func (sig *Signal[T]) remove(sub *Subscription) {
	for i, h := range sig.handlers {
		if h == sub {
			sig.handlers = append(sig.handlers[:i:i], sig.handlers[i+1:]...)
			break
		}
	}
	delete(sig.fns, sub)
}

// Emit delivers v to every handler subscribed when Emit was called.
func (sig *Signal[T]) Emit(v T) {
	if len(sig.handlers) == 0 {
		return
	}
	snapshot := make([]*Subscription, len(sig.handlers))
	copy(snapshot, sig.handlers)
	for _, sub := range snapshot {
		if !sub.active {
			continue
		}
		if fn := sig.fns[sub]; fn != nil {
			fn(v)
		}
	}
}

// Len returns the number of live handlers.
func (sig *Signal[T]) Len() int {
	return len(sig.handlers)
}

// Clear drops every handler without notifying them.
func (sig *Signal[T]) Clear() {
	for _, sub := range sig.handlers {
		sub.active = false
	}
	sig.handlers = nil
	sig.fns = nil
}
