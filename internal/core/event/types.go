package event

import "time"

// Tick is the per-frame payload: Time is the accumulated clock since the last
// hard reset, Delta the frame duration that was just added to it.
type Tick struct {
	Time  time.Duration
	Delta time.Duration
}

// Broadcaster is the process-wide publish point for frame ticks and the hard
// reset signal. One Broadcaster belongs to one world; it is driven by an
// external frame clock and must only be used from the game loop goroutine.
type Broadcaster struct {
	elapsed time.Duration
	tick    Signal[Tick]
	reset   Signal[struct{}]
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// OnTick subscribes fn to every frame tick.
func (b *Broadcaster) OnTick(fn func(Tick)) *Subscription {
	return b.tick.Subscribe(fn)
}

// OnReset subscribes fn to the hard reset signal.
func (b *Broadcaster) OnReset(fn func()) *Subscription {
	return b.reset.Subscribe(func(struct{}) { fn() })
}

// Tick advances the clock by delta and notifies tick subscribers.
func (b *Broadcaster) Tick(delta time.Duration) {
	b.elapsed += delta
	b.tick.Emit(Tick{Time: b.elapsed, Delta: delta})
}

// Reset zeroes the clock and notifies reset subscribers.
func (b *Broadcaster) Reset() {
	b.elapsed = 0
	b.reset.Emit(struct{}{})
}

// Elapsed returns the accumulated clock.
func (b *Broadcaster) Elapsed() time.Duration { return b.elapsed }

// TickSubscribers returns the number of live tick handlers.
func (b *Broadcaster) TickSubscribers() int { return b.tick.Len() }
