package studio

import "sync/atomic"

// Busy admits one holder at a time. The zero value is free.
type Busy struct {
	held atomic.Bool
}

// TryAcquire claims the guard, returning false when it is already held.
func (b *Busy) TryAcquire() bool {
	return b.held.CompareAndSwap(false, true)
}

// Release frees the guard.
func (b *Busy) Release() {
	b.held.Store(false)
}

// Active reports whether the guard is held.
func (b *Busy) Active() bool {
	return b.held.Load()
}
