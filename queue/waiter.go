package queue

import "sync"

type waiterState int

const (
	waiterPending waiterState = iota
	waiterResolved
	waiterCanceled
)

// waiter is a single-resolution cell for one parked consumer. The state
// transitions pending→resolved and pending→canceled exactly once; the loser
// of a resolve/cancel race observes false and must keep the item alive.
type waiter struct {
	mu    sync.Mutex
	state waiterState
	item  []byte
	done  chan struct{}
}

func newWaiter() *waiter {
	return &waiter{done: make(chan struct{})}
}

// resolve hands item to the waiter. Returns false if the waiter was already
// canceled; the caller then owns the item.
func (w *waiter) resolve(item []byte) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waiterPending {
		return false
	}
	w.state = waiterResolved
	w.item = item
	close(w.done)
	return true
}

// cancel marks the waiter canceled. Returns false if a resolution already
// won; the caller should take the item via value instead of discarding it.
func (w *waiter) cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waiterPending {
		return false
	}
	w.state = waiterCanceled
	return true
}

// take returns the delivered item and true iff the waiter was resolved.
func (w *waiter) take() ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != waiterResolved {
		return nil, false
	}
	return w.item, true
}
