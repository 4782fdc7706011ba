package queue

import "sync"

// waiterList is the in-process FIFO of parked consumers. Producers append at
// the tail from caller goroutines while the drain reaction takes from the
// head, so every operation is guarded.
type waiterList struct {
	mu sync.Mutex
	ws []*waiter
}

// pushBack registers w at the tail.
func (l *waiterList) pushBack(w *waiter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ws = append(l.ws, w)
}

// pushFront restores w at the head, preserving its queue position after a
// speculative pop found the remote list empty. In-place shift: this runs on
// every empty drain, so it must not reallocate the slice each time.
func (l *waiterList) pushFront(w *waiter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ws = append(l.ws, nil)
	copy(l.ws[1:], l.ws)
	l.ws[0] = w
}

// popFront takes the head waiter, or nil when none are parked.
func (l *waiterList) popFront() *waiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.ws) == 0 {
		return nil
	}
	w := l.ws[0]
	l.ws = l.ws[1:]
	return w
}

// remove drops w wherever it sits. Used by canceled callers; a waiter the
// drain already took is simply not found.
func (l *waiterList) remove(w *waiter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.ws {
		if cur == w {
			l.ws = append(l.ws[:i], l.ws[i+1:]...)
			return
		}
	}
}

func (l *waiterList) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ws)
}
