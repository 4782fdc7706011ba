// Package queue implements a distributed blocking FIFO over a shared remote
// list and a best-effort notification bus.
//
// # Model
//
// The remote list is the only authoritative state. Every process holding a
// Queue for the same name pushes to and pops from the same list; the
// backend's pop atomicity guarantees an item is delivered to at most one
// consumer anywhere. The bus carries no payload — it only tells subscribers
// "the list may have something for you".
//
// # Enqueue
//
//	push(list, item) + publish(channel)   // one transaction when supported
//
// On backends without multi-op execution the push is issued first and a
// failed publish is swallowed: the item is durable, and the worst case is
// added latency until another notification or an opportunistic pop finds it.
//
// # Blocking dequeue
//
//  1. Try a non-blocking pop.
//  2. Park a waiter at the tail of the in-process registry.
//  3. Publish a wake notification (covers an item that arrived between the
//     failed pop and the registration).
//  4. Suspend until the waiter is resolved, the caller's context fires, or
//     the queue closes.
//
// Each received notification runs the drain reaction: under a per-queue
// mutex, take the head waiter, attempt one pop, and either resolve the
// waiter, put it back at the head (list empty — the notification belonged to
// another process, or the push is not yet visible), or re-park it on a
// transport error. A resolution that loses a race with cancellation pushes
// the item back through the enqueue path so it is never dropped.
//
// Redundant notifications are benign: a drain with no waiters or an empty
// list is a no-op, and a process with nothing parked never touches the
// backend.
//
// # Guarantees
//
// No duplicate delivery and no silent loss under normal operation. Waiters
// within one process are served in registration order; there is no global
// FIFO across processes — any process's pop may win. Timeouts are composed
// by the caller via context deadlines.
package queue
