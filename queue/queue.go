package queue

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/fsnader/elephant/codec"
	"github.com/fsnader/elephant/pkg/metrics"
	"github.com/fsnader/elephant/store"
)

var (
	// ErrNilItem is returned by Enqueue for nil pointers, interfaces, maps,
	// slices, and funcs. Rejected locally, before any remote call.
	ErrNilItem = errors.New("queue: nil item")

	// ErrClosed is returned once the queue has been closed. Waiters parked
	// at close time fail with it rather than hanging.
	ErrClosed = errors.New("queue: closed")
)

// Options configures a Queue. List and Bus are required; everything else has
// a working default.
type Options[T any] struct {
	// Namespace prefixes all derived keys. Defaults to "elephant".
	Namespace string

	// List is the shared remote list backing the queue.
	List store.List

	// Bus wakes blocked consumers across processes.
	Bus store.Bus

	// Codec converts items to the stored byte form. Defaults to codec.JSON.
	Codec codec.Codec[T]

	// Logger receives drain-reaction failures and swallowed publish errors.
	// Defaults to zap.NewNop().
	Logger *zap.Logger

	// Metrics is the optional per-queue collector view.
	Metrics *metrics.Queue
}

// Queue is a distributed FIFO over a shared remote list. Any number of
// processes may hold a Queue for the same name; they coordinate only through
// the list (authoritative state) and the bus (wake signal). Within one
// process, blocked consumers are served in registration order; across
// processes, whoever wins the remote pop gets the item.
type Queue[T any] struct {
	name    string
	listKey string
	channel string

	list  store.List
	push  store.ListNotifier // nil when the backend cannot couple push+publish
	bus   store.Bus
	codec codec.Codec[T]
	log   *zap.Logger
	met   *metrics.Queue

	waiters waiterList

	// drainMu admits one drain reaction at a time for this queue instance,
	// bounding this process to a single outstanding speculative pop.
	drainMu sync.Mutex

	lifeCtx   context.Context
	stop      context.CancelFunc
	sub       store.Subscription
	done      chan struct{}
	closeOnce sync.Once
	loopDone  chan struct{}
}

// Open creates the queue and subscribes to its wake channel. Callers must
// Close the queue to release the subscription.
func Open[T any](name string, opts Options[T]) (*Queue[T], error) {
	if name == "" {
		return nil, errors.New("queue: name is required")
	}
	if opts.List == nil || opts.Bus == nil {
		return nil, errors.New("queue: Options.List and Options.Bus are required")
	}
	if opts.Namespace == "" {
		opts.Namespace = "elephant"
	}
	if opts.Codec == nil {
		opts.Codec = codec.JSON[T]()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue[T]{
		name:     name,
		listKey:  store.QueueKey(opts.Namespace, name),
		channel:  store.QueueChannel(opts.Namespace, name),
		list:     opts.List,
		bus:      opts.Bus,
		codec:    opts.Codec,
		log:      opts.Logger.With(zap.String("queue", name)),
		met:      opts.Metrics,
		lifeCtx:  ctx,
		stop:     cancel,
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	if pn, ok := opts.List.(store.ListNotifier); ok {
		q.push = pn
	}

	sub, err := opts.Bus.Subscribe(ctx, q.channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("queue %q: subscribe: %w", name, err)
	}
	q.sub = sub
	go q.drainLoop()
	return q, nil
}

// Enqueue pushes item onto the remote list and wakes one round of
// consumers. When the backend supports it, push and publish are issued as a
// single transaction; otherwise the push is authoritative and a failed
// publish is logged and swallowed (a missed wake only delays delivery until
// the next notification).
func (q *Queue[T]) Enqueue(ctx context.Context, item T) error {
	if err := q.closed(); err != nil {
		return err
	}
	if isNil(item) {
		return ErrNilItem
	}
	b, err := q.codec.Encode(item)
	if err != nil {
		return fmt.Errorf("queue %q: encode: %w", q.name, err)
	}
	if err := q.pushRaw(ctx, b); err != nil {
		return fmt.Errorf("queue %q: push: %w", q.name, err)
	}
	q.met.IncEnqueued()
	return nil
}

// TryDequeue pops the head item without blocking. The second return value is
// false when the queue is currently empty.
func (q *Queue[T]) TryDequeue(ctx context.Context) (T, bool, error) {
	var zero T
	if err := q.closed(); err != nil {
		return zero, false, err
	}
	b, ok, err := q.list.Pop(ctx, q.listKey)
	if err != nil {
		return zero, false, fmt.Errorf("queue %q: pop: %w", q.name, err)
	}
	if !ok {
		return zero, false, nil
	}
	v, err := q.codec.Decode(b)
	if err != nil {
		return zero, false, fmt.Errorf("queue %q: decode: %w", q.name, err)
	}
	q.met.IncDequeued()
	return v, true, nil
}

// Dequeue blocks until an item is available, ctx is canceled, or the queue
// is closed. A canceled call that loses the race against a concurrent
// delivery still returns the item rather than dropping it.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	var zero T

	// Opportunistic pop before parking.
	if v, ok, err := q.TryDequeue(ctx); err != nil {
		return zero, err
	} else if ok {
		return v, nil
	}

	w := newWaiter()
	q.waiters.pushBack(w)
	q.met.WaiterParked()
	defer q.met.WaiterReleased()

	// Announce the new waiter. Covers an item that landed between the failed
	// opportunistic pop and the registration above; also wakes this process's
	// own drain loop. Failure is non-fatal: any producer publish re-triggers
	// the drain.
	if err := q.bus.Publish(ctx, q.channel, nil); err != nil {
		q.met.IncPublishFailure()
		q.log.Warn("waiter announce failed", zap.Error(err))
	}

	select {
	case <-w.done:
		b, _ := w.take()
		return q.decodeDelivered(b)
	case <-ctx.Done():
		if !w.cancel() {
			// A delivery may have won the race; if so the item is ours.
			if b, ok := w.take(); ok {
				return q.decodeDelivered(b)
			}
		}
		q.waiters.remove(w)
		return zero, ctx.Err()
	case <-q.done:
		if !w.cancel() {
			if b, ok := w.take(); ok {
				return q.decodeDelivered(b)
			}
		}
		return zero, ErrClosed
	}
}

// Len reports the remote list length. Advisory: concurrent producers and
// consumers may change it before the caller acts on it.
func (q *Queue[T]) Len(ctx context.Context) (int64, error) {
	n, err := q.list.Len(ctx, q.listKey)
	if err != nil {
		return 0, fmt.Errorf("queue %q: len: %w", q.name, err)
	}
	return n, nil
}

// Close releases the bus subscription and fails all parked waiters with
// ErrClosed. Safe to call more than once.
func (q *Queue[T]) Close() error {
	q.closeOnce.Do(func() {
		q.stop()
		_ = q.sub.Close()
		close(q.done)
		for {
			w := q.waiters.popFront()
			if w == nil {
				break
			}
			w.cancel()
		}
		<-q.loopDone
	})
	return nil
}

func (q *Queue[T]) closed() error {
	select {
	case <-q.done:
		return ErrClosed
	default:
		return nil
	}
}

func (q *Queue[T]) decodeDelivered(b []byte) (T, error) {
	v, err := q.codec.Decode(b)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("queue %q: decode: %w", q.name, err)
	}
	q.met.IncDequeued()
	return v, nil
}

// pushRaw issues the push+publish pair, atomically when the backend allows.
func (q *Queue[T]) pushRaw(ctx context.Context, b []byte) error {
	if q.push != nil {
		return q.push.PushNotify(ctx, q.listKey, q.channel, b)
	}
	if err := q.list.Push(ctx, q.listKey, b); err != nil {
		return err
	}
	if err := q.bus.Publish(ctx, q.channel, nil); err != nil {
		// The push is durable; the publish is only a latency optimization.
		q.met.IncPublishFailure()
		q.log.Warn("enqueue publish failed", zap.Error(err))
	}
	return nil
}

// drainLoop reacts to bus notifications until the subscription closes.
func (q *Queue[T]) drainLoop() {
	defer close(q.loopDone)
	for range q.sub.Events() {
		q.drain()
	}
}

// drain matches parked waiters with available items until one side runs
// out. It must keep looping after each resolution: the subscription
// coalesces notifications, so a single event may stand for several
// publishes and stopping early would strand a waiter with no further wake
// coming. Draining past the notification count is harmless — an empty pop
// re-parks the waiter at the head. It runs under drainMu so this process
// has a single speculative pop in flight per queue. With no waiters parked
// it returns without touching the backend, so notification storms aimed at
// other processes cost nothing here.
func (q *Queue[T]) drain() {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()
	for {
		w := q.waiters.popFront()
		if w == nil {
			return
		}
		q.met.IncDrain()
		b, ok, err := q.list.Pop(q.lifeCtx, q.listKey)
		if err != nil {
			// Re-park and wait for the next notification; nothing is
			// synchronously waiting on the drain itself.
			q.waiters.pushFront(w)
			q.met.IncDrainError()
			q.log.Error("drain pop failed, waiter re-parked", zap.Error(err))
			return
		}
		if !ok {
			// Notified before the push became visible (or another process
			// won the pop). Keep the waiter's position; retry on the next
			// notification.
			q.waiters.pushFront(w)
			return
		}
		if w.resolve(b) {
			continue
		}
		// The waiter canceled while the pop was in flight. Keep the item
		// alive and offer it to the next waiter, if any.
		q.recover(b)
	}
}

// recover re-submits an item whose waiter canceled mid-delivery. The normal
// path pushes it back through pushRaw; if the backend is unreachable the
// item is handed directly to the next parked waiter. Loss is conceded only
// when neither works, and loudly.
func (q *Queue[T]) recover(b []byte) {
	q.met.IncRequeue()
	err := q.pushRaw(q.lifeCtx, b)
	if err == nil {
		return
	}
	q.log.Warn("requeue after canceled waiter failed, trying local hand-off", zap.Error(err))
	for {
		w := q.waiters.popFront()
		if w == nil {
			q.log.Error("item lost: requeue failed and no waiter accepted it")
			return
		}
		if w.resolve(b) {
			return
		}
	}
}

// isNil reports whether item is an absent value for nilable kinds.
func isNil(item any) bool {
	if item == nil {
		return true
	}
	v := reflect.ValueOf(item)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
