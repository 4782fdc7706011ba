package store

import "context"

// List is an ordered persistent list shared by all processes. Elements are
// pushed at the tail and popped from the head. Pop atomicity is the
// backend's responsibility: an element is returned to exactly one caller.
type List interface {
	// Push appends val at the tail of the list stored under key.
	Push(ctx context.Context, key string, val []byte) error

	// Pop removes and returns the head element. The second return value is
	// false when the list is empty or missing.
	Pop(ctx context.Context, key string) ([]byte, bool, error)

	// Len reports the current number of elements. Advisory under
	// concurrent mutation.
	Len(ctx context.Context, key string) (int64, error)
}

// ListNotifier is an optional List capability that issues a push and a bus
// publish as one backend transaction. Callers should type-assert for it and
// fall back to Push followed by Bus.Publish when absent.
type ListNotifier interface {
	PushNotify(ctx context.Context, key, channel string, val []byte) error
}

// Bus is a best-effort wake-up channel. Delivery is at-most-once per
// subscriber with no replay; payloads carry no meaning beyond "look again".
type Bus interface {
	// Publish emits a notification on channel. Fire-and-forget.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe registers for notifications on channel. The subscription
	// stays active until Close is called or ctx is canceled.
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription delivers received notifications as empty events. Events may
// be coalesced; a consumer must treat each event as "zero or more
// notifications arrived". The channel is closed when the subscription ends.
type Subscription interface {
	Events() <-chan struct{}
	Close() error
}

// Hash is a field-addressed map stored under a single key.
type Hash interface {
	HSet(ctx context.Context, key, field string, val []byte) error
	// HGet returns false when the field is absent.
	HGet(ctx context.Context, key, field string) ([]byte, bool, error)
	HDel(ctx context.Context, key, field string) error
	HLen(ctx context.Context, key string) (int64, error)
}

// Set is an unordered collection of unique members stored under a single
// key. Member identity is byte equality of the encoded form.
type Set interface {
	SAdd(ctx context.Context, key string, member []byte) error
	SRem(ctx context.Context, key string, member []byte) error
	SIsMember(ctx context.Context, key string, member []byte) (bool, error)
	SCard(ctx context.Context, key string) (int64, error)
	SMembers(ctx context.Context, key string) ([][]byte, error)
}
