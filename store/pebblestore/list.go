package pebblestore

import (
	"context"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/fsnader/elephant/store"
)

// List implements store.List over a DB. Head and tail sequence numbers live
// in a metadata record; each element is one key, so push and pop are a
// two-key atomic batch. Pop atomicity across goroutines is provided by the
// mutex — the database is single-process by construction.
type List struct {
	db *DB
	mu sync.Mutex
}

// NewList returns a List over db.
func NewList(db *DB) *List { return &List{db: db} }

func (l *List) Push(ctx context.Context, key string, val []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	head, tail := l.meta(key)
	b := l.db.NewBatch()
	defer b.Close()
	if err := b.Set(listEntryKey(key, tail), val, nil); err != nil {
		return err
	}
	if err := b.Set(listMetaKey(key), encodeListMeta(head, tail+1), nil); err != nil {
		return err
	}
	return l.db.CommitBatch(ctx, b)
}

func (l *List) Pop(ctx context.Context, key string) ([]byte, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	head, tail := l.meta(key)
	// Presence is tracked separately from the value: an empty []byte is a
	// legitimate element and must round-trip. A missing entry under live
	// metadata is a hole from a torn earlier write; advance past it and keep
	// scanning so later elements are still reachable.
	for head < tail {
		entryKey := listEntryKey(key, head)
		found := true
		val, err := l.db.Get(entryKey)
		if err != nil {
			if !errors.Is(err, pebble.ErrNotFound) {
				return nil, false, err
			}
			found = false
		}
		if err := l.advance(ctx, key, entryKey, head, tail); err != nil {
			return nil, false, err
		}
		if found {
			return val, true, nil
		}
		head++
	}
	return nil, false, nil
}

// advance deletes the head entry and moves the head pointer in one batch.
func (l *List) advance(ctx context.Context, key string, entryKey []byte, head, tail uint64) error {
	b := l.db.NewBatch()
	defer b.Close()
	if err := b.Delete(entryKey, nil); err != nil {
		return err
	}
	if err := b.Set(listMetaKey(key), encodeListMeta(head+1, tail), nil); err != nil {
		return err
	}
	return l.db.CommitBatch(ctx, b)
}

func (l *List) Len(ctx context.Context, key string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	head, tail := l.meta(key)
	return int64(tail - head), nil
}

// meta loads head/tail for key; absent metadata is an empty list.
func (l *List) meta(key string) (head, tail uint64) {
	b, err := l.db.Get(listMetaKey(key))
	if err != nil {
		return 0, 0
	}
	return decodeListMeta(b)
}

var _ store.List = (*List)(nil)
