// Package memstore implements every store contract in process memory.
// It backs tests and local development; nothing survives a restart.
package memstore

import (
	"context"
	"sync"

	"github.com/fsnader/elephant/store"
)

// Store is an in-memory implementation of store.List, store.ListNotifier,
// store.Bus, store.Hash, and store.Set. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	lists  map[string][][]byte
	hashes map[string]map[string][]byte
	sets   map[string]map[string]struct{}

	busMu sync.Mutex
	subs  map[string][]*subscription
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		lists:  map[string][][]byte{},
		hashes: map[string]map[string][]byte{},
		sets:   map[string]map[string]struct{}{},
		subs:   map[string][]*subscription{},
	}
}

func (s *Store) Push(ctx context.Context, key string, val []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append(s.lists[key], append([]byte(nil), val...))
	return nil
}

func (s *Store) Pop(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lists[key]
	if len(l) == 0 {
		return nil, false, nil
	}
	head := l[0]
	s.lists[key] = l[1:]
	return head, true, nil
}

func (s *Store) Len(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.lists[key])), nil
}

// PushNotify appends and publishes under one lock acquisition, mirroring the
// atomic multi-op capability of the Redis backend.
func (s *Store) PushNotify(ctx context.Context, key, channel string, val []byte) error {
	if err := s.Push(ctx, key, val); err != nil {
		return err
	}
	return s.Publish(ctx, channel, nil)
}

func (s *Store) Publish(ctx context.Context, channel string, payload []byte) error {
	s.busMu.Lock()
	defer s.busMu.Unlock()
	for _, sub := range s.subs[channel] {
		sub.notify()
	}
	return nil
}

func (s *Store) Subscribe(ctx context.Context, channel string) (store.Subscription, error) {
	sub := &subscription{
		store:   s,
		channel: channel,
		events:  make(chan struct{}, 1),
	}
	s.busMu.Lock()
	s.subs[channel] = append(s.subs[channel], sub)
	s.busMu.Unlock()
	return sub, nil
}

func (s *Store) HSet(ctx context.Context, key, field string, val []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hashes[key]
	if h == nil {
		h = map[string][]byte{}
		s.hashes[key] = h
	}
	h[field] = append([]byte(nil), val...)
	return nil
}

func (s *Store) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.hashes[key][field]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) HDel(ctx context.Context, key, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes[key], field)
	return nil
}

func (s *Store) HLen(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.hashes[key])), nil
}

func (s *Store) SAdd(ctx context.Context, key string, member []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[key]
	if set == nil {
		set = map[string]struct{}{}
		s.sets[key] = set
	}
	set[string(member)] = struct{}{}
	return nil
}

func (s *Store) SRem(ctx context.Context, key string, member []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets[key], string(member))
	return nil
}

func (s *Store) SIsMember(ctx context.Context, key string, member []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sets[key][string(member)]
	return ok, nil
}

func (s *Store) SCard(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sets[key])), nil
}

func (s *Store) SMembers(ctx context.Context, key string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		out = append(out, []byte(m))
	}
	return out, nil
}

type subscription struct {
	store   *Store
	channel string
	events  chan struct{}

	closeOnce sync.Once
}

func (s *subscription) Events() <-chan struct{} { return s.events }

// notify delivers one coalesced event. Called with busMu held.
func (s *subscription) notify() {
	select {
	case s.events <- struct{}{}:
	default:
	}
}

func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		s.store.busMu.Lock()
		subs := s.store.subs[s.channel]
		for i, sub := range subs {
			if sub == s {
				s.store.subs[s.channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.store.busMu.Unlock()
		close(s.events)
	})
	return nil
}

var (
	_ store.List         = (*Store)(nil)
	_ store.ListNotifier = (*Store)(nil)
	_ store.Bus          = (*Store)(nil)
	_ store.Hash         = (*Store)(nil)
	_ store.Set          = (*Store)(nil)
)
