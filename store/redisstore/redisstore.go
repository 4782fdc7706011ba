// Package redisstore implements the store contracts over Redis.
//
// Mapping:
//
//	List  → RPUSH / LPOP / LLEN
//	Bus   → PUBLISH / SUBSCRIBE
//	Hash  → HSET / HGET / HDEL / HLEN
//	Set   → SADD / SREM / SISMEMBER / SCARD / SMEMBERS
//
// PushNotify couples RPUSH and PUBLISH in one MULTI/EXEC pipeline so a queue
// push and its wake signal reach the server together.
package redisstore

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/fsnader/elephant/store"
)

// Store adapts a go-redis client to the store contracts. The client may be a
// single-node, sentinel, or cluster client.
type Store struct {
	rdb redis.UniversalClient
}

// New wraps an existing client. The caller owns the client's lifecycle.
func New(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Push(ctx context.Context, key string, val []byte) error {
	return s.rdb.RPush(ctx, key, val).Err()
}

func (s *Store) Pop(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.LPop(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) Len(ctx context.Context, key string) (int64, error) {
	return s.rdb.LLen(ctx, key).Result()
}

// PushNotify issues RPUSH and PUBLISH transactionally. If the pipeline fails
// neither the element nor the notification was applied, so the caller can
// surface a single transport error.
func (s *Store) PushNotify(ctx context.Context, key, channel string, val []byte) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, val)
		p.Publish(ctx, channel, nil)
		return nil
	})
	return err
}

func (s *Store) Publish(ctx context.Context, channel string, payload []byte) error {
	return s.rdb.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a Redis subscription and converts incoming messages to
// coalesced empty events.
func (s *Store) Subscribe(ctx context.Context, channel string) (store.Subscription, error) {
	ps := s.rdb.Subscribe(ctx, channel)
	// Force the SUBSCRIBE round trip so a dead server fails here, not on
	// first receive.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	sub := &subscription{ps: ps, events: make(chan struct{}, 1)}
	go sub.pump()
	return sub, nil
}

func (s *Store) HSet(ctx context.Context, key, field string, val []byte) error {
	return s.rdb.HSet(ctx, key, field, val).Err()
}

func (s *Store) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	b, err := s.rdb.HGet(ctx, key, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) HDel(ctx context.Context, key, field string) error {
	return s.rdb.HDel(ctx, key, field).Err()
}

func (s *Store) HLen(ctx context.Context, key string) (int64, error) {
	return s.rdb.HLen(ctx, key).Result()
}

func (s *Store) SAdd(ctx context.Context, key string, member []byte) error {
	return s.rdb.SAdd(ctx, key, member).Err()
}

func (s *Store) SRem(ctx context.Context, key string, member []byte) error {
	return s.rdb.SRem(ctx, key, member).Err()
}

func (s *Store) SIsMember(ctx context.Context, key string, member []byte) (bool, error) {
	return s.rdb.SIsMember(ctx, key, member).Result()
}

func (s *Store) SCard(ctx context.Context, key string) (int64, error) {
	return s.rdb.SCard(ctx, key).Result()
}

func (s *Store) SMembers(ctx context.Context, key string) ([][]byte, error) {
	vals, err := s.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

type subscription struct {
	ps        *redis.PubSub
	events    chan struct{}
	closeOnce sync.Once
}

func (s *subscription) Events() <-chan struct{} { return s.events }

// pump converts messages into coalesced wake events. A buffered slot of one
// is enough: a notification arriving while a drain is running leaves exactly
// one pending event, and redundant drains are harmless.
func (s *subscription) pump() {
	defer close(s.events)
	for range s.ps.Channel() {
		select {
		case s.events <- struct{}{}:
		default:
		}
	}
}

func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.ps.Close() })
	return err
}

var (
	_ store.List         = (*Store)(nil)
	_ store.ListNotifier = (*Store)(nil)
	_ store.Bus          = (*Store)(nil)
	_ store.Hash         = (*Store)(nil)
	_ store.Set          = (*Store)(nil)
)
