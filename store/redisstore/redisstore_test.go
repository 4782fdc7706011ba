package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tests in this file need a live server; set ELEPHANT_REDIS_ADDR to run them.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("ELEPHANT_REDIS_ADDR")
	if addr == "" {
		t.Skip("ELEPHANT_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	return New(rdb)
}

func testKey(t *testing.T) string {
	return "elephant-test:" + t.Name() + ":" + time.Now().Format("150405.000000000")
}

func TestListRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := testKey(t)

	for _, v := range []string{"a", "b"} {
		if err := s.Push(ctx, key, []byte(v)); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	n, err := s.Len(ctx, key)
	if err != nil || n != 2 {
		t.Fatalf("len = %d (%v)", n, err)
	}
	v, ok, err := s.Pop(ctx, key)
	if err != nil || !ok || string(v) != "a" {
		t.Fatalf("pop = %q ok=%v err=%v", v, ok, err)
	}
	v, ok, err = s.Pop(ctx, key)
	if err != nil || !ok || string(v) != "b" {
		t.Fatalf("pop = %q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ = s.Pop(ctx, key); ok {
		t.Fatalf("expected empty list")
	}
}

func TestPushNotifyWakesSubscriber(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	key := testKey(t)
	channel := key + ":wake"

	sub, err := s.Subscribe(ctx, channel)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	if err := s.PushNotify(ctx, key, channel, []byte("x")); err != nil {
		t.Fatalf("push notify: %v", err)
	}
	select {
	case <-sub.Events():
	case <-time.After(2 * time.Second):
		t.Fatalf("no wake event received")
	}
	v, ok, err := s.Pop(ctx, key)
	if err != nil || !ok || string(v) != "x" {
		t.Fatalf("pop after push notify: %q ok=%v err=%v", v, ok, err)
	}
}

func TestHashAndSetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	hkey, skey := testKey(t)+":h", testKey(t)+":s"

	if err := s.HSet(ctx, hkey, "f", []byte("v")); err != nil {
		t.Fatalf("hset: %v", err)
	}
	v, ok, err := s.HGet(ctx, hkey, "f")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("hget = %q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := s.HGet(ctx, hkey, "missing"); ok {
		t.Fatalf("missing field should report absent")
	}

	if err := s.SAdd(ctx, skey, []byte("m")); err != nil {
		t.Fatalf("sadd: %v", err)
	}
	ok, err = s.SIsMember(ctx, skey, []byte("m"))
	if err != nil || !ok {
		t.Fatalf("sismember = %v err=%v", ok, err)
	}
	n, err := s.SCard(ctx, skey)
	if err != nil || n != 1 {
		t.Fatalf("scard = %d err=%v", n, err)
	}
}
