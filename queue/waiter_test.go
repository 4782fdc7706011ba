package queue

import (
	"sync"
	"testing"
)

func TestWaiterResolveOnce(t *testing.T) {
	w := newWaiter()
	if !w.resolve([]byte("a")) {
		t.Fatalf("first resolve should win")
	}
	if w.resolve([]byte("b")) {
		t.Fatalf("second resolve should fail")
	}
	b, ok := w.take()
	if !ok || string(b) != "a" {
		t.Fatalf("take = %q ok=%v", b, ok)
	}
	select {
	case <-w.done:
	default:
		t.Fatalf("done should be closed after resolve")
	}
}

func TestWaiterCancelBeatsResolve(t *testing.T) {
	w := newWaiter()
	if !w.cancel() {
		t.Fatalf("cancel should win")
	}
	if w.resolve([]byte("x")) {
		t.Fatalf("resolve after cancel must report false so the item is kept")
	}
	if _, ok := w.take(); ok {
		t.Fatalf("canceled waiter must not expose an item")
	}
}

func TestWaiterResolveBeatsCancel(t *testing.T) {
	w := newWaiter()
	if !w.resolve([]byte("x")) {
		t.Fatalf("resolve should win")
	}
	if w.cancel() {
		t.Fatalf("cancel after resolve must report false")
	}
	if b, ok := w.take(); !ok || string(b) != "x" {
		t.Fatalf("resolved item must survive a late cancel")
	}
}

func TestWaiterRaceExactlyOneWinner(t *testing.T) {
	for i := 0; i < 200; i++ {
		w := newWaiter()
		var wg sync.WaitGroup
		var resolved, canceled bool
		wg.Add(2)
		go func() { defer wg.Done(); resolved = w.resolve([]byte("v")) }()
		go func() { defer wg.Done(); canceled = w.cancel() }()
		wg.Wait()
		if resolved == canceled {
			t.Fatalf("iteration %d: resolved=%v canceled=%v, want exactly one winner", i, resolved, canceled)
		}
		if _, ok := w.take(); ok != resolved {
			t.Fatalf("iteration %d: take ok=%v, want %v", i, ok, resolved)
		}
	}
}
