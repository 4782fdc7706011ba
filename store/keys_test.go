package store

import "testing"

func TestKeyDerivation(t *testing.T) {
	if got := QueueKey("app", "jobs"); got != "app:queue:jobs" {
		t.Fatalf("queue key: %q", got)
	}
	if got := QueueChannel("app", "jobs"); got != "app:queue:jobs:wake" {
		t.Fatalf("queue channel: %q", got)
	}
	if got := MapKey("app", "users"); got != "app:map:users" {
		t.Fatalf("map key: %q", got)
	}
	if got := SetKey("app", "tags"); got != "app:set:tags" {
		t.Fatalf("set key: %q", got)
	}
}

func TestKeysDistinctAcrossKinds(t *testing.T) {
	// A queue and a map with the same name must never collide.
	seen := map[string]bool{}
	for _, k := range []string{
		QueueKey("ns", "x"), QueueChannel("ns", "x"), MapKey("ns", "x"), SetKey("ns", "x"),
	} {
		if seen[k] {
			t.Fatalf("duplicate key %q", k)
		}
		seen[k] = true
	}
}
