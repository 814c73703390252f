package storetest

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/goforj/storetest/storecontract"
)

// RunIterationContract verifies key enumeration for stores implementing
// IterableStore; it skips otherwise.
func RunIterationContract(t *testing.T, store Store, opts Options) {
	t.Helper()
	opts = opts.withDefaults(t.Name())
	if opts.NullSemantics {
		t.Skip("null semantics: nothing is stored")
	}
	if opts.SkipIteration {
		t.Skip("iteration disabled for this backend")
	}
	it, ok := store.(storecontract.IterableStore)
	if !ok {
		t.Skip("store does not implement IterableStore")
	}
	caps := capabilitiesFor(store, opts)
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	for _, key := range []string{k.key("list:a"), k.key("list:b"), k.key("other:c")} {
		if err := store.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("set %q failed: %v", key, err)
		}
	}

	keys, err := it.Keys(ctx, k.key("list:"))
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	sort.Strings(keys)
	want := []string{k.key("list:a"), k.key("list:b")}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("expected keys %v, got %v", want, keys)
	}

	all, err := it.Keys(ctx, k.key(""))
	if err != nil {
		t.Fatalf("keys with run prefix failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 keys under run prefix, got %v", all)
	}

	// Expired entries must disappear from enumeration. Lazy-expiry backends
	// purge on read, so force a read before asserting.
	ttl := opts.TTL
	if caps.TTLPrecision > ttl {
		ttl = caps.TTLPrecision
	}
	if err := store.Set(ctx, k.key("list:expiring"), []byte("v"), ttl); err != nil {
		t.Fatalf("set expiring key failed: %v", err)
	}
	if err := waitForMiss(ctx, store, k.key("list:expiring"), ttl+opts.TTLWait); err != nil {
		t.Fatalf("expected expiry before listing: %v", err)
	}
	keys, err = it.Keys(ctx, k.key("list:"))
	if err != nil {
		t.Fatalf("keys after expiry failed: %v", err)
	}
	for _, key := range keys {
		if key == k.key("list:expiring") {
			t.Fatalf("expected expired key absent from enumeration, got %v", keys)
		}
	}
}
