package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// RunTTLContract verifies expiry behavior: an explicit TTL is honored within
// the backend's declared precision, and ttl <= 0 falls back to the adapter's
// default TTL instead of dropping the write.
func RunTTLContract(t *testing.T, store Store, opts Options) {
	t.Helper()
	opts = opts.withDefaults(t.Name())
	caps := capabilitiesFor(store, opts)

	ttl := opts.TTL
	wait := opts.TTLWait
	// Backends with coarse precision (e.g. whole seconds) cannot honor a
	// 50ms TTL; stretch both to the declared granularity.
	if caps.TTLPrecision > ttl {
		ttl = caps.TTLPrecision
		wait = 3 * ttl
	}

	t.Run("Expiry", func(t *testing.T) {
		t.Helper()
		ctx := context.Background()
		k := newKeyer(opts.CaseName)

		if err := store.Set(ctx, k.key("ttl"), []byte("v"), ttl); err != nil {
			t.Fatalf("set ttl failed: %v", err)
		}
		if !opts.NullSemantics {
			body, ok, err := store.Get(ctx, k.key("ttl"))
			if err != nil || !ok || string(body) != "v" {
				t.Fatalf("expected value readable before expiry: ok=%v body=%q err=%v", ok, string(body), err)
			}
		}
		if err := waitForMiss(ctx, store, k.key("ttl"), ttl+wait); err != nil {
			t.Fatalf("expected ttl expiry: %v", err)
		}
	})

	t.Run("DefaultTTLFallback", func(t *testing.T) {
		t.Helper()
		if opts.NullSemantics {
			t.Skip("null semantics: nothing is stored")
		}
		ctx := context.Background()
		k := newKeyer(opts.CaseName)

		if err := store.Set(ctx, k.key("default-ttl"), []byte("v"), 0); err != nil {
			t.Fatalf("set with ttl=0 failed: %v", err)
		}
		body, ok, err := store.Get(ctx, k.key("default-ttl"))
		if err != nil || !ok || string(body) != "v" {
			t.Fatalf("expected ttl=0 to store under the default ttl: ok=%v body=%q err=%v", ok, string(body), err)
		}
	})
}

// waitForMiss polls until the key misses or the wait budget is spent.
func waitForMiss(ctx context.Context, store Store, key string, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		_, ok, err := store.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	_, ok, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("key %q still present after %s", key, wait)
	}
	return nil
}
