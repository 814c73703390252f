package storetest

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goforj/storetest/storecontract"
)

// Store is the contract required by the suite entrypoints.
type Store = storecontract.Store

// RunStoreContract runs the backend-agnostic store contract as named
// subtests. Optional capabilities (iteration, tags, namespaces) are detected
// by interface assertion and skipped when the store does not implement them.
func RunStoreContract(t *testing.T, store Store, opts Options) {
	t.Helper()
	opts = opts.withDefaults(t.Name())
	caps := capabilitiesFor(store, opts)

	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, store, opts) })
	t.Run("MissingKey", func(t *testing.T) { testMissingKey(t, store, opts) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, store, opts) })
	t.Run("ValueIsolation", func(t *testing.T) { testValueIsolation(t, store, opts) })
	t.Run("ZeroLengthValue", func(t *testing.T) { testZeroLengthValue(t, store, opts) })
	t.Run("BinaryValues", func(t *testing.T) { testBinaryValues(t, store, opts) })
	t.Run("KeyCharacters", func(t *testing.T) { testKeyCharacters(t, store, opts, caps) })
	t.Run("AddOnlyWhenMissing", func(t *testing.T) { testAdd(t, store, opts) })
	t.Run("Counters", func(t *testing.T) { testCounters(t, store, opts) })
	t.Run("CounterConcurrency", func(t *testing.T) { testCounterConcurrency(t, store, opts, caps) })
	t.Run("ValueSizeLimit", func(t *testing.T) { testValueSizeLimit(t, store, opts, caps) })
	t.Run("DeleteAndDeleteMany", func(t *testing.T) { testDelete(t, store, opts) })
	t.Run("Flush", func(t *testing.T) { testFlush(t, store, opts) })
	t.Run("TTL", func(t *testing.T) { RunTTLContract(t, store, opts) })
	t.Run("Iteration", func(t *testing.T) { RunIterationContract(t, store, opts) })
	t.Run("Tags", func(t *testing.T) { RunTagContract(t, store, opts) })
	t.Run("Namespace", func(t *testing.T) { RunNamespaceContract(t, store, opts) })
}

func testRoundTrip(t *testing.T, store Store, opts Options) {
	t.Helper()
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	if err := store.Set(ctx, k.key("alpha"), []byte("value"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	body, ok, err := store.Get(ctx, k.key("alpha"))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if opts.NullSemantics {
		if ok {
			t.Fatalf("expected miss for null semantics")
		}
		return
	}
	if !ok || string(body) != "value" {
		t.Fatalf("unexpected get result: ok=%v body=%q", ok, string(body))
	}
}

func testMissingKey(t *testing.T, store Store, opts Options) {
	t.Helper()
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	body, ok, err := store.Get(ctx, k.key("never-written"))
	if err != nil {
		t.Fatalf("expected miss without error, got %v", err)
	}
	if ok {
		t.Fatalf("expected miss, got body=%q", string(body))
	}
}

func testOverwrite(t *testing.T, store Store, opts Options) {
	t.Helper()
	if opts.NullSemantics {
		t.Skip("null semantics: writes are discarded")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	if err := store.Set(ctx, k.key("ow"), []byte("first"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set(ctx, k.key("ow"), []byte("second"), time.Minute); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	body, ok, err := store.Get(ctx, k.key("ow"))
	if err != nil || !ok {
		t.Fatalf("get after overwrite failed: ok=%v err=%v", ok, err)
	}
	if string(body) != "second" {
		t.Fatalf("expected overwritten value, got %q", string(body))
	}
}

func testValueIsolation(t *testing.T, store Store, opts Options) {
	t.Helper()
	if opts.NullSemantics {
		t.Skip("null semantics: nothing is stored")
	}
	if opts.SkipCloneCheck {
		t.Skip("clone check disabled for this backend")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	written := []byte("value")
	if err := store.Set(ctx, k.key("iso"), written, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	// Mutating the caller's slice must not reach the store.
	written[0] = 'X'

	body, ok, err := store.Get(ctx, k.key("iso"))
	if err != nil || !ok || string(body) != "value" {
		t.Fatalf("expected stored value unchanged, got ok=%v body=%q err=%v", ok, string(body), err)
	}

	// Mutating a returned slice must not reach the store either.
	body[0] = 'Y'
	body2, ok, err := store.Get(ctx, k.key("iso"))
	if err != nil || !ok || string(body2) != "value" {
		t.Fatalf("expected second read unchanged, got ok=%v body=%q err=%v", ok, string(body2), err)
	}
}

func testZeroLengthValue(t *testing.T, store Store, opts Options) {
	t.Helper()
	if opts.NullSemantics {
		t.Skip("null semantics: nothing is stored")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	if err := store.Set(ctx, k.key("empty"), []byte{}, time.Minute); err != nil {
		t.Fatalf("set empty value failed: %v", err)
	}
	body, ok, err := store.Get(ctx, k.key("empty"))
	if err != nil {
		t.Fatalf("get empty value failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected hit for zero-length value")
	}
	if len(body) != 0 {
		t.Fatalf("expected zero-length value, got %q", string(body))
	}
}

func testBinaryValues(t *testing.T, store Store, opts Options) {
	t.Helper()
	if opts.NullSemantics {
		t.Skip("null semantics: nothing is stored")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	value := make([]byte, 256)
	for i := range value {
		value[i] = byte(i)
	}
	if err := store.Set(ctx, k.key("bin"), value, time.Minute); err != nil {
		t.Fatalf("set binary value failed: %v", err)
	}
	body, ok, err := store.Get(ctx, k.key("bin"))
	if err != nil || !ok {
		t.Fatalf("get binary value failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(body, value) {
		t.Fatalf("binary value not byte-for-byte transparent")
	}
}

func testKeyCharacters(t *testing.T, store Store, opts Options, caps storecontract.Capabilities) {
	t.Helper()
	if opts.NullSemantics {
		t.Skip("null semantics: nothing is stored")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	keys := []string{
		k.key("colon:in:key"),
		k.key("slash/in/key"),
		k.key("dotted.key"),
		k.key("unicode-éè"),
	}
	if long := longKey(k, caps.MaxKeyLength); long != "" {
		keys = append(keys, long)
	}
	for _, key := range keys {
		if err := store.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("set key %q failed: %v", key, err)
		}
		body, ok, err := store.Get(ctx, key)
		if err != nil || !ok || string(body) != "v" {
			t.Fatalf("get key %q failed: ok=%v body=%q err=%v", key, ok, string(body), err)
		}
	}
}

// longKey builds a key near the declared maximum, capped at 128 bytes so
// unbounded backends still get a meaningful check.
func longKey(k keyer, maxKeyLength int) string {
	limit := 128
	if maxKeyLength > 0 && maxKeyLength < limit {
		limit = maxKeyLength
	}
	base := k.key("long-")
	if len(base) >= limit {
		return ""
	}
	return base + strings.Repeat("x", limit-len(base))
}

func testAdd(t *testing.T, store Store, opts Options) {
	t.Helper()
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	created, err := store.Add(ctx, k.key("once"), []byte("first"), time.Minute)
	if err != nil {
		t.Fatalf("add first failed: %v", err)
	}
	if !created {
		t.Fatalf("expected first add to create")
	}
	created, err = store.Add(ctx, k.key("once"), []byte("second"), time.Minute)
	if err != nil {
		t.Fatalf("add duplicate failed: %v", err)
	}
	if opts.NullSemantics {
		if !created {
			t.Fatalf("expected null-like add duplicate to report created=true")
		}
		return
	}
	if created {
		t.Fatalf("expected duplicate add to report created=false")
	}
	body, ok, err := store.Get(ctx, k.key("once"))
	if err != nil || !ok || string(body) != "first" {
		t.Fatalf("expected first value to survive duplicate add, got ok=%v body=%q err=%v", ok, string(body), err)
	}
}

func testCounters(t *testing.T, store Store, opts Options) {
	t.Helper()
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	n, err := store.Increment(ctx, k.key("counter"), 3, time.Minute)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if opts.NullSemantics {
		if n != 0 {
			t.Fatalf("expected null-like increment to return 0, got %d", n)
		}
	} else if n != 3 {
		t.Fatalf("expected increment=3, got %d", n)
	}
	n, err = store.Decrement(ctx, k.key("counter"), 1, time.Minute)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if opts.NullSemantics {
		if n != 0 {
			t.Fatalf("expected null-like decrement to return 0, got %d", n)
		}
		return
	}
	if n != 2 {
		t.Fatalf("expected decrement=2, got %d", n)
	}
}

func testCounterConcurrency(t *testing.T, store Store, opts Options, caps storecontract.Capabilities) {
	t.Helper()
	if opts.NullSemantics {
		t.Skip("null semantics: counters pin to zero")
	}
	if !caps.AtomicCounters {
		t.Skip("store does not declare atomic counters")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	const (
		workers   = 8
		perWorker = 25
	)
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := store.Increment(ctx, k.key("shared-counter"), 1, time.Minute); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		t.Fatalf("concurrent increment failed: %v", err)
	}

	n, err := store.Increment(ctx, k.key("shared-counter"), 0, time.Minute)
	if err != nil {
		t.Fatalf("read counter failed: %v", err)
	}
	if n != workers*perWorker {
		t.Fatalf("expected counter=%d after concurrent increments, got %d", workers*perWorker, n)
	}
}

func testValueSizeLimit(t *testing.T, store Store, opts Options, caps storecontract.Capabilities) {
	t.Helper()
	if opts.NullSemantics {
		t.Skip("null semantics: nothing is stored")
	}
	if caps.MaxValueBytes <= 0 {
		t.Skip("store declares no value size limit")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	atLimit := bytes.Repeat([]byte{'v'}, caps.MaxValueBytes)
	if err := store.Set(ctx, k.key("at-limit"), atLimit, time.Minute); err != nil {
		t.Fatalf("set at declared limit failed: %v", err)
	}
	body, ok, err := store.Get(ctx, k.key("at-limit"))
	if err != nil || !ok || !bytes.Equal(body, atLimit) {
		t.Fatalf("get at-limit value failed: ok=%v len=%d err=%v", ok, len(body), err)
	}

	over := bytes.Repeat([]byte{'v'}, caps.MaxValueBytes+1)
	if err := store.Set(ctx, k.key("over-limit"), over, time.Minute); err == nil {
		t.Fatalf("expected set above declared limit to fail")
	}
}

func testDelete(t *testing.T, store Store, opts Options) {
	t.Helper()
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	if err := store.Set(ctx, k.key("a"), []byte("1"), time.Minute); err != nil {
		t.Fatalf("set a failed: %v", err)
	}
	if err := store.Set(ctx, k.key("b"), []byte("2"), time.Minute); err != nil {
		t.Fatalf("set b failed: %v", err)
	}
	if err := store.Set(ctx, k.key("c"), []byte("3"), time.Minute); err != nil {
		t.Fatalf("set c failed: %v", err)
	}
	if err := store.Delete(ctx, k.key("a")); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.DeleteMany(ctx, k.key("b"), k.key("c")); err != nil {
		t.Fatalf("delete many failed: %v", err)
	}
	for _, key := range []string{k.key("a"), k.key("b"), k.key("c")} {
		if _, ok, err := store.Get(ctx, key); err != nil || ok {
			t.Fatalf("expected key %q deleted; ok=%v err=%v", key, ok, err)
		}
	}
	// Deleting what is already gone must be a no-op, not an error.
	if err := store.Delete(ctx, k.key("a")); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
	if err := store.DeleteMany(ctx, k.key("b"), k.key("missing")); err != nil {
		t.Fatalf("expected idempotent delete many, got %v", err)
	}
}

func testFlush(t *testing.T, store Store, opts Options) {
	t.Helper()
	if opts.SkipFlush {
		t.Skip("flush disabled for this backend")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	if err := store.Set(ctx, k.key("flush"), []byte("x"), time.Minute); err != nil {
		t.Fatalf("set flush failed: %v", err)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if _, ok, err := store.Get(ctx, k.key("flush")); err != nil || ok {
		t.Fatalf("expected flush to clear key; ok=%v err=%v", ok, err)
	}
}
