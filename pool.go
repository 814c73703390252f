package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goforj/storetest/cachepool"
	"github.com/goforj/storetest/storecontract"
)

// RunPoolContract verifies that the high-level pool facade behaves correctly
// on top of the store: typed round-trips, compute-on-miss memoization, pull,
// deferred writes, and observer events. A store that passes the store
// contract is expected to pass this as well.
func RunPoolContract(t *testing.T, store Store, opts Options) {
	t.Helper()
	opts = opts.withDefaults(t.Name())
	if opts.NullSemantics {
		t.Skip("null semantics: pool expectations do not hold")
	}

	t.Run("StringRoundTrip", func(t *testing.T) {
		t.Helper()
		ctx := context.Background()
		k := newKeyer(opts.CaseName)
		pool := cachepool.New(store)

		if err := pool.SetString(ctx, k.key("name"), "Ada", time.Minute); err != nil {
			t.Fatalf("set string failed: %v", err)
		}
		name, ok, err := pool.GetString(ctx, k.key("name"))
		if err != nil || !ok || name != "Ada" {
			t.Fatalf("get string failed: ok=%v name=%q err=%v", ok, name, err)
		}
	})

	t.Run("JSONRoundTrip", func(t *testing.T) {
		t.Helper()
		ctx := context.Background()
		k := newKeyer(opts.CaseName)
		pool := cachepool.New(store)

		type payload struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}
		in := payload{ID: 42, Name: "Ada"}
		if err := cachepool.SetJSON(ctx, pool, k.key("json"), in, time.Minute); err != nil {
			t.Fatalf("set json failed: %v", err)
		}
		out, ok, err := cachepool.GetJSON[payload](ctx, pool, k.key("json"))
		if err != nil || !ok {
			t.Fatalf("get json failed: ok=%v err=%v", ok, err)
		}
		if out != in {
			t.Fatalf("expected %+v, got %+v", in, out)
		}
	})

	t.Run("RememberComputesOnce", func(t *testing.T) {
		t.Helper()
		ctx := context.Background()
		k := newKeyer(opts.CaseName)
		pool := cachepool.New(store)

		calls := 0
		compute := func(context.Context) ([]byte, error) {
			calls++
			return []byte("computed"), nil
		}
		for i := 0; i < 3; i++ {
			body, err := pool.Remember(ctx, k.key("memo"), time.Minute, compute)
			if err != nil {
				t.Fatalf("remember failed: %v", err)
			}
			if string(body) != "computed" {
				t.Fatalf("unexpected remembered value %q", string(body))
			}
		}
		if calls != 1 {
			t.Fatalf("expected loader called once, got %d", calls)
		}
	})

	t.Run("Pull", func(t *testing.T) {
		t.Helper()
		ctx := context.Background()
		k := newKeyer(opts.CaseName)
		pool := cachepool.New(store)

		if err := pool.Set(ctx, k.key("pull"), []byte("v"), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		body, ok, err := pool.Pull(ctx, k.key("pull"))
		if err != nil || !ok || string(body) != "v" {
			t.Fatalf("pull failed: ok=%v body=%q err=%v", ok, string(body), err)
		}
		if _, ok, err := pool.Get(ctx, k.key("pull")); err != nil || ok {
			t.Fatalf("expected pulled key removed; ok=%v err=%v", ok, err)
		}
	})

	t.Run("DeferredCommit", func(t *testing.T) {
		t.Helper()
		ctx := context.Background()
		k := newKeyer(opts.CaseName)
		pool := cachepool.New(store)

		pool.SaveDeferred(k.key("d1"), []byte("1"), time.Minute)
		pool.SaveDeferred(k.key("d2"), []byte("2"), time.Minute)
		if n := pool.Deferred(); n != 2 {
			t.Fatalf("expected 2 deferred writes, got %d", n)
		}
		if _, ok, err := pool.Get(ctx, k.key("d1")); err != nil || ok {
			t.Fatalf("expected deferred write invisible before commit; ok=%v err=%v", ok, err)
		}
		if err := pool.Commit(ctx); err != nil {
			t.Fatalf("commit failed: %v", err)
		}
		if n := pool.Deferred(); n != 0 {
			t.Fatalf("expected queue drained, got %d", n)
		}
		for key, want := range map[string]string{k.key("d1"): "1", k.key("d2"): "2"} {
			body, ok, err := pool.Get(ctx, key)
			if err != nil || !ok || string(body) != want {
				t.Fatalf("expected committed %q=%q: ok=%v body=%q err=%v", key, want, ok, string(body), err)
			}
		}

		pool.SaveDeferred(k.key("d3"), []byte("3"), time.Minute)
		pool.Discard()
		if err := pool.Commit(ctx); err != nil {
			t.Fatalf("commit after discard failed: %v", err)
		}
		if _, ok, err := pool.Get(ctx, k.key("d3")); err != nil || ok {
			t.Fatalf("expected discarded write absent; ok=%v err=%v", ok, err)
		}
	})

	t.Run("ObserverEvents", func(t *testing.T) {
		t.Helper()
		ctx := context.Background()
		k := newKeyer(opts.CaseName)

		var (
			mu  sync.Mutex
			ops []string
		)
		pool := cachepool.New(store).WithObserver(cachepool.ObserverFunc(
			func(_ context.Context, op, _ string, _ bool, _ error, _ time.Duration, driver storecontract.Driver) {
				if driver != store.Driver() {
					t.Errorf("expected driver %q in event, got %q", store.Driver(), driver)
				}
				mu.Lock()
				ops = append(ops, op)
				mu.Unlock()
			}))

		if err := pool.Set(ctx, k.key("obs"), []byte("v"), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if _, _, err := pool.Get(ctx, k.key("obs")); err != nil {
			t.Fatalf("get failed: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(ops) != 2 || ops[0] != "set" || ops[1] != "get" {
			t.Fatalf("expected [set get] events, got %v", ops)
		}
	})
}
