package storefake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goforj/storetest/storecontract"
)

func TestNullDiscardsWrites(t *testing.T) {
	store := NewNull()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	_, ok, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("expected a miss after set")
	}

	added, err := store.Add(ctx, "k", []byte("v"), time.Minute)
	if err != nil || !added {
		t.Fatalf("expected add to report success: added=%v err=%v", added, err)
	}
	n, err := store.Increment(ctx, "n", 5, time.Minute)
	if err != nil || n != 0 {
		t.Fatalf("expected increment to stay at zero: n=%d err=%v", n, err)
	}
}

func TestErrStoreFailsEveryCall(t *testing.T) {
	sentinel := errors.New("backend down")
	store := NewErrStore(storecontract.DriverRedis, sentinel)
	ctx := context.Background()

	if store.Driver() != storecontract.DriverRedis {
		t.Fatalf("expected driver identity to survive")
	}
	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, sentinel) {
		t.Fatalf("get: expected sentinel, got %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, sentinel) {
		t.Fatalf("set: expected sentinel, got %v", err)
	}
	if _, err := store.Decrement(ctx, "k", 1, 0); !errors.Is(err, sentinel) {
		t.Fatalf("decrement: expected sentinel, got %v", err)
	}
	if err := store.Flush(ctx); !errors.Is(err, sentinel) {
		t.Fatalf("flush: expected sentinel, got %v", err)
	}
}
