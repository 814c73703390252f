package storefake

import (
	"context"
	"testing"
	"time"
)

func TestSpyCountsOperations(t *testing.T) {
	spy := NewSpy(NewMemory())
	ctx := context.Background()

	if err := spy.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, _, err := spy.Get(ctx, "a"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, _, err := spy.Get(ctx, "a"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := spy.DeleteMany(ctx, "a", "b"); err != nil {
		t.Fatalf("delete many failed: %v", err)
	}

	spy.AssertCalled(t, OpSet, "a", 1)
	spy.AssertCalled(t, OpGet, "a", 2)
	spy.AssertCalled(t, OpDeleteMany, "b", 1)
	spy.AssertNotCalled(t, OpDelete, "a")
	spy.AssertTotal(t, OpGet, 2)

	spy.Reset()
	spy.AssertTotal(t, OpGet, 0)
}

func TestSpyDelegates(t *testing.T) {
	inner := NewMemory()
	spy := NewSpy(inner)
	ctx := context.Background()

	if spy.Driver() != inner.Driver() {
		t.Fatalf("expected driver passthrough")
	}
	if err := spy.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	body, ok, err := inner.Get(ctx, "k")
	if err != nil || !ok || string(body) != "v" {
		t.Fatalf("expected write visible through inner store: ok=%v body=%q err=%v", ok, string(body), err)
	}
	if spy.Unwrap() != inner {
		t.Fatalf("expected Unwrap to return the inner store")
	}
}
