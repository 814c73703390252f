package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/goforj/storetest/storecontract"
)

// RunNamespaceContract verifies keyspace isolation for stores implementing
// NamespacedStore; it skips otherwise.
func RunNamespaceContract(t *testing.T, store Store, opts Options) {
	t.Helper()
	opts = opts.withDefaults(t.Name())
	if opts.NullSemantics {
		t.Skip("null semantics: nothing is stored")
	}
	if opts.SkipNamespace {
		t.Skip("namespaces disabled for this backend")
	}
	ns, ok := store.(storecontract.NamespacedStore)
	if !ok {
		t.Skip("store does not implement NamespacedStore")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)

	first := ns.WithNamespace(k.key("ns-one"))
	second := ns.WithNamespace(k.key("ns-two"))

	if err := first.Set(ctx, "shared", []byte("one"), time.Minute); err != nil {
		t.Fatalf("set in first namespace failed: %v", err)
	}
	if err := second.Set(ctx, "shared", []byte("two"), time.Minute); err != nil {
		t.Fatalf("set in second namespace failed: %v", err)
	}

	// Same key, different namespaces, different values.
	body, found, err := first.Get(ctx, "shared")
	if err != nil || !found || string(body) != "one" {
		t.Fatalf("first namespace read: ok=%v body=%q err=%v", found, string(body), err)
	}
	body, found, err = second.Get(ctx, "shared")
	if err != nil || !found || string(body) != "two" {
		t.Fatalf("second namespace read: ok=%v body=%q err=%v", found, string(body), err)
	}

	// A key written only in one namespace is invisible to the other.
	if err := first.Set(ctx, "solo", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set solo failed: %v", err)
	}
	if _, found, err := second.Get(ctx, "solo"); err != nil || found {
		t.Fatalf("expected solo key invisible across namespaces; ok=%v err=%v", found, err)
	}

	// Flush clears only the namespace it was called on.
	if err := first.Flush(ctx); err != nil {
		t.Fatalf("flush first namespace failed: %v", err)
	}
	if _, found, err := first.Get(ctx, "shared"); err != nil || found {
		t.Fatalf("expected first namespace flushed; ok=%v err=%v", found, err)
	}
	body, found, err = second.Get(ctx, "shared")
	if err != nil || !found || string(body) != "two" {
		t.Fatalf("expected second namespace to survive flush: ok=%v body=%q err=%v", found, string(body), err)
	}

	// Namespace names that are prefixes of one another must still be
	// disjoint keyspaces: "a" + key "b:c" is not "a:b" + key "c".
	outer := ns.WithNamespace(k.key("outer"))
	nested := ns.WithNamespace(k.key("outer") + ":inner")
	if err := outer.Set(ctx, "inner:deep", []byte("outer"), time.Minute); err != nil {
		t.Fatalf("set in outer namespace failed: %v", err)
	}
	if _, found, err := nested.Get(ctx, "deep"); err != nil || found {
		t.Fatalf("expected nested namespace isolated from outer; ok=%v err=%v", found, err)
	}
	if err := nested.Set(ctx, "deep", []byte("nested"), time.Minute); err != nil {
		t.Fatalf("set in nested namespace failed: %v", err)
	}
	body, found, err = outer.Get(ctx, "inner:deep")
	if err != nil || !found || string(body) != "outer" {
		t.Fatalf("expected outer value untouched by nested write: ok=%v body=%q err=%v", found, string(body), err)
	}

	// Derived stores report the namespace they write under.
	derived, ok := first.(storecontract.NamespacedStore)
	if !ok {
		t.Fatalf("expected derived store to remain a NamespacedStore")
	}
	if derived.Namespace() != k.key("ns-one") {
		t.Fatalf("expected derived namespace %q, got %q", k.key("ns-one"), derived.Namespace())
	}
}
