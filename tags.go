package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/goforj/storetest/storecontract"
)

// RunTagContract verifies tag-based invalidation for stores implementing
// TaggedStore; it skips otherwise.
func RunTagContract(t *testing.T, store Store, opts Options) {
	t.Helper()
	opts = opts.withDefaults(t.Name())
	if opts.NullSemantics {
		t.Skip("null semantics: nothing is stored")
	}
	if opts.SkipTags {
		t.Skip("tags disabled for this backend")
	}
	tagged, ok := store.(storecontract.TaggedStore)
	if !ok {
		t.Skip("store does not implement TaggedStore")
	}
	ctx := context.Background()
	k := newKeyer(opts.CaseName)
	tag := func(s string) string { return k.key("tag-" + s) }

	if err := tagged.SetTagged(ctx, k.key("t1"), []byte("1"), time.Minute, tag("red")); err != nil {
		t.Fatalf("set tagged t1 failed: %v", err)
	}
	if err := tagged.SetTagged(ctx, k.key("t2"), []byte("2"), time.Minute, tag("red"), tag("blue")); err != nil {
		t.Fatalf("set tagged t2 failed: %v", err)
	}
	if err := tagged.SetTagged(ctx, k.key("t3"), []byte("3"), time.Minute, tag("blue")); err != nil {
		t.Fatalf("set tagged t3 failed: %v", err)
	}

	// Tagged entries read back like plain entries.
	body, found, err := store.Get(ctx, k.key("t1"))
	if err != nil || !found || string(body) != "1" {
		t.Fatalf("get tagged entry failed: ok=%v body=%q err=%v", found, string(body), err)
	}

	// Invalidating one tag removes every member, including multi-tag
	// entries, and leaves other tags alone.
	if err := tagged.InvalidateTags(ctx, tag("red")); err != nil {
		t.Fatalf("invalidate tag failed: %v", err)
	}
	for _, key := range []string{k.key("t1"), k.key("t2")} {
		if _, found, err := store.Get(ctx, key); err != nil || found {
			t.Fatalf("expected %q invalidated; ok=%v err=%v", key, found, err)
		}
	}
	body, found, err = store.Get(ctx, k.key("t3"))
	if err != nil || !found || string(body) != "3" {
		t.Fatalf("expected untagged survivor intact: ok=%v body=%q err=%v", found, string(body), err)
	}

	// Invalidating an unknown tag is a no-op.
	if err := tagged.InvalidateTags(ctx, tag("never-used")); err != nil {
		t.Fatalf("expected unknown tag invalidation to be a no-op, got %v", err)
	}

	// A key re-written after invalidation does not inherit the dead tag.
	if err := store.Set(ctx, k.key("t1"), []byte("fresh"), time.Minute); err != nil {
		t.Fatalf("re-set after invalidation failed: %v", err)
	}
	if err := tagged.InvalidateTags(ctx, tag("red")); err != nil {
		t.Fatalf("second invalidation failed: %v", err)
	}
	body, found, err = store.Get(ctx, k.key("t1"))
	if err != nil || !found || string(body) != "fresh" {
		t.Fatalf("expected re-set key to survive stale tag invalidation: ok=%v body=%q err=%v", found, string(body), err)
	}

	// A key deleted and later re-created without tags must not die with its
	// old tag either.
	if err := tagged.SetTagged(ctx, k.key("t4"), []byte("4"), time.Minute, tag("green")); err != nil {
		t.Fatalf("set tagged t4 failed: %v", err)
	}
	if err := store.Delete(ctx, k.key("t4")); err != nil {
		t.Fatalf("delete tagged key failed: %v", err)
	}
	if err := store.Set(ctx, k.key("t4"), []byte("fresh"), time.Minute); err != nil {
		t.Fatalf("re-set after delete failed: %v", err)
	}
	if err := tagged.InvalidateTags(ctx, tag("green")); err != nil {
		t.Fatalf("invalidate stale tag failed: %v", err)
	}
	body, found, err = store.Get(ctx, k.key("t4"))
	if err != nil || !found || string(body) != "fresh" {
		t.Fatalf("expected re-created key to survive stale tag invalidation: ok=%v body=%q err=%v", found, string(body), err)
	}
}
