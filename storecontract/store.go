package storecontract

import (
	"context"
	"time"
)

// Store is the byte-oriented cache storage contract the conformance suite
// validates. Implementations must be safe for concurrent use and must be
// byte-for-byte transparent: Get returns exactly the bytes previously passed
// to Set for the same key, with no prepended metadata or re-encoding.
//
// A miss is reported as (nil, false, nil); errors are reserved for IO and
// backend failures. A ttl <= 0 means "use the adapter's default TTL".
type Store interface {
	Driver() Driver
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
	Decrement(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
}

// IterableStore is implemented by adapters that can enumerate live keys.
// Keys returns every non-expired key beginning with prefix; pass "" for all.
// Adapters with lazy expiry may report expired-but-unpurged keys (declare it
// via Capabilities.LazyExpiry).
type IterableStore interface {
	Store
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// TaggedStore is implemented by adapters supporting tag-based invalidation.
// A tagged entry is removed when any one of its tags is invalidated.
type TaggedStore interface {
	Store
	SetTagged(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	InvalidateTags(ctx context.Context, tags ...string) error
}

// NamespacedStore is implemented by adapters that can derive isolated views
// over a shared backend. Keys written through one namespace must be invisible
// to every other, and Flush must only clear the namespace it was called on.
type NamespacedStore interface {
	Store
	Namespace() string
	WithNamespace(namespace string) Store
}
