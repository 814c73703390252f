package cachepool

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/goforj/storetest/storecontract"
)

const defaultTTL = 5 * time.Minute

// Pool provides an ergonomic cache API on top of a Store: typed accessors,
// compute-on-miss helpers, and deferred writes committed in one call.
// Any store that passes the conformance suite gets the full Pool surface
// for free.
type Pool struct {
	store      storecontract.Store
	defaultTTL time.Duration
	observer   Observer

	mu       sync.Mutex
	deferred []deferredWrite
}

type deferredWrite struct {
	key   string
	value []byte
	ttl   time.Duration
}

// New creates a pool bound to a concrete store.
func New(store storecontract.Store) *Pool {
	return NewWithTTL(store, defaultTTL)
}

// NewWithTTL lets callers override the default TTL applied when ttl <= 0.
func NewWithTTL(store storecontract.Store, ttl time.Duration) *Pool {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Pool{store: store, defaultTTL: ttl}
}

// WithObserver attaches an observer to receive operation events.
func (p *Pool) WithObserver(o Observer) *Pool {
	p.observer = o
	return p
}

// Store returns the underlying store implementation.
func (p *Pool) Store() storecontract.Store { return p.store }

// Driver reports the underlying store driver.
func (p *Pool) Driver() storecontract.Driver { return p.store.Driver() }

// Get returns raw bytes for key when present.
func (p *Pool) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	body, ok, err := p.store.Get(ctx, key)
	p.observe(ctx, "get", key, ok, err, start)
	return body, ok, err
}

// GetString returns a UTF-8 string value for key when present.
func (p *Pool) GetString(ctx context.Context, key string) (string, bool, error) {
	body, ok, err := p.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(body), true, nil
}

// GetJSON decodes the stored JSON value for key into T.
func GetJSON[T any](ctx context.Context, pool *Pool, key string) (T, bool, error) {
	var zero T
	body, ok, err := pool.Get(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// Set stores raw bytes under key.
func (p *Pool) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := p.store.Set(ctx, key, value, p.resolveTTL(ttl))
	p.observe(ctx, "set", key, err == nil, err, start)
	return err
}

// SetString stores a string value under key.
func (p *Pool) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return p.Set(ctx, key, []byte(value), ttl)
}

// SetJSON stores value as JSON under key.
func SetJSON[T any](ctx context.Context, pool *Pool, key string, value T, ttl time.Duration) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return pool.Set(ctx, key, body, ttl)
}

// Add stores value only when key is absent; created reports whether it wrote.
func (p *Pool) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	start := time.Now()
	created, err := p.store.Add(ctx, key, value, p.resolveTTL(ttl))
	p.observe(ctx, "add", key, created, err, start)
	return created, err
}

// Increment adds delta to the numeric value at key and returns the result.
func (p *Pool) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	start := time.Now()
	value, err := p.store.Increment(ctx, key, delta, p.resolveTTL(ttl))
	p.observe(ctx, "inc", key, err == nil, err, start)
	return value, err
}

// Decrement subtracts delta from the numeric value at key.
func (p *Pool) Decrement(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	start := time.Now()
	value, err := p.store.Decrement(ctx, key, delta, p.resolveTTL(ttl))
	p.observe(ctx, "dec", key, err == nil, err, start)
	return value, err
}

// Pull returns the value for key and removes it in the same call.
func (p *Pool) Pull(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	body, ok, err := p.store.Get(ctx, key)
	if err != nil || !ok {
		p.observe(ctx, "pull", key, false, err, start)
		return nil, ok, err
	}
	if err := p.store.Delete(ctx, key); err != nil {
		p.observe(ctx, "pull", key, true, err, start)
		return nil, false, err
	}
	p.observe(ctx, "pull", key, true, nil, start)
	return body, true, nil
}

// Delete removes key.
func (p *Pool) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := p.store.Delete(ctx, key)
	p.observe(ctx, "delete", key, err == nil, err, start)
	return err
}

// DeleteMany removes all given keys.
func (p *Pool) DeleteMany(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := p.store.DeleteMany(ctx, keys...)
	p.observe(ctx, "delete_many", "", err == nil, err, start)
	return err
}

// Flush clears the store.
func (p *Pool) Flush(ctx context.Context) error {
	start := time.Now()
	err := p.store.Flush(ctx)
	p.observe(ctx, "flush", "", err == nil, err, start)
	return err
}

// Remember returns the cached value for key, computing and storing it on a
// miss.
func (p *Pool) Remember(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	body, ok, err := p.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		return body, nil
	}
	body, err = fn(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.Set(ctx, key, body, ttl); err != nil {
		return nil, err
	}
	return body, nil
}

// RememberString is Remember for string values.
func (p *Pool) RememberString(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (string, error)) (string, error) {
	body, err := p.Remember(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return []byte(value), nil
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// RememberJSON is Remember for JSON-encoded values of type T.
func RememberJSON[T any](ctx context.Context, pool *Pool, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	body, err := pool.Remember(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// SaveDeferred queues a write that becomes visible only after Commit.
// The value is cloned so the caller may reuse the slice.
func (p *Pool) SaveDeferred(key string, value []byte, ttl time.Duration) {
	clone := make([]byte, len(value))
	copy(clone, value)
	p.mu.Lock()
	p.deferred = append(p.deferred, deferredWrite{key: key, value: clone, ttl: ttl})
	p.mu.Unlock()
}

// Deferred reports how many writes are queued.
func (p *Pool) Deferred() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.deferred)
}

// Commit writes every queued entry in order. The queue is drained even when a
// write fails; the first error is returned.
func (p *Pool) Commit(ctx context.Context) error {
	p.mu.Lock()
	queue := p.deferred
	p.deferred = nil
	p.mu.Unlock()

	var firstErr error
	for _, w := range queue {
		if err := p.Set(ctx, w.key, w.value, w.ttl); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Discard drops queued writes without storing them.
func (p *Pool) Discard() {
	p.mu.Lock()
	p.deferred = nil
	p.mu.Unlock()
}

func (p *Pool) resolveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return p.defaultTTL
	}
	return ttl
}

func (p *Pool) observe(ctx context.Context, op, key string, hit bool, err error, start time.Time) {
	if p.observer == nil {
		return
	}
	p.observer.OnCacheOp(ctx, op, key, hit, err, time.Since(start), p.store.Driver())
}
