package storefake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goforj/storetest/storecontract"
)

// Op identifies a store operation for assertions.
type Op string

const (
	OpGet        Op = "get"
	OpSet        Op = "set"
	OpAdd        Op = "add"
	OpInc        Op = "inc"
	OpDec        Op = "dec"
	OpDelete     Op = "delete"
	OpDeleteMany Op = "delete_many"
	OpFlush      Op = "flush"
)

// Spy wraps a Store, records per-key call counts, and exposes assertion
// helpers. Wrap a Memory fixture to test cache usage without external
// services.
type Spy struct {
	inner  storecontract.Store
	counts map[Op]map[string]int
	mu     sync.Mutex
}

// NewSpy wraps inner with call recording.
func NewSpy(inner storecontract.Store) *Spy {
	return &Spy{inner: inner, counts: make(map[Op]map[string]int)}
}

// Unwrap returns the wrapped store.
func (s *Spy) Unwrap() storecontract.Store { return s.inner }

// Reset clears recorded counts.
func (s *Spy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = make(map[Op]map[string]int)
}

// AssertCalled verifies key was touched by op the expected number of times.
func (s *Spy) AssertCalled(t *testing.T, op Op, key string, times int) {
	t.Helper()
	if got := s.Count(op, key); got != times {
		t.Fatalf("expected %s %q called %d times, got %d", op, key, times, got)
	}
}

// AssertNotCalled ensures key was never touched by op.
func (s *Spy) AssertNotCalled(t *testing.T, op Op, key string) {
	t.Helper()
	if got := s.Count(op, key); got != 0 {
		t.Fatalf("expected %s %q not called, got %d", op, key, got)
	}
}

// AssertTotal ensures the total call count for an op matches times.
func (s *Spy) AssertTotal(t *testing.T, op Op, times int) {
	t.Helper()
	if got := s.Total(op); got != times {
		t.Fatalf("expected %s total=%d, got %d", op, times, got)
	}
}

// Count returns calls for op+key.
func (s *Spy) Count(op Op, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[op] == nil {
		return 0
	}
	return s.counts[op][key]
}

// Total returns total calls for an op across keys.
func (s *Spy) Total(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int
	for _, v := range s.counts[op] {
		sum += v
	}
	return sum
}

func (s *Spy) bump(op Op, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[op] == nil {
		s.counts[op] = make(map[string]int)
	}
	s.counts[op][key]++
}

func (s *Spy) Driver() storecontract.Driver { return s.inner.Driver() }

func (s *Spy) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.bump(OpGet, key)
	return s.inner.Get(ctx, key)
}

func (s *Spy) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.bump(OpSet, key)
	return s.inner.Set(ctx, key, value, ttl)
}

func (s *Spy) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.bump(OpAdd, key)
	return s.inner.Add(ctx, key, value, ttl)
}

func (s *Spy) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	s.bump(OpInc, key)
	return s.inner.Increment(ctx, key, delta, ttl)
}

func (s *Spy) Decrement(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	s.bump(OpDec, key)
	return s.inner.Decrement(ctx, key, delta, ttl)
}

func (s *Spy) Delete(ctx context.Context, key string) error {
	s.bump(OpDelete, key)
	return s.inner.Delete(ctx, key)
}

func (s *Spy) DeleteMany(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		s.bump(OpDeleteMany, k)
	}
	return s.inner.DeleteMany(ctx, keys...)
}

func (s *Spy) Flush(ctx context.Context) error {
	s.bump(OpFlush, "")
	return s.inner.Flush(ctx)
}
