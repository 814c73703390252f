package storefake

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/goforj/storetest/storecontract"
)

const (
	defaultTTL             = 5 * time.Minute
	defaultCleanupInterval = 10 * time.Minute
)

// Config controls how a Memory fixture is constructed.
type Config struct {
	storecontract.BaseConfig

	// CleanupInterval controls the background eviction sweep.
	CleanupInterval time.Duration
}

// Option mutates Config when constructing a fixture.
type Option func(Config) Config

// WithDefaultTTL overrides the fallback TTL used when ttl <= 0.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(cfg Config) Config {
		cfg.DefaultTTL = ttl
		return cfg
	}
}

// WithCleanupInterval overrides the eviction sweep interval.
func WithCleanupInterval(interval time.Duration) Option {
	return func(cfg Config) Config {
		cfg.CleanupInterval = interval
		return cfg
	}
}

// WithNamespace places the fixture in a namespace from the start.
func WithNamespace(namespace string) Option {
	return func(cfg Config) Config {
		cfg.Namespace = namespace
		return cfg
	}
}

// WithMaxValueBytes rejects writes larger than max bytes.
func WithMaxValueBytes(max int) Option {
	return func(cfg Config) Config {
		cfg.MaxValueBytes = max
		return cfg
	}
}

func (c Config) withDefaults() Config {
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = defaultTTL
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaultCleanupInterval
	}
	return c
}

// shared is the backend state common to every namespaced view of a fixture.
type shared struct {
	cache *gocache.Cache
	mu    sync.Mutex
	tags  map[string]map[string]struct{}
}

// Memory is the reference in-memory adapter used to exercise the conformance
// suite without external services. It implements every optional capability:
// iteration, tag invalidation, and namespace derivation over a shared
// backend.
type Memory struct {
	shared        *shared
	namespace     string
	defaultTTL    time.Duration
	maxValueBytes int
}

var (
	_ storecontract.IterableStore   = (*Memory)(nil)
	_ storecontract.TaggedStore     = (*Memory)(nil)
	_ storecontract.NamespacedStore = (*Memory)(nil)
	_ storecontract.Capable         = (*Memory)(nil)
)

// NewMemory creates an in-memory fixture.
func NewMemory(opts ...Option) *Memory {
	var cfg Config
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	cfg = cfg.withDefaults()
	return &Memory{
		shared: &shared{
			cache: gocache.New(cfg.DefaultTTL, cfg.CleanupInterval),
			tags:  make(map[string]map[string]struct{}),
		},
		namespace:     cfg.Namespace,
		defaultTTL:    cfg.DefaultTTL,
		maxValueBytes: cfg.MaxValueBytes,
	}
}

func (s *Memory) Driver() storecontract.Driver { return storecontract.DriverMemory }

// Capabilities reports what the fixture supports; expiry is eager thanks to
// go-cache's sweep plus read-time checks.
func (s *Memory) Capabilities() storecontract.Capabilities {
	return storecontract.Capabilities{
		TTLPrecision:   time.Millisecond,
		AtomicCounters: true,
		MaxValueBytes:  s.maxValueBytes,
	}
}

// Namespace reports the namespace this view writes under.
func (s *Memory) Namespace() string { return s.namespace }

// WithNamespace derives a view over the same backend that only sees keys
// written under namespace.
func (s *Memory) WithNamespace(namespace string) storecontract.Store {
	return &Memory{
		shared:        s.shared,
		namespace:     namespace,
		defaultTTL:    s.defaultTTL,
		maxValueBytes: s.maxValueBytes,
	}
}

func (s *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, ok := s.shared.cache.Get(s.fullKey(key))
	if !ok {
		return nil, false, nil
	}
	body, ok := item.([]byte)
	if !ok {
		return nil, false, nil
	}
	clone := make([]byte, len(body))
	copy(clone, body)
	return clone, true, nil
}

func (s *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.checkSize(key, value); err != nil {
		return err
	}
	clone := make([]byte, len(value))
	copy(clone, value)
	full := s.fullKey(key)
	s.shared.cache.Set(full, clone, s.resolveTTL(ttl))
	s.forgetKey(full)
	return nil
}

func (s *Memory) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := s.checkSize(key, value); err != nil {
		return false, err
	}
	clone := make([]byte, len(value))
	copy(clone, value)
	full := s.fullKey(key)
	if err := s.shared.cache.Add(full, clone, s.resolveTTL(ttl)); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return false, nil
		}
		return false, err
	}
	s.forgetKey(full)
	return true, nil
}

func (s *Memory) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	full := s.fullKey(key)
	current := int64(0)
	if item, ok := s.shared.cache.Get(full); ok {
		body, ok := item.([]byte)
		if !ok {
			return 0, fmt.Errorf("cache key %q does not contain a numeric value", key)
		}
		n, err := strconv.ParseInt(string(body), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cache key %q does not contain a numeric value", key)
		}
		current = n
	}
	next := current + delta
	s.shared.cache.Set(full, []byte(strconv.FormatInt(next, 10)), s.resolveTTL(ttl))
	s.forgetKeyLocked(full)
	return next, nil
}

func (s *Memory) Decrement(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	return s.Increment(ctx, key, -delta, ttl)
}

func (s *Memory) Delete(_ context.Context, key string) error {
	full := s.fullKey(key)
	s.shared.cache.Delete(full)
	s.forgetKey(full)
	return nil
}

func (s *Memory) DeleteMany(_ context.Context, keys ...string) error {
	for _, key := range keys {
		full := s.fullKey(key)
		s.shared.cache.Delete(full)
		s.forgetKey(full)
	}
	return nil
}

// Flush clears every key in this namespace and leaves other namespaces
// untouched. A fixture with no namespace owns the whole backend.
func (s *Memory) Flush(_ context.Context) error {
	if s.namespace == "" {
		s.shared.cache.Flush()
		s.shared.mu.Lock()
		s.shared.tags = make(map[string]map[string]struct{})
		s.shared.mu.Unlock()
		return nil
	}
	prefix := s.nsPrefix()
	var removed []string
	for full := range s.shared.cache.Items() {
		if strings.HasPrefix(full, prefix) {
			s.shared.cache.Delete(full)
			removed = append(removed, full)
		}
	}
	s.shared.mu.Lock()
	for _, full := range removed {
		s.forgetKeyLocked(full)
	}
	s.shared.mu.Unlock()
	return nil
}

// Keys lists live keys in this namespace beginning with prefix.
func (s *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	nsPrefix := s.nsPrefix()
	var keys []string
	for full := range s.shared.cache.Items() {
		if !strings.HasPrefix(full, nsPrefix) {
			continue
		}
		key := strings.TrimPrefix(full, nsPrefix)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// SetTagged stores a value and records its tags for later invalidation.
func (s *Memory) SetTagged(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if err := s.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	full := s.fullKey(key)
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	for _, tag := range tags {
		members, ok := s.shared.tags[tag]
		if !ok {
			members = make(map[string]struct{})
			s.shared.tags[tag] = members
		}
		members[full] = struct{}{}
	}
	return nil
}

// InvalidateTags removes every entry recorded under any of the given tags.
func (s *Memory) InvalidateTags(_ context.Context, tags ...string) error {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	for _, tag := range tags {
		for full := range s.shared.tags[tag] {
			s.shared.cache.Delete(full)
		}
		delete(s.shared.tags, tag)
	}
	return nil
}

const nsSeparator = ":"

// nsPrefix length-prefixes the namespace so namespaces that are prefixes of
// one another still map to disjoint key ranges: "a"+"b:c" must never collide
// with "a:b"+"c".
func (s *Memory) nsPrefix() string {
	if s.namespace == "" {
		return ""
	}
	return strconv.Itoa(len(s.namespace)) + nsSeparator + s.namespace + nsSeparator
}

func (s *Memory) fullKey(key string) string {
	return s.nsPrefix() + key
}

// forgetKey drops full from every tag set, so deleting or re-writing a key
// also ends its old tag memberships.
func (s *Memory) forgetKey(full string) {
	s.shared.mu.Lock()
	s.forgetKeyLocked(full)
	s.shared.mu.Unlock()
}

func (s *Memory) forgetKeyLocked(full string) {
	for tag, members := range s.shared.tags {
		delete(members, full)
		if len(members) == 0 {
			delete(s.shared.tags, tag)
		}
	}
}

func (s *Memory) resolveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return s.defaultTTL
	}
	return ttl
}

func (s *Memory) checkSize(key string, value []byte) error {
	if s.maxValueBytes > 0 && len(value) > s.maxValueBytes {
		return fmt.Errorf("cache key %q: value of %d bytes exceeds limit of %d", key, len(value), s.maxValueBytes)
	}
	return nil
}
