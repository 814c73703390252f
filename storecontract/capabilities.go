package storecontract

import "time"

// Capabilities describes behavior an adapter claims beyond the base contract.
// The conformance suite consults it to tune timing expectations and to skip
// checks a backend cannot satisfy.
type Capabilities struct {
	// TTLPrecision is the smallest TTL distinction the backend honors.
	// Memcached, for example, rounds to whole seconds.
	TTLPrecision time.Duration

	// LazyExpiry reports that expired entries are purged on read rather than
	// eagerly, so iteration may briefly list keys that a Get would miss.
	LazyExpiry bool

	// AtomicCounters reports that Increment/Decrement are atomic under
	// concurrent callers.
	AtomicCounters bool

	// MaxKeyLength is the longest accepted key; 0 means unbounded.
	MaxKeyLength int

	// MaxValueBytes is the largest accepted value; 0 means unbounded.
	MaxValueBytes int
}

// Capable is implemented by stores that declare their capabilities.
type Capable interface {
	Capabilities() Capabilities
}

// DefaultCapabilities are the conservative assumptions used when a store does
// not implement Capable: second-level TTL precision, lazy expiry, no atomic
// counter guarantee, unbounded keys and values.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		TTLPrecision: time.Second,
		LazyExpiry:   true,
	}
}

// CapabilitiesOf returns the declared capabilities of store, or
// DefaultCapabilities when it declares none.
func CapabilitiesOf(store Store) Capabilities {
	if c, ok := store.(Capable); ok {
		caps := c.Capabilities()
		if caps.TTLPrecision <= 0 {
			caps.TTLPrecision = time.Millisecond
		}
		return caps
	}
	return DefaultCapabilities()
}
