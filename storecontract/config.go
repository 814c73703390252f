package storecontract

import "time"

// BaseConfig contains shared, backend-agnostic adapter configuration.
// Adapter packages embed it in their own Config structs.
type BaseConfig struct {
	// DefaultTTL is applied when a call provides ttl <= 0.
	DefaultTTL time.Duration

	// Namespace isolates this adapter's keyspace on shared backends.
	Namespace string

	// MaxValueBytes rejects writes above this size; 0 means unbounded.
	MaxValueBytes int
}
