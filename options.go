package storetest

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goforj/storetest/storecontract"
)

// Options configures shared store contract checks.
type Options struct {
	// CaseName is used to namespace keys. Defaults to t.Name().
	CaseName string
	// NullSemantics enables relaxed expectations for no-op stores: every
	// read misses, Add always reports created, counters pin to zero.
	NullSemantics bool
	// SkipCloneCheck disables the "get returns a cloned value" assertion for
	// backends that hand out shared buffers.
	SkipCloneCheck bool
	// SkipFlush disables the flush assertions for backends where flushing is
	// expensive or unavailable.
	SkipFlush bool
	// SkipIteration disables the iteration checks even when the store
	// implements IterableStore.
	SkipIteration bool
	// SkipTags disables the tagging checks even when the store implements
	// TaggedStore.
	SkipTags bool
	// SkipNamespace disables the namespace checks even when the store
	// implements NamespacedStore.
	SkipNamespace bool
	// TTL controls the expiry duration used in TTL tests.
	TTL time.Duration
	// TTLWait is how long the harness waits for expiry to occur.
	TTLWait time.Duration
	// Capabilities overrides interface-based detection when set. Manifest
	// runs use it so stores that do not implement Capable still run under
	// their declared claims.
	Capabilities *storecontract.Capabilities
}

const (
	fallbackTTL     = 50 * time.Millisecond
	fallbackTTLWait = 120 * time.Millisecond
)

func (o Options) withDefaults(name string) Options {
	if o.CaseName == "" {
		o.CaseName = name
	}
	if o.TTL <= 0 {
		o.TTL = fallbackTTL
	}
	if o.TTLWait <= 0 {
		o.TTLWait = o.TTL * 3
		if o.TTLWait < fallbackTTLWait {
			o.TTLWait = fallbackTTLWait
		}
	}
	return o
}

// capabilitiesFor resolves the capabilities a run asserts against: an
// explicit Options override wins, otherwise whatever the store declares.
func capabilitiesFor(store Store, opts Options) storecontract.Capabilities {
	if opts.Capabilities != nil {
		caps := *opts.Capabilities
		if caps.TTLPrecision <= 0 {
			caps.TTLPrecision = time.Millisecond
		}
		return caps
	}
	return storecontract.CapabilitiesOf(store)
}

// keyer builds suite keys scoped to the case name plus a per-run id, so
// repeated runs are safe against shared backends that outlive the test
// process.
type keyer struct {
	prefix string
}

func newKeyer(caseName string) keyer {
	return keyer{prefix: sanitize(caseName) + ":" + uuid.NewString()[:8]}
}

func (k keyer) key(s string) string {
	return k.prefix + ":" + s
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
