package storetest

import (
	"bytes"
	"fmt"
	"os"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goforj/storetest/storecontract"
)

// Manifest is the conformance declaration an adapter repository commits
// (conventionally as storetest.yaml). It names the driver, the capabilities
// the adapter claims, and suite tuning knobs, so the conformance run is
// reproducible configuration instead of ad-hoc test code.
type Manifest struct {
	Driver       string               `yaml:"driver"`
	Capabilities ManifestCapabilities `yaml:"capabilities"`
	Suite        ManifestSuite        `yaml:"suite"`
}

// ManifestCapabilities mirrors storecontract.Capabilities plus the optional
// interfaces the adapter claims to implement.
type ManifestCapabilities struct {
	TTLPrecision   Duration `yaml:"ttl_precision"`
	LazyExpiry     bool     `yaml:"lazy_expiry"`
	AtomicCounters bool     `yaml:"atomic_counters"`
	MaxKeyLength   int      `yaml:"max_key_length"`
	MaxValueBytes  int      `yaml:"max_value_bytes"`
	Iteration      bool     `yaml:"iteration"`
	Tags           bool     `yaml:"tags"`
	Namespaces     bool     `yaml:"namespaces"`
}

// ManifestSuite carries Options tuning.
type ManifestSuite struct {
	NullSemantics  bool     `yaml:"null_semantics"`
	SkipCloneCheck bool     `yaml:"skip_clone_check"`
	SkipFlush      bool     `yaml:"skip_flush"`
	TTL            Duration `yaml:"ttl"`
	TTLWait        Duration `yaml:"ttl_wait"`
}

// Duration decodes YAML scalars like "50ms" or "1.5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// LoadManifest reads and strictly parses a manifest file; unknown fields are
// rejected so typos fail loudly.
func LoadManifest(path string) (Manifest, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(body)
}

// ParseManifest strictly parses manifest bytes.
func ParseManifest(body []byte) (Manifest, error) {
	var m Manifest
	if err := unmarshalStrict(body, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Driver == "" {
		return Manifest{}, fmt.Errorf("parse manifest: driver is required")
	}
	return m, nil
}

func unmarshalStrict(body []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(body))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// Options translates suite tuning into Options.
func (m Manifest) Options() Options {
	return Options{
		NullSemantics:  m.Suite.NullSemantics,
		SkipCloneCheck: m.Suite.SkipCloneCheck,
		SkipFlush:      m.Suite.SkipFlush,
		TTL:            time.Duration(m.Suite.TTL),
		TTLWait:        time.Duration(m.Suite.TTLWait),
	}
}

// DeclaredCapabilities translates claimed capabilities into the contract
// struct.
func (m Manifest) DeclaredCapabilities() storecontract.Capabilities {
	return storecontract.Capabilities{
		TTLPrecision:   time.Duration(m.Capabilities.TTLPrecision),
		LazyExpiry:     m.Capabilities.LazyExpiry,
		AtomicCounters: m.Capabilities.AtomicCounters,
		MaxKeyLength:   m.Capabilities.MaxKeyLength,
		MaxValueBytes:  m.Capabilities.MaxValueBytes,
	}
}

// RunManifest cross-checks the manifest's claims against the store and then
// runs the full contract with the manifest's tuning. Claiming a capability
// the store does not implement fails; implementing more than claimed is
// allowed.
func RunManifest(t *testing.T, store Store, m Manifest) {
	t.Helper()

	if string(store.Driver()) != m.Driver {
		t.Fatalf("manifest driver %q does not match store driver %q", m.Driver, store.Driver())
	}
	if m.Capabilities.Iteration {
		if _, ok := store.(storecontract.IterableStore); !ok {
			t.Fatalf("manifest claims iteration but store does not implement IterableStore")
		}
	}
	if m.Capabilities.Tags {
		if _, ok := store.(storecontract.TaggedStore); !ok {
			t.Fatalf("manifest claims tags but store does not implement TaggedStore")
		}
	}
	if m.Capabilities.Namespaces {
		if _, ok := store.(storecontract.NamespacedStore); !ok {
			t.Fatalf("manifest claims namespaces but store does not implement NamespacedStore")
		}
	}

	opts := m.Options()
	opts.CaseName = t.Name()
	// Capabilities not claimed are not exercised, even if implemented.
	opts.SkipIteration = !m.Capabilities.Iteration
	opts.SkipTags = !m.Capabilities.Tags
	opts.SkipNamespace = !m.Capabilities.Namespaces
	// A store that declares its own capabilities is authoritative; otherwise
	// the run honors the manifest's claims.
	if _, ok := store.(storecontract.Capable); !ok {
		caps := m.DeclaredCapabilities()
		opts.Capabilities = &caps
	}

	RunStoreContract(t, store, opts)
	t.Run("Pool", func(t *testing.T) { RunPoolContract(t, store, opts) })
}
