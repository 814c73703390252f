package storetest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	storetest "github.com/goforj/storetest"
	"github.com/goforj/storetest/storefake"
)

const memoryManifest = `
driver: memory
capabilities:
  ttl_precision: 1ms
  atomic_counters: true
  iteration: true
  tags: true
  namespaces: true
suite:
  ttl: 40ms
  ttl_wait: 200ms
`

func TestParseManifest(t *testing.T) {
	m, err := storetest.ParseManifest([]byte(memoryManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if m.Driver != "memory" {
		t.Fatalf("expected driver memory, got %q", m.Driver)
	}
	caps := m.DeclaredCapabilities()
	if caps.TTLPrecision != time.Millisecond {
		t.Fatalf("expected 1ms precision, got %s", caps.TTLPrecision)
	}
	if !caps.AtomicCounters {
		t.Fatalf("expected atomic counters")
	}
	opts := m.Options()
	if opts.TTL != 40*time.Millisecond || opts.TTLWait != 200*time.Millisecond {
		t.Fatalf("unexpected suite tuning: ttl=%s wait=%s", opts.TTL, opts.TTLWait)
	}
}

func TestParseManifestRejectsUnknownFields(t *testing.T) {
	_, err := storetest.ParseManifest([]byte("driver: memory\ncolour: red\n"))
	if err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestParseManifestRequiresDriver(t *testing.T) {
	_, err := storetest.ParseManifest([]byte("suite:\n  skip_flush: true\n"))
	if err == nil {
		t.Fatalf("expected missing driver to be rejected")
	}
}

func TestParseManifestRejectsBadDuration(t *testing.T) {
	_, err := storetest.ParseManifest([]byte("driver: memory\nsuite:\n  ttl: soon\n"))
	if err == nil {
		t.Fatalf("expected malformed duration to be rejected")
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storetest.yaml")
	if err := os.WriteFile(path, []byte(memoryManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	m, err := storetest.LoadManifest(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Driver != "memory" {
		t.Fatalf("expected driver memory, got %q", m.Driver)
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := storetest.LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}

func TestRunManifest_MemoryFixture(t *testing.T) {
	m, err := storetest.ParseManifest([]byte(memoryManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	storetest.RunManifest(t, storefake.NewMemory(), m)
}

func TestRunManifest_ClaimsApplyToUndeclaredStores(t *testing.T) {
	// Spy does not implement Capable, so the run must take atomic counters
	// and the value size limit from the manifest's claims.
	m, err := storetest.ParseManifest([]byte(`
driver: memory
capabilities:
  ttl_precision: 1ms
  atomic_counters: true
  max_value_bytes: 512
suite:
  ttl: 40ms
  ttl_wait: 200ms
`))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	store := storefake.NewSpy(storefake.NewMemory(storefake.WithMaxValueBytes(512)))
	storetest.RunManifest(t, store, m)
}

func TestRunManifest_UnclaimedCapabilitiesAreSkipped(t *testing.T) {
	// File implements iteration but the manifest does not claim it, so the
	// iteration checks must be skipped rather than run.
	m, err := storetest.ParseManifest([]byte("driver: file\ncapabilities:\n  lazy_expiry: true\n"))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	storetest.RunManifest(t, storefake.NewFile(t.TempDir()), m)
}
