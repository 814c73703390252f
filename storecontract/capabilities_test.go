package storecontract

import (
	"context"
	"testing"
	"time"
)

type bareStore struct{}

func (bareStore) Driver() Driver { return DriverMemory }

func (bareStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (bareStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (bareStore) Add(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, nil
}

func (bareStore) Increment(context.Context, string, int64, time.Duration) (int64, error) {
	return 0, nil
}

func (bareStore) Decrement(context.Context, string, int64, time.Duration) (int64, error) {
	return 0, nil
}

func (bareStore) Delete(context.Context, string) error { return nil }

func (bareStore) DeleteMany(context.Context, ...string) error { return nil }

func (bareStore) Flush(context.Context) error { return nil }

type capableStore struct {
	bareStore
	caps Capabilities
}

func (s capableStore) Capabilities() Capabilities { return s.caps }

func TestCapabilitiesOfFallsBackToDefaults(t *testing.T) {
	caps := CapabilitiesOf(bareStore{})
	if caps.TTLPrecision != time.Second {
		t.Fatalf("expected second precision, got %s", caps.TTLPrecision)
	}
	if !caps.LazyExpiry {
		t.Fatalf("expected lazy expiry assumed by default")
	}
	if caps.AtomicCounters {
		t.Fatalf("atomic counters must not be assumed")
	}
	if caps.MaxKeyLength != 0 || caps.MaxValueBytes != 0 {
		t.Fatalf("expected unbounded key and value limits")
	}
}

func TestCapabilitiesOfUsesDeclaration(t *testing.T) {
	declared := Capabilities{
		TTLPrecision:   time.Millisecond,
		AtomicCounters: true,
		MaxKeyLength:   250,
	}
	caps := CapabilitiesOf(capableStore{caps: declared})
	if caps != declared {
		t.Fatalf("expected %+v, got %+v", declared, caps)
	}
}

func TestCapabilitiesOfNormalizesZeroPrecision(t *testing.T) {
	caps := CapabilitiesOf(capableStore{})
	if caps.TTLPrecision != time.Millisecond {
		t.Fatalf("expected millisecond floor, got %s", caps.TTLPrecision)
	}
}
