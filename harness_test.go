package storetest_test

import (
	"errors"
	"testing"
	"time"

	storetest "github.com/goforj/storetest"
	"github.com/goforj/storetest/storefake"
)

func TestRunWithFactories(t *testing.T) {
	storetest.RunWithFactories(t, []storetest.Factory{
		{
			Name: "memory",
			New: func(t *testing.T) (storetest.Store, func()) {
				return storefake.NewMemory(), func() {}
			},
		},
		{
			Name: "file",
			New: func(t *testing.T) (storetest.Store, func()) {
				return storefake.NewFile(t.TempDir()), func() {}
			},
		},
		{
			Name: "null",
			New: func(t *testing.T) (storetest.Store, func()) {
				return storefake.NewNull(), func() {}
			},
			Options: storetest.Options{NullSemantics: true},
		},
	})
}

func TestRetryInitSucceedsAfterFailures(t *testing.T) {
	attempts := 0
	store, err := storetest.RetryInit(time.Second, time.Millisecond, func() (storetest.Store, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("not ready")
		}
		return storefake.NewMemory(), nil
	})
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if store == nil {
		t.Fatalf("expected store")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryInitReturnsLastError(t *testing.T) {
	wantErr := errors.New("backend down")
	_, err := storetest.RetryInit(20*time.Millisecond, 5*time.Millisecond, func() (storetest.Store, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error %v, got %v", wantErr, err)
	}
}
