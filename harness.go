package storetest

import (
	"testing"
	"time"
)

// Factory names a store constructor for matrix-style conformance runs.
// New returns the store plus a cleanup that tears down backing resources.
type Factory struct {
	Name    string
	New     func(t *testing.T) (Store, func())
	Options Options
}

// RunWithFactories runs the full store and pool contracts against every
// factory as named subtests.
func RunWithFactories(t *testing.T, factories []Factory) {
	t.Helper()
	for _, fx := range factories {
		t.Run(fx.Name, func(t *testing.T) {
			store, cleanup := fx.New(t)
			t.Cleanup(cleanup)

			opts := fx.Options
			opts.CaseName = t.Name()
			RunStoreContract(t, store, opts)
			t.Run("Pool", func(t *testing.T) { RunPoolContract(t, store, opts) })
		})
	}
}

// RetryInit retries a store constructor until it succeeds or the timeout is
// spent. Useful for backends that accept connections slightly before they
// are ready to serve.
func RetryInit(timeout, interval time.Duration, fn func() (Store, error)) (Store, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		store, err := fn()
		if err == nil {
			return store, nil
		}
		lastErr = err
		if time.Now().After(deadline) {
			return nil, lastErr
		}
		time.Sleep(interval)
	}
}
