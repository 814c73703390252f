package storefake

import (
	"context"
	"time"

	"github.com/goforj/storetest/storecontract"
)

// ErrStore fails every call with a fixed error while preserving driver
// identity. Use it to test how consuming code reacts to a broken backend.
type ErrStore struct {
	driver storecontract.Driver
	err    error
}

// NewErrStore creates a store whose every operation returns err.
func NewErrStore(driver storecontract.Driver, err error) *ErrStore {
	return &ErrStore{driver: driver, err: err}
}

func (e *ErrStore) Driver() storecontract.Driver { return e.driver }

func (e *ErrStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, e.err }

func (e *ErrStore) Set(context.Context, string, []byte, time.Duration) error {
	return e.err
}

func (e *ErrStore) Add(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, e.err
}

func (e *ErrStore) Increment(context.Context, string, int64, time.Duration) (int64, error) {
	return 0, e.err
}

func (e *ErrStore) Decrement(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	return e.Increment(ctx, key, -delta, ttl)
}

func (e *ErrStore) Delete(context.Context, string) error { return e.err }

func (e *ErrStore) DeleteMany(context.Context, ...string) error { return e.err }

func (e *ErrStore) Flush(context.Context) error { return e.err }
