package storefake

import (
	"context"
	"time"

	"github.com/goforj/storetest/storecontract"
)

// Null discards every write and misses every read. Run the suite against it
// with NullSemantics enabled.
type Null struct{}

// NewNull creates a no-op store.
func NewNull() *Null { return &Null{} }

func (s *Null) Driver() storecontract.Driver { return storecontract.DriverNull }

func (s *Null) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *Null) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (s *Null) Add(context.Context, string, []byte, time.Duration) (bool, error) {
	return true, nil
}

func (s *Null) Increment(context.Context, string, int64, time.Duration) (int64, error) {
	return 0, nil
}

func (s *Null) Decrement(context.Context, string, int64, time.Duration) (int64, error) {
	return 0, nil
}

func (s *Null) Delete(context.Context, string) error { return nil }

func (s *Null) DeleteMany(context.Context, ...string) error { return nil }

func (s *Null) Flush(context.Context) error { return nil }
