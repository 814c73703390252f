package storetest_test

import (
	"testing"
	"time"

	storetest "github.com/goforj/storetest"
	"github.com/goforj/storetest/storefake"
)

func TestRunStoreContract_MemoryFixture(t *testing.T) {
	store := storefake.NewMemory()
	storetest.RunStoreContract(t, store, storetest.Options{})
}

func TestRunStoreContract_FileFixture(t *testing.T) {
	store := storefake.NewFile(t.TempDir())
	storetest.RunStoreContract(t, store, storetest.Options{})
}

func TestRunStoreContract_NullFixture(t *testing.T) {
	store := storefake.NewNull()
	storetest.RunStoreContract(t, store, storetest.Options{NullSemantics: true})
}

func TestRunStoreContract_NamespacedMemoryFixture(t *testing.T) {
	// A derived view must satisfy the contract on its own.
	store := storefake.NewMemory(storefake.WithNamespace("suite"))
	storetest.RunStoreContract(t, store, storetest.Options{})
}

func TestRunStoreContract_MemoryFixtureWithValueLimit(t *testing.T) {
	// A declared MaxValueBytes turns on the boundary checks; the limit stays
	// above the suite's own largest payload.
	store := storefake.NewMemory(storefake.WithMaxValueBytes(512))
	storetest.RunStoreContract(t, store, storetest.Options{})
}

func TestRunPoolContract_MemoryFixture(t *testing.T) {
	store := storefake.NewMemory()
	storetest.RunPoolContract(t, store, storetest.Options{})
}

func TestRunTTLContract_HonorsBackendPrecision(t *testing.T) {
	// File declares lazy expiry with millisecond precision; a short TTL
	// must still expire within the stretched wait budget.
	store := storefake.NewFile(t.TempDir())
	storetest.RunTTLContract(t, store, storetest.Options{
		TTL:     30 * time.Millisecond,
		TTLWait: 200 * time.Millisecond,
	})
}
