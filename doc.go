// Package storetest provides a reusable conformance suite for cache storage
// adapters implementing the storecontract.Store contract.
//
// Adapter packages call the Run* entrypoints from their own tests; no root
// test helpers are required. Optional capabilities (iteration, tags,
// namespaces) are detected by interface assertion and skipped when absent.
//
// Example pattern (adapter package test):
//
//	func TestRedisStoreContract(t *testing.T) {
//		client := newTestRedisClient(t)
//		store := rediscache.New(rediscache.Config{Client: client})
//
//		// Namespace keys per test and tune TTL waits for backend semantics.
//		storetest.RunStoreContract(t, store, storetest.Options{
//			CaseName: t.Name(),
//			TTL:      time.Second,
//			TTLWait:  1500 * time.Millisecond,
//		})
//	}
//
// Example manifest-driven run (storetest.yaml committed in the adapter repo):
//
//	func TestStoreConformance(t *testing.T) {
//		m, err := storetest.LoadManifest("storetest.yaml")
//		if err != nil {
//			t.Fatalf("load manifest: %v", err)
//		}
//		storetest.RunManifest(t, newTestStore(t), m)
//	}
//
// Example factory matrix:
//
//	storetest.RunWithFactories(t, []storetest.Factory{
//		{Name: "memory", New: func(t *testing.T) (storetest.Store, func()) {
//			return storefake.NewMemory(), func() {}
//		}},
//	})
package storetest
