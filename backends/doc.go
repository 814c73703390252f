// Package backends provisions real cache backends for adapter integration
// tests: containerized Redis, Memcached, NATS (JetStream), PostgreSQL, MySQL
// and DynamoDB-local instances, plus a no-docker SQLite target.
//
// Each Start helper blocks until the backend answers its native client,
// registers teardown with t.Cleanup, and returns whatever the adapter under
// test needs (an address, a DSN, or a connected client). Gate expensive runs
// with Enabled and a build tag:
//
//	//go:build integration
//
//	func TestRedisAdapterContract(t *testing.T) {
//		if !backends.Enabled("redis") {
//			t.Skip("redis not selected via STORETEST_BACKENDS")
//		}
//		addr := backends.StartRedis(t)
//		store := newRedisStore(t, addr)
//		storetest.RunStoreContract(t, store, storetest.Options{
//			TTL:     time.Second,
//			TTLWait: 1500 * time.Millisecond,
//		})
//	}
package backends
