// Package storefake provides deterministic store fixtures for tests.
//
// Memory is the reference adapter: it implements the full contract plus every
// optional capability (iteration, tags, namespaces) without external
// services. File trades tags and namespaces for on-disk persistence with lazy
// expiry, which makes it handy for exercising capability skip paths. Null and
// ErrStore cover degraded-backend behavior, and Spy records per-key call
// counts for assertion in consumer tests:
//
//	spy := storefake.NewSpy(storefake.NewMemory())
//	warmProfile(ctx, spy, "user:42")
//	spy.AssertCalled(t, storefake.OpSet, "user:42", 1)
package storefake
