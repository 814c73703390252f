package backends

import (
	"context"
	"testing"

	"github.com/docker/go-connections/nat"
	goredis "github.com/redis/go-redis/v9"
	testcontainers "github.com/testcontainers/testcontainers-go"
)

const redisPort = nat.Port("6379/tcp")

// StartRedis provisions a Redis container, verifies it answers PING, and
// returns its host:port. Teardown is registered with t.Cleanup.
func StartRedis(t *testing.T) string {
	t.Helper()

	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-bookworm",
		ExposedPorts: []string{string(redisPort)},
		WaitingFor:   listeningWait(redisPort),
	}, redisPort)

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	waitReady(t, "redis", startupTimeout, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return addr
}
