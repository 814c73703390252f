package backends

import (
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/nats-io/nats.go"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const natsPort = nat.Port("4222/tcp")

// StartNATS provisions a JetStream-enabled NATS container and returns a
// connected client. Drain and teardown are registered with t.Cleanup.
func StartNATS(t *testing.T) *nats.Conn {
	t.Helper()

	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "nats:2",
		Cmd:          []string{"-js"},
		ExposedPorts: []string{string(natsPort)},
		WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(startupTimeout),
	}, natsPort)

	nc, err := nats.Connect("nats://"+addr, nats.Timeout(10*time.Second))
	if err != nil {
		t.Fatalf("connect nats: %v", err)
	}
	t.Cleanup(func() {
		_ = nc.Drain()
		nc.Close()
	})
	return nc
}

// NATSKeyValue creates a history-1 JetStream KV bucket scoped to the test.
// The bucket is deleted on cleanup.
func NATSKeyValue(t *testing.T, nc *nats.Conn, bucket string) nats.KeyValue {
	t.Helper()

	js, err := nc.JetStream()
	if err != nil {
		t.Fatalf("jetstream: %v", err)
	}
	bucket = sanitizeBucket(bucket)
	kv, err := js.CreateKeyValue(&nats.KeyValueConfig{Bucket: bucket, History: 1})
	if err != nil {
		t.Fatalf("create kv bucket %q: %v", bucket, err)
	}
	t.Cleanup(func() { _ = js.DeleteKeyValue(bucket) })
	return kv
}

func sanitizeBucket(name string) string {
	return strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(name)
}
