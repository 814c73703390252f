package backends

import (
	"context"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	startupTimeout  = 60 * time.Second
	teardownTimeout = 10 * time.Second
)

// Enabled reports whether a backend is selected for this run. Selection comes
// from STORETEST_BACKENDS, a comma-separated list of backend names; empty or
// "all" enables everything.
func Enabled(name string) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv("STORETEST_BACKENDS")))
	if value == "" || value == "all" {
		return true
	}
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == strings.ToLower(name) {
			return true
		}
	}
	return false
}

// startContainer runs an image, waits for readiness, and registers
// termination with t.Cleanup. It returns the mapped host:port for port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port nat.Port) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s container: %v", req.Image, err)
	}
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		_ = container.Terminate(shutdownCtx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("%s container host: %v", req.Image, err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("%s container port: %v", req.Image, err)
	}
	return net.JoinHostPort(host, mapped.Port())
}

// waitReady polls probe until it succeeds or the timeout is spent.
func waitReady(t *testing.T, what string, timeout time.Duration, probe func(ctx context.Context) error) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = probe(ctx)
		cancel()
		if lastErr == nil {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("%s not ready after %s: %v", what, timeout, lastErr)
}

func listeningWait(port nat.Port) wait.Strategy {
	return wait.ForListeningPort(port).WithStartupTimeout(startupTimeout)
}
