package backends

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	testcontainers "github.com/testcontainers/testcontainers-go"
)

const memcachedPort = nat.Port("11211/tcp")

// StartMemcached provisions a memcached container, verifies it answers the
// text-protocol version command, and returns its host:port.
func StartMemcached(t *testing.T) string {
	t.Helper()

	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "memcached:1.6-bookworm",
		ExposedPorts: []string{string(memcachedPort)},
		WaitingFor:   listeningWait(memcachedPort),
	}, memcachedPort)

	waitReady(t, "memcached", startupTimeout, func(ctx context.Context) error {
		return memcachedVersion(ctx, addr)
	})
	return addr
}

func memcachedVersion(ctx context.Context, addr string) error {
	d := net.Dialer{Timeout: 3 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if _, err := fmt.Fprintf(conn, "version\r\n"); err != nil {
		return err
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, "VERSION") {
		return fmt.Errorf("unexpected response: %s", strings.TrimSpace(line))
	}
	return nil
}
