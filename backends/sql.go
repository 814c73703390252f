package backends

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	testcontainers "github.com/testcontainers/testcontainers-go"
	_ "modernc.org/sqlite"
)

const (
	postgresPort = nat.Port("5432/tcp")
	mysqlPort    = nat.Port("3306/tcp")
)

// StartPostgres provisions a PostgreSQL container, verifies connectivity with
// pgx, and returns a ready DSN.
func StartPostgres(t *testing.T) string {
	t.Helper()

	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-bookworm",
		Env:          map[string]string{"POSTGRES_PASSWORD": "pass", "POSTGRES_USER": "user", "POSTGRES_DB": "app"},
		ExposedPorts: []string{string(postgresPort)},
		WaitingFor:   listeningWait(postgresPort),
	}, postgresPort)

	dsn := "postgres://user:pass@" + addr + "/app?sslmode=disable"
	waitReady(t, "postgres", startupTimeout, func(ctx context.Context) error {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)
		return conn.Ping(ctx)
	})
	return dsn
}

// StartMySQL provisions a MySQL container, verifies connectivity with the
// mysql driver, and returns a ready DSN.
func StartMySQL(t *testing.T) string {
	t.Helper()

	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		Env:          map[string]string{"MYSQL_ROOT_PASSWORD": "pass", "MYSQL_USER": "user", "MYSQL_PASSWORD": "pass", "MYSQL_DATABASE": "app"},
		ExposedPorts: []string{string(mysqlPort)},
		WaitingFor:   listeningWait(mysqlPort),
	}, mysqlPort)

	dsn := "user:pass@tcp(" + addr + ")/app?parseTime=true"
	waitReady(t, "mysql", startupTimeout, func(ctx context.Context) error {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.PingContext(ctx)
	})
	return dsn
}

// SQLiteDSN returns a DSN for a fresh on-disk SQLite database under the
// test's temp dir; a no-docker target for SQL-backed adapters.
func SQLiteDSN(t *testing.T) string {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "store.db")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("ping sqlite: %v", err)
	}
	return dsn
}
