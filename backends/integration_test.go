//go:build integration

package backends_test

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jackc/pgx/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/goforj/storetest/backends"
)

func requireBackend(t *testing.T, name string) {
	t.Helper()
	if !backends.Enabled(name) {
		t.Skipf("backend %s not selected via STORETEST_BACKENDS", name)
	}
}

func TestRedisProvisioning(t *testing.T) {
	requireBackend(t, "redis")
	addr := backends.StartRedis(t)
	ctx := context.Background()

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Set(ctx, "smoke", "ok", time.Minute).Err(); err != nil {
		t.Fatalf("redis set: %v", err)
	}
	got, err := client.Get(ctx, "smoke").Result()
	if err != nil || got != "ok" {
		t.Fatalf("redis get: got %q err %v", got, err)
	}
}

func TestMemcachedProvisioning(t *testing.T) {
	requireBackend(t, "memcached")
	addr := backends.StartMemcached(t)

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dial memcached: %v", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	if _, err := fmt.Fprintf(conn, "set smoke 0 60 2\r\nok\r\n"); err != nil {
		t.Fatalf("memcached set: %v", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("memcached reply: %v", err)
	}
	if !strings.HasPrefix(line, "STORED") {
		t.Fatalf("memcached set reply: %s", strings.TrimSpace(line))
	}
}

func TestNATSProvisioning(t *testing.T) {
	requireBackend(t, "nats")
	nc := backends.StartNATS(t)
	kv := backends.NATSKeyValue(t, nc, t.Name())

	if _, err := kv.Put("smoke", []byte("ok")); err != nil {
		t.Fatalf("kv put: %v", err)
	}
	entry, err := kv.Get("smoke")
	if err != nil {
		t.Fatalf("kv get: %v", err)
	}
	if string(entry.Value()) != "ok" {
		t.Fatalf("kv get: got %q", entry.Value())
	}
}

func TestPostgresProvisioning(t *testing.T) {
	requireBackend(t, "postgres")
	dsn := backends.StartPostgres(t)
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	defer conn.Close(ctx)

	var one int
	if err := conn.QueryRow(ctx, "select 1").Scan(&one); err != nil || one != 1 {
		t.Fatalf("postgres query: got %d err %v", one, err)
	}
}

func TestMySQLProvisioning(t *testing.T) {
	requireBackend(t, "mysql")
	dsn := backends.StartMySQL(t)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open mysql: %v", err)
	}
	defer db.Close()

	var one int
	if err := db.QueryRow("select 1").Scan(&one); err != nil || one != 1 {
		t.Fatalf("mysql query: got %d err %v", one, err)
	}
}

func TestSQLiteProvisioning(t *testing.T) {
	requireBackend(t, "sqlite")
	dsn := backends.SQLiteDSN(t)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("create table smoke (k text primary key, v blob)"); err != nil {
		t.Fatalf("sqlite create: %v", err)
	}
	if _, err := db.Exec("insert into smoke (k, v) values (?, ?)", "a", []byte("ok")); err != nil {
		t.Fatalf("sqlite insert: %v", err)
	}
	var v []byte
	if err := db.QueryRow("select v from smoke where k = ?", "a").Scan(&v); err != nil || string(v) != "ok" {
		t.Fatalf("sqlite select: got %q err %v", v, err)
	}
}

func TestDynamoProvisioning(t *testing.T) {
	requireBackend(t, "dynamo")
	const table = "storetest_smoke"
	client := backends.StartDynamo(t, table)
	ctx := context.Background()

	_, err := client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item: map[string]dynamotypes.AttributeValue{
			"k": &dynamotypes.AttributeValueMemberS{Value: "smoke"},
			"v": &dynamotypes.AttributeValueMemberB{Value: []byte("ok")},
		},
	})
	if err != nil {
		t.Fatalf("dynamo put: %v", err)
	}
	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]dynamotypes.AttributeValue{
			"k": &dynamotypes.AttributeValueMemberS{Value: "smoke"},
		},
	})
	if err != nil {
		t.Fatalf("dynamo get: %v", err)
	}
	v, ok := out.Item["v"].(*dynamotypes.AttributeValueMemberB)
	if !ok || string(v.Value) != "ok" {
		t.Fatalf("dynamo get: unexpected item %v", out.Item)
	}
}
