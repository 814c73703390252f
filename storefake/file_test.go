package storefake

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func TestFileRoundTrip(t *testing.T) {
	store := NewFile(t.TempDir())
	ctx := context.Background()

	if err := store.Set(ctx, "alpha", []byte("value"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	body, ok, err := store.Get(ctx, "alpha")
	if err != nil || !ok || string(body) != "value" {
		t.Fatalf("get failed: ok=%v body=%q err=%v", ok, string(body), err)
	}
}

func TestFileLazyExpiryPurgesOnRead(t *testing.T) {
	dir := t.TempDir()
	store := NewFile(dir)
	ctx := context.Background()

	if err := store.Set(ctx, "ttl", []byte("v"), 30*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(60 * time.Millisecond)

	// The record is still on disk until a read purges it.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 record on disk before read, got %d", len(entries))
	}

	if _, ok, err := store.Get(ctx, "ttl"); err != nil || ok {
		t.Fatalf("expected expired miss; ok=%v err=%v", ok, err)
	}
	entries, err = os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected record purged after read, got %d entries", len(entries))
	}
}

func TestFileKeysDecodesRecords(t *testing.T) {
	store := NewFile(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"list:a", "list:b", "other:c"} {
		if err := store.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("set %q failed: %v", key, err)
		}
	}
	if err := store.Set(ctx, "list:dead", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	keys, err := store.Keys(ctx, "list:")
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "list:a" || keys[1] != "list:b" {
		t.Fatalf("expected [list:a list:b], got %v", keys)
	}
}

func TestFileMalformedRecordIsRemoved(t *testing.T) {
	dir := t.TempDir()
	store := NewFile(dir)
	ctx := context.Background()

	if err := store.Set(ctx, "bad", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 record, got %d err=%v", len(entries), err)
	}
	path := filepath.Join(dir, entries[0].Name())
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("corrupt record: %v", err)
	}

	if _, _, err := store.Get(ctx, "bad"); err == nil {
		t.Fatalf("expected error for malformed record")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected malformed record removed, stat err=%v", statErr)
	}
}

func TestFileFlushClearsDirectory(t *testing.T) {
	dir := t.TempDir()
	store := NewFile(dir)
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		if err := store.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir after flush, got %d entries", len(entries))
	}
}

func TestFileRecordEncoding(t *testing.T) {
	record := encodeFileRecord(12345, "the-key", []byte("the-value"))
	expiresAt, key, value, err := decodeFileRecord(record)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if expiresAt != 12345 || key != "the-key" || string(value) != "the-value" {
		t.Fatalf("unexpected decode: expires=%d key=%q value=%q", expiresAt, key, string(value))
	}

	if _, _, _, err := decodeFileRecord([]byte("short")); err == nil {
		t.Fatalf("expected short record to fail decoding")
	}
}
