package storefake

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goforj/storetest/storecontract"
)

// Record layout: magic, big-endian expiry in unix nanos, big-endian key
// length, key bytes, value bytes.
var fileRecordMagic = []byte("SFK1")

const fileRecordHeaderLen = 16

// File is a filesystem-backed fixture. Expiry is lazy: records stay on disk
// until read or listed. It supports iteration but not tags or namespaces,
// which makes it useful for exercising the suite's capability skip paths.
type File struct {
	dir        string
	defaultTTL time.Duration
}

var (
	_ storecontract.IterableStore = (*File)(nil)
	_ storecontract.Capable       = (*File)(nil)
)

// NewFile creates a file fixture rooted at dir. Point it at t.TempDir().
func NewFile(dir string, opts ...Option) *File {
	var cfg Config
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	cfg = cfg.withDefaults()
	_ = os.MkdirAll(dir, 0o755)
	return &File{dir: dir, defaultTTL: cfg.DefaultTTL}
}

func (s *File) Driver() storecontract.Driver { return storecontract.DriverFile }

func (s *File) Capabilities() storecontract.Capabilities {
	return storecontract.Capabilities{
		TTLPrecision: time.Millisecond,
		LazyExpiry:   true,
	}
}

func (s *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := s.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	expiresAt, _, value, err := decodeFileRecord(data)
	if err != nil {
		_ = os.Remove(path)
		return nil, false, err
	}
	if expiresAt > 0 && time.Now().UnixNano() > expiresAt {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return value, true, nil
}

func (s *File) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	expiresAt := time.Now().Add(ttl).UnixNano()

	tmp, err := os.CreateTemp(s.dir, "store-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	record := encodeFileRecord(expiresAt, key, value)
	if _, err := tmp.Write(record); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.path(key))
}

func (s *File) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	return true, s.Set(ctx, key, value, ttl)
}

func (s *File) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	current := int64(0)
	if body, ok, err := s.Get(ctx, key); err != nil {
		return 0, err
	} else if ok {
		n, err := strconv.ParseInt(string(body), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cache key %q does not contain a numeric value", key)
		}
		current = n
	}
	next := current + delta
	if err := s.Set(ctx, key, []byte(strconv.FormatInt(next, 10)), ttl); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *File) Decrement(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	return s.Increment(ctx, key, -delta, ttl)
}

func (s *File) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *File) DeleteMany(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *File) Flush(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		_ = os.Remove(filepath.Join(s.dir, entry.Name()))
	}
	return nil
}

// Keys lists live keys beginning with prefix by decoding record headers.
// Expired records are skipped but left for Get to purge.
func (s *File) Keys(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	now := time.Now().UnixNano()
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cache") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		expiresAt, key, _, err := decodeFileRecord(data)
		if err != nil {
			continue
		}
		if expiresAt > 0 && now > expiresAt {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *File) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(s.dir, name+".cache")
}

func encodeFileRecord(expiresAt int64, key string, value []byte) []byte {
	record := make([]byte, 0, fileRecordHeaderLen+len(key)+len(value))
	record = append(record, fileRecordMagic...)
	record = binary.BigEndian.AppendUint64(record, uint64(expiresAt))
	record = binary.BigEndian.AppendUint32(record, uint32(len(key)))
	record = append(record, key...)
	record = append(record, value...)
	return record
}

func decodeFileRecord(data []byte) (expiresAt int64, key string, value []byte, err error) {
	if len(data) < fileRecordHeaderLen || !bytes.Equal(data[:4], fileRecordMagic) {
		return 0, "", nil, errors.New("malformed cache record")
	}
	expiresAt = int64(binary.BigEndian.Uint64(data[4:12]))
	keyLen := int(binary.BigEndian.Uint32(data[12:16]))
	if keyLen < 0 || fileRecordHeaderLen+keyLen > len(data) {
		return 0, "", nil, errors.New("malformed cache record")
	}
	key = string(data[fileRecordHeaderLen : fileRecordHeaderLen+keyLen])
	value = data[fileRecordHeaderLen+keyLen:]
	return expiresAt, key, value, nil
}
