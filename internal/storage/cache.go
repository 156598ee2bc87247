package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ComputeFunc produces the value stored under a cache key.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Cache stores derived data keyed by a content hash of its inputs.
type Cache interface {
	// GetOrCompute returns the value stored under key. On a miss it calls
	// compute, stores the result and returns it. A failed compute is not cached.
	GetOrCompute(ctx context.Context, key string, compute ComputeFunc) (value []byte, hit bool, err error)

	// Close releases resources held by the cache.
	Close() error
}

// Key derives a cache key from parts. Every part is length-prefixed before
// hashing, so ("ab", "c") and ("a", "bc") produce different keys.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the SHA-256 of the file contents at path.
func Fingerprint(path string) (fp string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer closeWithError(f, &err)

	h := sha256.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GetOrComputeJSON is GetOrCompute for values serialised as JSON.
func GetOrComputeJSON[T any](ctx context.Context, c Cache, key string, compute func(context.Context) (T, error)) (v T, hit bool, err error) {
	p, hit, err := c.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return v, false, err
	}
	if err = json.Unmarshal(p, &v); err != nil {
		return v, hit, fmt.Errorf("decoding cached value: %w", err)
	}
	return v, hit, nil
}

// NopCache never stores anything and always computes.
type NopCache struct{}

func (NopCache) GetOrCompute(ctx context.Context, _ string, compute ComputeFunc) ([]byte, bool, error) {
	v, err := compute(ctx)
	return v, false, err
}

func (NopCache) Close() error { return nil }

const (
	initCacheSchemaSQL = `
CREATE TABLE IF NOT EXISTS cache
(
    key        TEXT PRIMARY KEY,
    value      BLOB    NOT NULL,
    created_at INTEGER NOT NULL
)`

	selectCacheSQL = `SELECT value FROM cache WHERE key = ?`

	upsertCacheSQL = `
INSERT INTO cache (key, value, created_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`
)

var _ Cache = (*SqliteCache)(nil)

// SqliteCache is a Cache persisted in a Sqlite database.
type SqliteCache struct {
	dbPath string

	db     *sql.DB
	dbOnce sync.Once
	dbErr  error

	mu        sync.Mutex // serialises computes so one key is computed once
	closeOnce sync.Once
	closeErr  error
}

// NewSqliteCache returns a cache backed by the Sqlite database at dbPath.
func NewSqliteCache(dbPath string) *SqliteCache {
	return &SqliteCache{dbPath: dbPath}
}

func (c *SqliteCache) getDB() (*sql.DB, error) {
	c.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", c.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			c.dbErr = fmt.Errorf("opening cache connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1)

		if err = runSQLCommand(db, initCacheSchemaSQL); err != nil {
			_ = db.Close()
			c.dbErr = fmt.Errorf("initializing cache schema: %w", err)
			return
		}

		c.db = db
	})

	return c.db, c.dbErr
}

func (c *SqliteCache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]byte, bool, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var value []byte
	err = db.QueryRowContext(ctx, selectCacheSQL, key).Scan(&value)
	switch {
	case err == nil:
		return value, true, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, fmt.Errorf("looking up cache key %s: %w", key, err)
	}

	if value, err = compute(ctx); err != nil {
		return nil, false, err
	}
	if value == nil {
		value = []byte{}
	}

	if _, err = db.ExecContext(ctx, upsertCacheSQL, key, value, time.Now().UnixNano()); err != nil {
		return nil, false, fmt.Errorf("storing cache key %s: %w", key, err)
	}
	return value, false, nil
}

func (c *SqliteCache) Close() error {
	c.closeOnce.Do(func() {
		if c.db != nil {
			c.closeErr = c.db.Close()
			c.db = nil
		}
	})
	return c.closeErr
}
