package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedMesh struct {
	Cells  int       `json:"cells"`
	Values []float64 `json:"values"`
}

func TestSqliteCache_GetOrCompute(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c := NewSqliteCache(path)
	t.Cleanup(func() { _ = c.Close() })

	calls := 0
	compute := func(context.Context) (cachedMesh, error) {
		calls++
		return cachedMesh{Cells: 4, Values: []float64{-1, -2.5, -3, -4}}, nil
	}

	key := Key("mesh", "abc", "0.5")

	v, hit, err := GetOrComputeJSON(ctx, c, key, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 4, v.Cells)

	v, hit, err = GetOrComputeJSON(ctx, c, key, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []float64{-1, -2.5, -3, -4}, v.Values)
	assert.Equal(t, 1, calls, "second lookup must not compute")

	// entries survive reopening the cache
	require.NoError(t, c.Close())
	reopened := NewSqliteCache(path)
	t.Cleanup(func() { _ = reopened.Close() })

	_, hit, err = GetOrComputeJSON(ctx, reopened, key, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)
}

func TestSqliteCache_ComputeErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteCache(filepath.Join(t.TempDir(), "cache.db"))
	t.Cleanup(func() { _ = c.Close() })

	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(ctx, "k", func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	v, hit, err := c.GetOrCompute(ctx, "k", func(context.Context) ([]byte, error) { return []byte("ok"), nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []byte("ok"), v)
}

func TestNopCache(t *testing.T) {
	calls := 0
	compute := func(context.Context) ([]byte, error) {
		calls++
		return []byte("v"), nil
	}

	var c Cache = NopCache{}
	for range 3 {
		_, hit, err := c.GetOrCompute(context.Background(), "k", compute)
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 3, calls)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, Key("mesh", "0.5"), Key("mesh", "0.25"))
	assert.Len(t, Key(), 64)
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.db")
	b := filepath.Join(dir, "b.db")
	require.NoError(t, os.WriteFile(a, []byte("soundings"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("soundings!"), 0o644))

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)

	again, err := Fingerprint(a)
	require.NoError(t, err)
	assert.Equal(t, fa, again)

	_, err = Fingerprint(filepath.Join(dir, "missing.db"))
	assert.Error(t, err)
}
