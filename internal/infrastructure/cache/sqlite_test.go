package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelscan/labelscan/internal/domain"
)

func newTestSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewSQLiteCache_RequiresPath(t *testing.T) {
	_, err := NewSQLiteCache("")
	assert.Error(t, err)
}

func TestSQLiteCache_SetAndGet(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ingredient:salt", testRecord("Salt"), time.Hour))

	got, err := c.Get(ctx, "ingredient:salt")
	require.NoError(t, err)
	assert.Equal(t, "Salt", got.Ingredient)
	assert.Equal(t, "safe", got.Health.Verdict)
	require.NotNil(t, got.Health.Rating)
	assert.Equal(t, 4, *got.Health.Rating)
	assert.Equal(t, domain.StringList{"Nowhere"}, got.BannedCountries)
	require.NotNil(t, got.RawAIResponse)
	assert.Equal(t, "raw model output", *got.RawAIResponse)

	exists, err := c.Exists(ctx, "ingredient:salt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSQLiteCache_Upsert(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ingredient:salt", &domain.EnrichmentRecord{Ingredient: "Salt", Usage: "old"}, time.Hour))
	require.NoError(t, c.Set(ctx, "ingredient:salt", &domain.EnrichmentRecord{Ingredient: "Salt", Usage: "new"}, time.Hour))

	got, err := c.Get(ctx, "ingredient:salt")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Usage)
}

func TestSQLiteCache_Miss(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "ingredient:missing")
	assert.True(t, errors.Is(err, domain.ErrCacheMiss))

	exists, err := c.Exists(ctx, "ingredient:missing")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, c.Set(ctx, "ingredient:nil", nil, time.Hour), domain.ErrInvalidRequest)
}

func TestSQLiteCache_ExpirationAndPurge(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "ingredient:salt", testRecord("Salt"), time.Minute))
	require.NoError(t, c.Set(ctx, "ingredient:sugar", testRecord("Sugar"), time.Hour))

	// Jump past the first TTL
	c.now = func() time.Time { return now.Add(2 * time.Minute) }

	_, err := c.Get(ctx, "ingredient:salt")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	exists, err := c.Exists(ctx, "ingredient:salt")
	require.NoError(t, err)
	assert.False(t, exists)

	removed, err := c.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = c.Get(ctx, "ingredient:sugar")
	assert.NoError(t, err)
}

func TestSQLiteCache_Delete(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ingredient:salt", testRecord("Salt"), time.Hour))
	require.NoError(t, c.Delete(ctx, "ingredient:salt"))

	_, err := c.Get(ctx, "ingredient:salt")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestSQLiteCache_ReopenKeepsDataAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := NewSQLiteCache(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "ingredient:salt", testRecord("Salt"), time.Hour))
	require.NoError(t, first.Close())

	second, err := NewSQLiteCache(path)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, path, second.Path())
	got, err := second.Get(ctx, "ingredient:salt")
	require.NoError(t, err)
	assert.Equal(t, "Salt", got.Ingredient)

	var versions int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}
