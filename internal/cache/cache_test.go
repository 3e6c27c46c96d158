package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-resolution-api/internal/models"
	"price-resolution-api/internal/pricing"
)

func TestInMemoryCache_Expiry(t *testing.T) {
	c := NewInMemoryCache()
	now := time.Date(2020, 6, 14, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, c.Delete(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Clear(ctx))
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

type countingStore struct {
	calls int
	store pricing.Store
	err   error
}

func (s *countingStore) Find(ctx context.Context, q pricing.Query) ([]models.PriceWindow, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.store.Find(ctx, q)
}

func testWindows() []models.PriceWindow {
	return []models.PriceWindow{{
		ID:        1,
		ProductID: 35455,
		BrandID:   1,
		StartDate: time.Date(2020, 6, 14, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2020, 12, 31, 23, 59, 59, 0, time.UTC),
		Currency:  "EUR",
		Value:     decimal.RequireFromString("35.50"),
	}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_ReadThrough(t *testing.T) {
	backing := &countingStore{store: pricing.NewMemoryStore(testWindows()...)}
	s := NewStore(backing, NewInMemoryCache(), time.Minute, discardLogger())
	q := pricing.LookupQuery(models.LookupRequest{
		ProductID: 35455, BrandID: 1, At: time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC),
	})

	first, err := s.Find(context.Background(), q)
	require.NoError(t, err)
	second, err := s.Find(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, backing.calls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, first[0].Value.Equal(second[0].Value))
	assert.True(t, first[0].EndDate.Equal(second[0].EndDate))
}

func TestStore_CachesEmptyResults(t *testing.T) {
	backing := &countingStore{store: pricing.NewMemoryStore(testWindows()...)}
	s := NewStore(backing, NewInMemoryCache(), time.Minute, discardLogger())
	q := pricing.LookupQuery(models.LookupRequest{
		ProductID: 35455, BrandID: 1, At: time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC),
	})

	for i := 0; i < 3; i++ {
		got, err := s.Find(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 1, backing.calls)
}

func TestStore_DoesNotCacheFailures(t *testing.T) {
	cause := errors.New("db down")
	backing := &countingStore{err: cause}
	s := NewStore(backing, NewInMemoryCache(), time.Minute, discardLogger())
	q := pricing.LookupQuery(models.LookupRequest{ProductID: 1, BrandID: 1})

	_, err := s.Find(context.Background(), q)
	assert.ErrorIs(t, err, cause)
	_, err = s.Find(context.Background(), q)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 2, backing.calls)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("redis down") }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis down")
}
func (brokenCache) Delete(context.Context, string) error { return nil }
func (brokenCache) Clear(context.Context) error          { return nil }

func TestStore_CacheFailureFallsBackToStore(t *testing.T) {
	backing := &countingStore{store: pricing.NewMemoryStore(testWindows()...)}
	s := NewStore(backing, brokenCache{}, time.Minute, discardLogger())

	res, err := pricing.NewResolver(s).Resolve(context.Background(), models.LookupRequest{
		ProductID: 35455, BrandID: 1, At: time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, res.Found())
	assert.Equal(t, 1, backing.calls)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, "127.0.0.1:1", "", 0)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
