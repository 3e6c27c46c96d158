package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-resolution-api/internal/models"
)

const (
	sampleProduct = int64(35455)
	sampleBrand   = int64(1)
)

func sampleWindows() []models.PriceWindow {
	ws := []models.PriceWindow{
		window(1, sampleProduct, sampleBrand, 0, "2020-06-14T00:00:00", "2020-12-31T23:59:59"),
		window(2, sampleProduct, sampleBrand, 1, "2020-06-14T15:00:00", "2020-06-14T18:30:00"),
		window(3, sampleProduct, sampleBrand, 1, "2020-06-15T00:00:00", "2020-06-15T11:00:00"),
		window(4, sampleProduct, sampleBrand, 1, "2020-06-15T16:00:00", "2020-12-31T23:59:59"),
	}
	values := []string{"35.50", "25.45", "30.50", "38.95"}
	for i := range ws {
		ws[i].Value = decimal.RequireFromString(values[i])
	}
	return ws
}

func lookup(at string) models.LookupRequest {
	return models.LookupRequest{ProductID: sampleProduct, BrandID: sampleBrand, At: ts(at)}
}

func TestResolve_SampleScenarios(t *testing.T) {
	r := NewResolver(NewMemoryStore(sampleWindows()...))

	cases := []struct {
		at        string
		wantID    int64
		wantValue string
	}{
		{"2020-06-14T10:00:00", 1, "35.50"},
		{"2020-06-14T16:00:00", 2, "25.45"},
		{"2020-06-14T21:00:00", 1, "35.50"},
		{"2020-06-15T10:00:00", 3, "30.50"},
		{"2020-06-16T21:00:00", 4, "38.95"},
	}
	for _, tc := range cases {
		t.Run(tc.at, func(t *testing.T) {
			res, err := r.Resolve(context.Background(), lookup(tc.at))
			require.NoError(t, err)

			w, ok := res.Window()
			require.True(t, ok)
			assert.Equal(t, tc.wantID, w.ID)
			assert.Equal(t, tc.wantValue, w.Value.StringFixed(2))
		})
	}
}

func TestResolve_OutOfRangeIsAbsent(t *testing.T) {
	r := NewResolver(NewMemoryStore(sampleWindows()...))

	res, err := r.Resolve(context.Background(), lookup("2021-08-16T21:00:00"))
	require.NoError(t, err)
	assert.False(t, res.Found())

	w, ok := res.Window()
	assert.False(t, ok)
	assert.Equal(t, models.PriceWindow{}, w)
}

func TestResolve_BoundaryInstants(t *testing.T) {
	r := NewResolver(NewMemoryStore(sampleWindows()...))

	for at, want := range map[string]int64{
		"2020-06-14T15:00:00": 2, // start of window 2
		"2020-06-14T18:30:00": 2, // end of window 2
		"2020-06-14T18:30:01": 1,
		"2020-06-14T00:00:00": 1,
		"2020-12-31T23:59:59": 4,
	} {
		res, err := r.Resolve(context.Background(), lookup(at))
		require.NoError(t, err)
		w, ok := res.Window()
		require.True(t, ok, at)
		assert.Equal(t, want, w.ID, at)
	}

	res, err := r.Resolve(context.Background(), lookup("2021-01-01T00:00:00"))
	require.NoError(t, err)
	assert.False(t, res.Found())
}

func TestResolve_FiltersOtherProductsAndBrands(t *testing.T) {
	store := NewMemoryStore(
		window(10, sampleProduct, 2, 9, "2020-01-01T00:00:00", "2020-12-31T23:59:59"),
		window(11, 99999, sampleBrand, 9, "2020-01-01T00:00:00", "2020-12-31T23:59:59"),
		window(12, sampleProduct, sampleBrand, 0, "2020-01-01T00:00:00", "2020-12-31T23:59:59"),
	)
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), lookup("2020-06-01T00:00:00"))
	require.NoError(t, err)
	w, ok := res.Window()
	require.True(t, ok)
	assert.Equal(t, int64(12), w.ID)

	res, err = r.Resolve(context.Background(), models.LookupRequest{
		ProductID: 424242,
		BrandID:   sampleBrand,
		At:        ts("2020-06-01T00:00:00"),
	})
	require.NoError(t, err)
	assert.False(t, res.Found())
}

func TestResolve_EqualPriorityLowestIDWins(t *testing.T) {
	store := NewMemoryStore(
		window(8, sampleProduct, sampleBrand, 2, "2020-01-01T00:00:00", "2020-12-31T23:59:59"),
		window(5, sampleProduct, sampleBrand, 2, "2020-01-01T00:00:00", "2020-12-31T23:59:59"),
		window(6, sampleProduct, sampleBrand, 1, "2020-01-01T00:00:00", "2020-12-31T23:59:59"),
	)
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), lookup("2020-03-01T00:00:00"))
	require.NoError(t, err)
	w, _ := res.Window()
	assert.Equal(t, int64(5), w.ID)
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewResolver(NewMemoryStore(sampleWindows()...))
	req := lookup("2020-06-14T16:00:00")

	first, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolve_ConcurrentCalls(t *testing.T) {
	r := NewResolver(NewMemoryStore(sampleWindows()...))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Resolve(context.Background(), lookup("2020-06-15T10:00:00"))
			assert.NoError(t, err)
			w, _ := res.Window()
			assert.Equal(t, int64(3), w.ID)
		}()
	}
	wg.Wait()
}

// unorderedStore returns every candidate in insertion order, ignoring the query.
type unorderedStore struct {
	windows []models.PriceWindow
	queries []Query
}

func (s *unorderedStore) Find(_ context.Context, q Query) ([]models.PriceWindow, error) {
	s.queries = append(s.queries, q)
	return s.windows, nil
}

func TestResolve_DoesNotTrustStoreOrdering(t *testing.T) {
	store := &unorderedStore{windows: sampleWindows()}
	r := NewResolver(store)

	res, err := r.Resolve(context.Background(), lookup("2020-06-14T16:00:00"))
	require.NoError(t, err)
	w, _ := res.Window()
	assert.Equal(t, int64(2), w.ID)

	require.Len(t, store.queries, 1)
	q := store.queries[0]
	assert.Equal(t, 1, q.Limit)
	assert.Equal(t, []Order{{SortPriority, Desc}, {SortID, Asc}}, q.OrderBy)
	assert.Equal(t, And(BrandEquals(1), ProductEquals(35455), TemporalContainment(ts("2020-06-14T16:00:00"))), q.Filter)
}

type failingStore struct{ err error }

func (s failingStore) Find(context.Context, Query) ([]models.PriceWindow, error) {
	return nil, s.err
}

func TestResolve_StoreFaultPropagates(t *testing.T) {
	cause := errors.New("connection refused")
	r := NewResolver(failingStore{err: cause})

	res, err := r.Resolve(context.Background(), lookup("2020-06-14T16:00:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.False(t, res.Found())
}

func TestResolve_ContextCancelledIsStoreFault(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(NewMemoryStore(sampleWindows()...)).Resolve(ctx, lookup("2020-06-14T16:00:00"))
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, context.Canceled)
}
