package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/herbstock/herbstock/internal/units"
)

func newTestCache(t *testing.T) (*SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotCache(client, time.Minute), mr
}

func TestSnapshotCachePopulatesOnMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (map[string]PurchaseRecord, error) {
		calls++
		return map[string]PurchaseRecord{
			"Ashwagandha": {ID: "p1", Material: "Ashwagandha", Stock: 2, QuantityUnit: units.UnitKg},
		}, nil
	}

	first, err := cache.Fetch(ctx, 7, loader)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, "p1", first["Ashwagandha"].ID)

	second, err := cache.Fetch(ctx, 7, loader)
	require.NoError(t, err)
	require.Equal(t, 1, calls, "second fetch must be served from cache")
	require.Equal(t, first, second)
}

func TestSnapshotCacheIsolatesUsers(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, err := cache.Fetch(ctx, 1, func(context.Context) (map[string]PurchaseRecord, error) {
		return map[string]PurchaseRecord{"Neem": {ID: "a"}}, nil
	})
	require.NoError(t, err)

	other, err := cache.Fetch(ctx, 2, func(context.Context) (map[string]PurchaseRecord, error) {
		return map[string]PurchaseRecord{"Tulsi": {ID: "b"}}, nil
	})
	require.NoError(t, err)
	require.NotContains(t, other, "Neem")
}

func TestSnapshotCacheInvalidateForcesReload(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (map[string]PurchaseRecord, error) {
		calls++
		return map[string]PurchaseRecord{"Brahmi": {ID: "p2", Stock: float64(calls)}}, nil
	}

	_, err := cache.Fetch(ctx, 3, loader)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, 3))

	reloaded, err := cache.Fetch(ctx, 3, loader)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, float64(2), reloaded["Brahmi"].Stock)
}

func TestSnapshotCacheRebuildsCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("ledger:snapshot:9", "{not json"))

	snapshot, err := cache.Fetch(ctx, 9, func(context.Context) (map[string]PurchaseRecord, error) {
		return map[string]PurchaseRecord{"Shatavari": {ID: "p3"}}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "p3", snapshot["Shatavari"].ID)
}

func TestSnapshotCacheLoaderErrorPropagates(t *testing.T) {
	cache, _ := newTestCache(t)

	boom := errors.New("projection failed")
	_, err := cache.Fetch(context.Background(), 4, func(context.Context) (map[string]PurchaseRecord, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestSnapshotCacheNilFallsThrough(t *testing.T) {
	var cache *SnapshotCache

	snapshot, err := cache.Fetch(context.Background(), 5, func(context.Context) (map[string]PurchaseRecord, error) {
		return map[string]PurchaseRecord{"Amla": {ID: "p4"}}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "p4", snapshot["Amla"].ID)
}
