package flights

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"skybook/internal/shared/apperrors"
	"skybook/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, id string) uuid.UUID {
	t.Helper()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	return parsed
}

// memoryCache is an in-memory cache.Service that applies GetOrSet's
// write-back synchronously so tests see deterministic state.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	deletedKeys     []string
	deletedPatterns []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletedKeys = append(c.deletedKeys, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.deletedPatterns = append(c.deletedPatterns, pattern)
	return nil
}

func (c *memoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	value, err := fetcher()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func TestFlightCacheAside(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (Service, *memoryRepo, *memoryCache, string) {
		repo, cacheSvc := newMemoryRepo(), newMemoryCache()
		svc := NewService(repo, cacheSvc, time.Minute)
		created, err := svc.CreateFlight(ctx, CreateFlightRequest{
			FlightNumber: "SB101",
			Departure:    "Amsterdam",
			Destination:  "Lisbon",
			DepartsAt:    time.Now().Add(48 * time.Hour),
			MaxTickets:   60,
			Price:        90.0,
		})
		require.NoError(t, err)
		return svc, repo, cacheSvc, created.ID
	}

	t.Run("detail read served from cache", func(t *testing.T) {
		svc, repo, _, id := setup(t)

		first, err := svc.GetFlight(ctx, mustParse(t, id))
		require.NoError(t, err)
		assert.Equal(t, 90.0, first.Price)

		// Change the row under the cache; a second read must still see
		// the cached snapshot.
		repo.mu.Lock()
		repo.flights[mustParse(t, id)].Price = 120.0
		repo.mu.Unlock()

		second, err := svc.GetFlight(ctx, mustParse(t, id))
		require.NoError(t, err)
		assert.Equal(t, 90.0, second.Price)
	})

	t.Run("listing served from cache", func(t *testing.T) {
		svc, repo, _, id := setup(t)

		first, err := svc.GetAllFlights(ctx, FlightListQuery{})
		require.NoError(t, err)
		require.Len(t, first.Flights, 1)

		repo.mu.Lock()
		delete(repo.flights, mustParse(t, id))
		repo.mu.Unlock()

		second, err := svc.GetAllFlights(ctx, FlightListQuery{})
		require.NoError(t, err)
		assert.Len(t, second.Flights, 1)
	})

	t.Run("update drops detail key and listings", func(t *testing.T) {
		svc, _, cacheSvc, id := setup(t)

		_, err := svc.GetFlight(ctx, mustParse(t, id))
		require.NoError(t, err)
		_, err = svc.GetAllFlights(ctx, FlightListQuery{})
		require.NoError(t, err)

		newPrice := 150.0
		_, err = svc.UpdateFlight(ctx, mustParse(t, id), UpdateFlightRequest{Price: &newPrice})
		require.NoError(t, err)

		assert.Contains(t, cacheSvc.deletedKeys, flightCachePrefix+"id:"+id)
		assert.Contains(t, cacheSvc.deletedPatterns, flightCachePrefix+"list:*")

		refreshed, err := svc.GetFlight(ctx, mustParse(t, id))
		require.NoError(t, err)
		assert.Equal(t, 150.0, refreshed.Price)
	})

	t.Run("delete drops cached entries", func(t *testing.T) {
		svc, _, cacheSvc, id := setup(t)

		_, err := svc.GetFlight(ctx, mustParse(t, id))
		require.NoError(t, err)

		require.NoError(t, svc.DeleteFlight(ctx, mustParse(t, id)))

		assert.Contains(t, cacheSvc.deletedKeys, flightCachePrefix+"id:"+id)

		_, err = svc.GetFlight(ctx, mustParse(t, id))
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("missing flight is not cached", func(t *testing.T) {
		svc, _, _, _ := setup(t)

		_, err := svc.GetFlight(ctx, mustParse(t, "b9a7f2c4-0000-0000-0000-000000000099"))
		assert.True(t, apperrors.IsNotFound(err))
	})
}
