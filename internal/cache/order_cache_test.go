package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

type stubOrderRepo struct {
	orders []*repository.Order
	err    error
}

func (s *stubOrderRepo) GetAllActiveOrders(_ context.Context) ([]*repository.Order, error) {
	return s.orders, s.err
}

func TestLoadInitialData(t *testing.T) {
	t.Run("warms the cache with active orders", func(t *testing.T) {
		cache := NewOrderCache(&stubOrderRepo{orders: []*repository.Order{
			{ID: "o1", Status: "pending"},
			{ID: "o2", Status: "shipped"},
		}})

		require.NoError(t, cache.LoadInitialData(context.Background()))

		order, found := cache.Get("o1")
		require.True(t, found)
		assert.Equal(t, "pending", order.Status)

		_, found = cache.Get("o3")
		assert.False(t, found)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		cache := NewOrderCache(&stubOrderRepo{err: errors.New("connection refused")})
		assert.Error(t, cache.LoadInitialData(context.Background()))
	})
}

func TestSetAndGet(t *testing.T) {
	cache := NewOrderCache(&stubOrderRepo{})

	cache.Set(&repository.Order{ID: "o1", Status: "confirmed"})

	order, found := cache.Get("o1")
	require.True(t, found)
	assert.Equal(t, "confirmed", order.Status)

	// Mutating the returned copy must not leak back into the cache.
	order.Status = "tampered"
	fresh, _ := cache.Get("o1")
	assert.Equal(t, "confirmed", fresh.Status)
}

func TestSetEvictsTerminalOrders(t *testing.T) {
	cache := NewOrderCache(&stubOrderRepo{})

	cache.Set(&repository.Order{ID: "o1", Status: "shipped"})
	cache.Set(&repository.Order{ID: "o1", Status: "delivered"})
	_, found := cache.Get("o1")
	assert.False(t, found)

	cache.Set(&repository.Order{ID: "o2", Status: "pending"})
	cache.Set(&repository.Order{ID: "o2", Status: "cancelled"})
	_, found = cache.Get("o2")
	assert.False(t, found)
}

func TestDelete(t *testing.T) {
	cache := NewOrderCache(&stubOrderRepo{})

	cache.Set(&repository.Order{ID: "o1", Status: "pending"})
	cache.Delete("o1")

	_, found := cache.Get("o1")
	assert.False(t, found)

	// Deleting a missing key is a no-op.
	cache.Delete("o1")
}
