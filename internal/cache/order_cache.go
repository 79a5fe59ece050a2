package cache

import (
	"context"
	"log"
	"sync"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/orders"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

type OrderRepository interface {
	GetAllActiveOrders(ctx context.Context) ([]*repository.Order, error)
}

// OrderCache is a read-through cache of non-terminal orders backing the
// operator GET endpoints. Terminal orders fall out on Set.
type OrderCache struct {
	mu    sync.RWMutex
	cache map[string]*repository.Order
	repo  OrderRepository
}

func NewOrderCache(repo OrderRepository) *OrderCache {
	return &OrderCache{
		cache: make(map[string]*repository.Order),
		repo:  repo,
	}
}

func (c *OrderCache) LoadInitialData(ctx context.Context) error {
	log.Println("Loading initial data into order cache...")
	activeOrders, err := c.repo.GetAllActiveOrders(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, order := range activeOrders {
		orderCopy := *order
		c.cache[order.ID] = &orderCopy
	}
	metrics.OrderCacheItems.Set(float64(len(c.cache)))
	log.Printf("Successfully loaded %d active orders into cache.", len(c.cache))
	return nil
}

func (c *OrderCache) Get(orderID string) (*repository.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	order, found := c.cache[orderID]
	if !found {
		return nil, false
	}
	orderCopy := *order
	return &orderCopy, true
}

func (c *OrderCache) Set(order *repository.Order) {
	if isTerminalStatus(order.Status) {
		c.Delete(order.ID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	orderCopy := *order
	c.cache[order.ID] = &orderCopy
	metrics.OrderCacheItems.Set(float64(len(c.cache)))
}

func (c *OrderCache) Delete(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.cache[orderID]; found {
		delete(c.cache, orderID)
		metrics.OrderCacheItems.Set(float64(len(c.cache)))
	}
}

func isTerminalStatus(status string) bool {
	parsed, err := orders.ParseStatus(status)
	if err != nil {
		return true
	}
	return parsed.Terminal()
}
