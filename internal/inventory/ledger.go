//go:generate mockgen -source ./ledger.go -destination=./mocks/ledger.go -package=mock_inventory
package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

var (
	// ErrStockAlreadyApplied guards against decrementing the same order twice
	// when the caller retries.
	ErrStockAlreadyApplied = errors.New("stock already decremented for this order")
	// ErrStockNotApplied guards against restoring stock that was never taken.
	ErrStockNotApplied = errors.New("stock was not decremented for this order")
)

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	GetItems(ctx context.Context, orderID string) ([]*repository.OrderItem, error)
	SetStockApplied(ctx context.Context, id string, applied bool) error
}

type VariantRepository interface {
	GetByID(ctx context.Context, id string) (*repository.Variant, error)
	AdjustStock(ctx context.Context, id string, delta int) (*repository.Variant, error)
}

// Shortfall describes one order item that cannot be satisfied from stock.
type Shortfall struct {
	VariantID string `json:"variant_id"`
	Title     string `json:"title"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Ledger owns per-variant stock counters. Each variant mutation is a single
// atomic UPDATE at the storage layer; there is no cross-item transaction, so
// a multi-item order can be partially applied. Per-item failures are
// collected and returned, they never abort the remaining items.
type Ledger struct {
	orders   OrderRepository
	variants VariantRepository
	logger   *zap.Logger
}

func NewLedger(orders OrderRepository, variants VariantRepository, logger *zap.Logger) *Ledger {
	return &Ledger{
		orders:   orders,
		variants: variants,
		logger:   logger,
	}
}

// CheckAvailability compares requested quantities against current stock.
// Read-only: it never mutates anything, regardless of outcome.
func (l *Ledger) CheckAvailability(ctx context.Context, items []*repository.OrderItem) ([]Shortfall, error) {
	var shortfalls []Shortfall
	for _, item := range items {
		if item.VariantID == nil {
			continue
		}
		variant, err := l.variants.GetByID(ctx, *item.VariantID)
		if err != nil {
			if errors.Is(err, repository.ErrObjectNotFound) {
				shortfalls = append(shortfalls, Shortfall{
					VariantID: *item.VariantID,
					Title:     item.Title,
					Requested: item.Qty,
					Available: 0,
				})
				continue
			}
			return nil, err
		}
		if variant.Stock < item.Qty {
			shortfalls = append(shortfalls, Shortfall{
				VariantID: variant.ID,
				Title:     item.Title,
				Requested: item.Qty,
				Available: variant.Stock,
			})
		}
	}
	return shortfalls, nil
}

// DecrementForOrder subtracts each item's quantity from its variant's stock.
func (l *Ledger) DecrementForOrder(ctx context.Context, orderID string) error {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.StockApplied {
		return ErrStockAlreadyApplied
	}
	if err := l.applyDelta(ctx, orderID, -1); err != nil {
		return err
	}
	return nil
}

// RestoreForOrder adds each item's quantity back to its variant's stock.
func (l *Ledger) RestoreForOrder(ctx context.Context, orderID string) error {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.StockApplied {
		return ErrStockNotApplied
	}
	if err := l.applyDelta(ctx, orderID, 1); err != nil {
		return err
	}
	return nil
}

func (l *Ledger) applyDelta(ctx context.Context, orderID string, sign int) error {
	items, err := l.orders.GetItems(ctx, orderID)
	if err != nil {
		return err
	}

	var itemErrs []error
	for _, item := range items {
		if item.VariantID == nil {
			l.logger.Info("skipping order item without variant reference",
				zap.String("order_id", orderID),
				zap.Int64("item_id", item.ID))
			continue
		}

		variant, err := l.variants.AdjustStock(ctx, *item.VariantID, sign*item.Qty)
		if err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("variant %s: %w", *item.VariantID, err))
			continue
		}
		if variant.OutOfStock {
			l.logger.Info("variant out of stock",
				zap.String("variant_id", variant.ID),
				zap.String("order_id", orderID))
		}
	}

	// The marker is flipped even on partial failure: the items that did go
	// through must not be applied a second time on retry. Failed items need
	// manual reconciliation, which is why they are all reported back.
	if err := l.orders.SetStockApplied(ctx, orderID, sign < 0); err != nil {
		itemErrs = append(itemErrs, fmt.Errorf("mark stock applied: %w", err))
	}

	return errors.Join(itemErrs...)
}
