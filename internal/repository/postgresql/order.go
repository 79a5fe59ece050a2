package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

type OrderRepo struct {
	db db.DB
}

func NewOrderRepo(db db.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(ctx context.Context, order *repository.Order) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO orders (
            id, customer_id, status, recipient_name, address_line, city, phone, email,
            delivery_method, total_price, stock_applied, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, order.ID, order.CustomerID, order.Status, order.RecipientName, order.AddressLine,
		order.City, order.Phone, order.Email, order.DeliveryMethod, order.TotalPrice,
		order.StockApplied, order.CreatedAt, order.UpdatedAt)
	return err
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*repository.Order, error) {
	var order repository.Order
	err := r.db.Get(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDTx locks the order row for the duration of the transaction so that
// status changes for one order are serialized.
func (r *OrderRepo) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Order, error) {
	var order repository.Order
	err := tx.Get(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) GetItems(ctx context.Context, orderID string) ([]*repository.OrderItem, error) {
	var items []*repository.OrderItem
	err := r.db.Select(ctx, &items, `
        SELECT * FROM order_items
        WHERE order_id = $1
        ORDER BY id ASC
    `, orderID)
	return items, err
}

func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx db.Tx, id, status string, trackingCode, cancelReason *string) error {
	tag, err := tx.Exec(ctx, `
        UPDATE orders
        SET
            status = $2,
            tracking_code = COALESCE($3, tracking_code),
            cancel_reason = COALESCE($4, cancel_reason),
            updated_at = $5
        WHERE id = $1
    `, id, status, trackingCode, cancelReason, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

func (r *OrderRepo) SetStockApplied(ctx context.Context, id string, applied bool) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE orders
        SET stock_applied = $2, updated_at = $3
        WHERE id = $1
    `, id, applied, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

func (r *OrderRepo) GetAllActiveOrders(ctx context.Context) ([]*repository.Order, error) {
	query := `
        SELECT * FROM orders
        WHERE status NOT IN ('delivered', 'cancelled')
        ORDER BY created_at ASC
    `
	var orders []*repository.Order
	err := r.db.Select(ctx, &orders, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all active orders: %w", err)
	}
	return orders, nil
}
