//go:generate mockgen -source ./service.go -destination=./mocks/service.go -package=mock_orders
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Order, error)
	UpdateStatusTx(ctx context.Context, tx db.Tx, id, status string, trackingCode, cancelReason *string) error
}

type HistoryRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error
	GetByOrderID(ctx context.Context, orderID string) ([]*repository.HistoryEntry, error)
}

type OutboxRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
}

// CancelHook runs after a cancellation has been committed. Hook failures do
// not roll the cancellation back: from the customer's perspective cancelling
// must always succeed, bookkeeping is reconciled manually.
type CancelHook func(ctx context.Context, order *repository.Order) error

// StatusUpdate carries one requested transition.
type StatusUpdate struct {
	Status       Status
	Actor        string
	Reason       string
	TrackingCode *string
}

// Service owns order status and its append-only history. The status change,
// the history entry and the outbox event are committed in one transaction;
// the order row is locked for the duration, which serializes concurrent
// updates to the same order.
type Service struct {
	db          db.DB
	orders      OrderRepository
	history     HistoryRepository
	outbox      OutboxRepository
	topic       string
	logger      *zap.Logger
	cancelHooks []CancelHook
}

func NewService(database db.DB, orders OrderRepository, history HistoryRepository, outbox OutboxRepository, topic string, logger *zap.Logger) *Service {
	return &Service{
		db:      database,
		orders:  orders,
		history: history,
		outbox:  outbox,
		topic:   topic,
		logger:  logger,
	}
}

// OnCancel registers a post-cancellation hook. Hooks run in registration
// order after the transaction commits.
func (s *Service) OnCancel(hook CancelHook) {
	s.cancelHooks = append(s.cancelHooks, hook)
}

func (s *Service) Get(ctx context.Context, orderID string) (*repository.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) History(ctx context.Context, orderID string) ([]*repository.HistoryEntry, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.history.GetByOrderID(ctx, orderID)
}

// UpdateStatus applies one lifecycle transition. Updating to the current
// status is a no-op: the order is returned unchanged and no history entry is
// written.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, upd StatusUpdate) (*repository.Order, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	order, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	current, err := ParseStatus(order.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s has corrupt status: %w", orderID, err)
	}

	if current == upd.Status {
		return order, nil
	}

	if !current.CanTransitionTo(upd.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, upd.Status)
	}

	reason := upd.Reason
	if reason == "" {
		reason = fmt.Sprintf("Status changed to %s", upd.Status)
	}

	var cancelReason *string
	if upd.Status == StatusCancelled {
		cancelReason = &reason
	}

	if err := s.orders.UpdateStatusTx(ctx, tx, orderID, string(upd.Status), upd.TrackingCode, cancelReason); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	now := time.Now().UTC()
	entry := &repository.HistoryEntry{
		OrderID:   orderID,
		Status:    string(upd.Status),
		Actor:     upd.Actor,
		Reason:    reason,
		ChangedAt: now,
	}
	if err := s.history.CreateTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("append history entry: %w", err)
	}

	if err := s.enqueueEventTx(ctx, tx, order, upd, reason, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}

	metrics.OrderStatusTransitionsTotal.WithLabelValues(string(upd.Status)).Inc()

	updated := *order
	updated.Status = string(upd.Status)
	updated.UpdatedAt = now
	if upd.TrackingCode != nil {
		updated.TrackingCode = upd.TrackingCode
	}
	if cancelReason != nil {
		updated.CancelReason = cancelReason
	}

	if upd.Status == StatusCancelled && current != StatusCancelled {
		s.runCancelHooks(ctx, &updated)
	}

	return &updated, nil
}

func (s *Service) enqueueEventTx(ctx context.Context, tx db.Tx, order *repository.Order, upd StatusUpdate, reason string, now time.Time) error {
	payload := repository.OrderEventPayload{
		Timestamp: now,
		OrderID:   order.ID,
		OldStatus: order.Status,
		NewStatus: string(upd.Status),
		Actor:     upd.Actor,
		Reason:    reason,
	}
	if upd.TrackingCode != nil {
		payload.TrackingCode = *upd.TrackingCode
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	if err := s.outbox.CreateTx(ctx, tx, &repository.OutboxTask{Topic: s.topic, Payload: raw}); err != nil {
		return fmt.Errorf("enqueue order event: %w", err)
	}
	return nil
}

func (s *Service) runCancelHooks(ctx context.Context, order *repository.Order) {
	for _, hook := range s.cancelHooks {
		if err := hook(ctx, order); err != nil {
			s.logger.Error("post-cancellation hook failed, order stays cancelled",
				zap.String("order_id", order.ID),
				zap.Error(err))
			metrics.StockRestoreFailuresTotal.Inc()
		}
	}
}
