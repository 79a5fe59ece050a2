package server

import (
	"context"
	"encoding/json"
	"fmt"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

type OutboxRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
}

// OutboxAuditSink stores audit batches as outbox tasks, one task per entry,
// so the publisher ships them to Kafka alongside the domain events.
type OutboxAuditSink struct {
	db     db.DB
	outbox OutboxRepository
	topic  string
}

func NewOutboxAuditSink(database db.DB, outbox OutboxRepository, topic string) *OutboxAuditSink {
	return &OutboxAuditSink{
		db:     database,
		outbox: outbox,
		topic:  topic,
	}
}

func (s *OutboxAuditSink) SaveBatch(ctx context.Context, entries []AuditLogEntry) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin audit batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, entry := range entries {
		payload, err := json.Marshal(repository.AuditLogPayload{
			Timestamp:  entry.Timestamp,
			UserID:     entry.UserID,
			OrderID:    entry.OrderID,
			ShipmentID: entry.ShipmentID,
			Method:     entry.Method,
			Path:       entry.Path,
			Handler:    entry.Handler,
			StatusCode: entry.StatusCode,
			Request:    entry.Request,
			Response:   entry.Response,
			OldStatus:  entry.OldStatus,
			NewStatus:  entry.NewStatus,
			Action:     entry.Action,
		})
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}

		task := &repository.OutboxTask{
			Payload: payload,
			Topic:   s.topic,
		}
		if err := s.outbox.CreateTx(ctx, tx, task); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit audit batch: %w", err)
	}
	return nil
}
