package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusCreated    TaskStatus = "CREATED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusDone       TaskStatus = "DONE"
)

type OutboxTask struct {
	ID          uuid.UUID       `db:"id"`
	Status      TaskStatus      `db:"status"`
	Payload     json.RawMessage `db:"payload"`
	Topic       string          `db:"topic"`
	Attempts    int             `db:"attempts"`
	LastError   *string         `db:"last_error"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	CompletedAt *time.Time      `db:"completed_at"`
}

// OrderEventPayload is published to Kafka whenever an order changes status.
type OrderEventPayload struct {
	Timestamp    time.Time `json:"timestamp"`
	OrderID      string    `json:"order_id"`
	OldStatus    string    `json:"old_status"`
	NewStatus    string    `json:"new_status"`
	Actor        string    `json:"actor"`
	Reason       string    `json:"reason,omitempty"`
	TrackingCode string    `json:"tracking_code,omitempty"`
}

// ShipmentEventPayload is published to Kafka for shipment lifecycle events.
type ShipmentEventPayload struct {
	Timestamp     time.Time `json:"timestamp"`
	ShipmentID    string    `json:"shipment_id"`
	OrderID       string    `json:"order_id"`
	ConsignmentNo string    `json:"consignment_no,omitempty"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
}

type AuditLogPayload struct {
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	ShipmentID string    `json:"shipment_id,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Handler    string    `json:"handler"`
	StatusCode int       `json:"status_code"`
	Request    string    `json:"request,omitempty"`
	Response   string    `json:"response,omitempty"`
	OldStatus  string    `json:"old_status,omitempty"`
	NewStatus  string    `json:"new_status,omitempty"`
	Action     string    `json:"action"`
}
