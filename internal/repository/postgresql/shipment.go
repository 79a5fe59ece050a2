package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

type ShipmentRepo struct {
	db db.DB
}

func NewShipmentRepo(db db.DB) *ShipmentRepo {
	return &ShipmentRepo{db: db}
}

func (r *ShipmentRepo) Create(ctx context.Context, shipment *repository.Shipment) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO shipments (
            id, order_id, consignment_no, status, weight, pieces, cod_amount,
            origin_city, destination_city, fragile, insurance_value, remarks,
            last_api_call, estimated_delivery, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
    `, shipment.ID, shipment.OrderID, shipment.ConsignmentNo, shipment.Status,
		shipment.Weight, shipment.Pieces, shipment.CODAmount, shipment.OriginCity,
		shipment.DestinationCity, shipment.Fragile, shipment.InsuranceValue, shipment.Remarks,
		shipment.LastAPICall, shipment.EstimatedDelivery, shipment.CreatedAt, shipment.UpdatedAt)
	return err
}

func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*repository.Shipment, error) {
	var shipment repository.Shipment
	err := r.db.Get(ctx, &shipment, "SELECT * FROM shipments WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

func (r *ShipmentRepo) GetByOrderID(ctx context.Context, orderID string) (*repository.Shipment, error) {
	var shipment repository.Shipment
	err := r.db.Get(ctx, &shipment, `
        SELECT * FROM shipments
        WHERE order_id = $1
        ORDER BY created_at DESC
        LIMIT 1
    `, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

func (r *ShipmentRepo) Update(ctx context.Context, shipment *repository.Shipment) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE shipments
        SET
            consignment_no = $2,
            status = $3,
            pickup_status = $4,
            payment_status = $5,
            last_api_call = $6,
            estimated_delivery = $7,
            actual_delivery = $8,
            updated_at = $9
        WHERE id = $1
    `, shipment.ID, shipment.ConsignmentNo, shipment.Status, shipment.PickupStatus,
		shipment.PaymentStatus, shipment.LastAPICall, shipment.EstimatedDelivery,
		shipment.ActualDelivery, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

func (r *ShipmentRepo) AppendTrackingEvent(ctx context.Context, event *repository.TrackingEvent) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO shipment_tracking_events (
            shipment_id, status, location, description, updated_by, occurred_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `, event.ShipmentID, event.Status, event.Location, event.Description, event.UpdatedBy, event.OccurredAt)
	return err
}

func (r *ShipmentRepo) GetTrackingEvents(ctx context.Context, shipmentID string) ([]*repository.TrackingEvent, error) {
	var events []*repository.TrackingEvent
	err := r.db.Select(ctx, &events, `
        SELECT * FROM shipment_tracking_events
        WHERE shipment_id = $1
        ORDER BY occurred_at ASC, id ASC
    `, shipmentID)
	return events, err
}

func (r *ShipmentRepo) AppendError(ctx context.Context, shipmentID, message string) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO shipment_errors (shipment_id, message, created_at)
        VALUES ($1, $2, $3)
    `, shipmentID, message, time.Now().UTC())
	return err
}

func (r *ShipmentRepo) GetErrors(ctx context.Context, shipmentID string) ([]*repository.ShipmentError, error) {
	var errs []*repository.ShipmentError
	err := r.db.Select(ctx, &errs, `
        SELECT * FROM shipment_errors
        WHERE shipment_id = $1
        ORDER BY created_at ASC, id ASC
    `, shipmentID)
	return errs, err
}
