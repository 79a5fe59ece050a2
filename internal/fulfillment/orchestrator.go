//go:generate mockgen -source ./orchestrator.go -destination=./mocks/orchestrator.go -package=mock_fulfillment
package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/shipment"
)

// Action names accepted by the operator surface.
type Action string

const (
	ActionTrack             Action = "track"
	ActionCancel            Action = "cancel"
	ActionUpdateStatus      Action = "update_status"
	ActionGetPickupStatus   Action = "get_pickup_status"
	ActionGetPaymentDetails Action = "get_payment_details"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrValidation    = errors.New("validation failed")
)

type ShipmentManager interface {
	Create(ctx context.Context, orderID string, force bool, actor string) (*repository.Shipment, error)
	Track(ctx context.Context, shipmentID string) (*shipment.Detail, error)
	Cancel(ctx context.Context, shipmentID, reason, actor string) (*repository.Shipment, error)
	UpdateStatus(ctx context.Context, shipmentID string, newStatus shipment.Status, reason, location, actor string) (*repository.Shipment, error)
	GetPickupStatus(ctx context.Context, shipmentID, actor string) (*repository.Shipment, error)
	GetPaymentDetails(ctx context.Context, shipmentID, actor string) (*repository.Shipment, error)
}

// ActionParams carries the optional fields of an operator action request.
type ActionParams struct {
	Status   string `json:"status,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Location string `json:"location,omitempty"`
}

// Orchestrator sequences operator actions across the fulfillment components
// and returns a single outcome per request.
type Orchestrator struct {
	shipments ShipmentManager
	logger    *zap.Logger
}

func NewOrchestrator(shipments ShipmentManager, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		shipments: shipments,
		logger:    logger,
	}
}

func (o *Orchestrator) CreateShipment(ctx context.Context, orderID string, force bool, actor string) (*repository.Shipment, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrValidation)
	}
	o.logger.Info("creating shipment",
		zap.String("order_id", orderID),
		zap.Bool("force", force),
		zap.String("actor", actor))
	return o.shipments.Create(ctx, orderID, force, actor)
}

// HandleAction dispatches one operator action. Action names and their
// required parameters are validated here, before any mutation.
func (o *Orchestrator) HandleAction(ctx context.Context, shipmentID string, action Action, params ActionParams, actor string) (interface{}, error) {
	if shipmentID == "" {
		return nil, fmt.Errorf("%w: shipment id is required", ErrValidation)
	}

	o.logger.Info("handling shipment action",
		zap.String("shipment_id", shipmentID),
		zap.String("action", string(action)),
		zap.String("actor", actor))

	switch action {
	case ActionTrack:
		return o.shipments.Track(ctx, shipmentID)

	case ActionCancel:
		if params.Reason == "" {
			return nil, fmt.Errorf("%w: reason is required for cancellation", ErrValidation)
		}
		return o.shipments.Cancel(ctx, shipmentID, params.Reason, actor)

	case ActionUpdateStatus:
		status, err := shipment.ParseStatus(params.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return o.shipments.UpdateStatus(ctx, shipmentID, status, params.Reason, params.Location, actor)

	case ActionGetPickupStatus:
		return o.shipments.GetPickupStatus(ctx, shipmentID, actor)

	case ActionGetPaymentDetails:
		return o.shipments.GetPaymentDetails(ctx, shipmentID, actor)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}
