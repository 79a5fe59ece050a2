//go:generate mockgen -source ./service.go -destination=./mocks/service.go -package=mock_shipment
package shipment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/courier"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/orders"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

// DeliveryMethodCourier marks orders that explicitly selected courier
// delivery at intake.
const DeliveryMethodCourier = "courier"

var (
	ErrDuplicateShipment = errors.New("shipment already exists for this order")
	ErrIneligibleOrder   = errors.New("order does not qualify for courier delivery")
	ErrNoConsignment     = errors.New("shipment has no consignment number")
)

// Gateway is the courier API surface the manager depends on. Production uses
// *courier.Client; tests use the generated mock.
type Gateway interface {
	CreateShipment(ctx context.Context, req courier.BookingRequest) (*courier.BookingResponse, error)
	TrackShipment(ctx context.Context, referenceNo string) (*courier.TrackResponse, error)
	CancelShipment(ctx context.Context, consignmentNo string) (*courier.CancelResponse, error)
	GetPickupStatus(ctx context.Context, consignmentNo string) (*courier.PickupStatusResponse, error)
	GetPaymentDetails(ctx context.Context, consignmentNo string) (*courier.PaymentDetailsResponse, error)
}

type ShipmentRepository interface {
	Create(ctx context.Context, shipment *repository.Shipment) error
	GetByID(ctx context.Context, id string) (*repository.Shipment, error)
	GetByOrderID(ctx context.Context, orderID string) (*repository.Shipment, error)
	Update(ctx context.Context, shipment *repository.Shipment) error
	AppendTrackingEvent(ctx context.Context, event *repository.TrackingEvent) error
	GetTrackingEvents(ctx context.Context, shipmentID string) ([]*repository.TrackingEvent, error)
	AppendError(ctx context.Context, shipmentID, message string) error
	GetErrors(ctx context.Context, shipmentID string) ([]*repository.ShipmentError, error)
}

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	GetItems(ctx context.Context, orderID string) ([]*repository.OrderItem, error)
}

type OrderStatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID string, upd orders.StatusUpdate) (*repository.Order, error)
}

type Config struct {
	OriginCity     string
	LocalAreaNames []string
	ServiceCode    string
}

// Detail is the full view of one shipment record.
type Detail struct {
	Shipment *repository.Shipment        `json:"shipment"`
	Events   []*repository.TrackingEvent `json:"events"`
	Errors   []*repository.ShipmentError `json:"errors,omitempty"`
	// Stale is set when the carrier could not be reached and the events above
	// are the previously cached state.
	Stale bool `json:"stale,omitempty"`
}

// Service owns the carrier-side lifecycle of an order's parcel. Mutating
// carrier failures (create, cancel) abort the local mutation; refresh-style
// failures (track, pickup, payment) only append to the error log.
type Service struct {
	gateway     Gateway
	shipments   ShipmentRepository
	orders      OrderRepository
	orderStatus OrderStatusUpdater
	cfg         Config
	logger      *zap.Logger
}

func NewService(gateway Gateway, shipments ShipmentRepository, orderRepo OrderRepository, orderStatus OrderStatusUpdater, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		gateway:     gateway,
		shipments:   shipments,
		orders:      orderRepo,
		orderStatus: orderStatus,
		cfg:         cfg,
		logger:      logger,
	}
}

// Create books a parcel with the carrier for the given order. Nothing is
// persisted locally until the carrier has assigned a consignment number.
func (s *Service) Create(ctx context.Context, orderID string, force bool, actor string) (*repository.Shipment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.shipments.GetByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, repository.ErrObjectNotFound) {
		return nil, err
	}
	if existing != nil && !force {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateShipment, existing.ID)
	}

	if !force && !s.eligibleForCourier(order) {
		return nil, ErrIneligibleOrder
	}

	items, err := s.orders.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	req := s.buildBookingRequest(order, items)

	resp, err := s.gateway.CreateShipment(ctx, req)
	if err != nil {
		metrics.CourierGatewayErrorsTotal.WithLabelValues("create_shipment").Inc()
		return nil, err
	}

	now := time.Now().UTC()
	eta := now.AddDate(0, 0, courier.EstimateDeliveryDays(order.City, s.cfg.LocalAreaNames))

	shipment := &repository.Shipment{
		ID:                uuid.New().String(),
		OrderID:           order.ID,
		ConsignmentNo:     &resp.ConsignmentNo,
		Status:            string(StatusCreated),
		Weight:            req.Weight,
		Pieces:            req.Pieces,
		CODAmount:         req.CODAmount,
		OriginCity:        req.OriginCity,
		DestinationCity:   req.DestinationCity,
		Fragile:           req.Fragile == "Yes",
		InsuranceValue:    req.InsuranceValue,
		Remarks:           req.Remarks,
		LastAPICall:       &now,
		EstimatedDelivery: &eta,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.shipments.Create(ctx, shipment); err != nil {
		return nil, fmt.Errorf("persist shipment record: %w", err)
	}

	s.appendEvent(ctx, shipment.ID, string(StatusCreated), req.OriginCity,
		fmt.Sprintf("Consignment %s booked with courier", resp.ConsignmentNo), actor)

	reason := fmt.Sprintf("Shipment booked, consignment %s", resp.ConsignmentNo)
	if _, err := s.orderStatus.UpdateStatus(ctx, orderID, orders.StatusUpdate{
		Status:       orders.StatusConfirmed,
		Actor:        actor,
		Reason:       reason,
		TrackingCode: &resp.ConsignmentNo,
	}); err != nil {
		s.logger.Error("failed to cascade shipment creation into order status",
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	metrics.ShipmentsCreatedTotal.Inc()
	return shipment, nil
}

// Track pulls fresh tracking data from the carrier. A gateway failure is
// recorded in the error log and the previously cached state is returned:
// stale-but-available beats failing the caller.
func (s *Service) Track(ctx context.Context, shipmentID string) (*Detail, error) {
	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.ConsignmentNo == nil {
		return nil, ErrNoConsignment
	}

	resp, err := s.gateway.TrackShipment(ctx, *shipment.ConsignmentNo)
	if err != nil {
		metrics.CourierGatewayErrorsTotal.WithLabelValues("track_shipment").Inc()
		s.recordGatewayError(ctx, shipmentID, err)
		return s.detail(ctx, shipment, true)
	}

	now := time.Now().UTC()
	if len(resp.Records) > 0 {
		latest := resp.Records[len(resp.Records)-1]
		s.appendEvent(ctx, shipmentID, latest.Status, latest.Location, latest.Description, "carrier")
	}
	shipment.LastAPICall = &now
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("update shipment after tracking: %w", err)
	}

	return s.detail(ctx, shipment, false)
}

// Cancel asks the carrier to cancel the consignment. The local status only
// changes after the carrier confirms, so a failed call can simply be retried.
func (s *Service) Cancel(ctx context.Context, shipmentID, reason, actor string) (*repository.Shipment, error) {
	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.ConsignmentNo == nil {
		return nil, ErrNoConsignment
	}

	current, err := ParseStatus(shipment.Status)
	if err != nil {
		return nil, err
	}
	if current == StatusCancelled {
		return shipment, nil
	}
	if !current.CanTransitionTo(StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, StatusCancelled)
	}

	if _, err := s.gateway.CancelShipment(ctx, *shipment.ConsignmentNo); err != nil {
		metrics.CourierGatewayErrorsTotal.WithLabelValues("cancel_shipment").Inc()
		s.recordGatewayError(ctx, shipmentID, err)
		return nil, err
	}

	shipment.Status = string(StatusCancelled)
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("persist cancelled shipment: %w", err)
	}
	s.appendEvent(ctx, shipmentID, string(StatusCancelled), "", reason, actor)

	if _, err := s.orderStatus.UpdateStatus(ctx, shipment.OrderID, orders.StatusUpdate{
		Status: orders.StatusCancelled,
		Actor:  actor,
		Reason: reason,
	}); err != nil {
		// The consignment is already cancelled at the carrier; surface the
		// order-side failure for reconciliation instead of failing the call.
		s.logger.Error("failed to cascade shipment cancellation into order status",
			zap.String("order_id", shipment.OrderID),
			zap.Error(err))
		s.recordGatewayError(ctx, shipmentID, fmt.Errorf("order cancellation cascade: %w", err))
	}

	return shipment, nil
}

// UpdateStatus is the operator override used when carrier webhooks are
// unavailable. The order cascade is a no-op when the mapped status equals the
// order's current one.
func (s *Service) UpdateStatus(ctx context.Context, shipmentID string, newStatus Status, reason, location, actor string) (*repository.Shipment, error) {
	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	current, err := ParseStatus(shipment.Status)
	if err != nil {
		return nil, err
	}
	if current != newStatus && !current.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, newStatus)
	}

	shipment.Status = string(newStatus)
	if newStatus == StatusDelivered && shipment.ActualDelivery == nil {
		now := time.Now().UTC()
		shipment.ActualDelivery = &now
	}
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("persist shipment status: %w", err)
	}
	s.appendEvent(ctx, shipmentID, string(newStatus), location, reason, actor)

	if orderStatus, ok := orderStatusFor(newStatus); ok {
		order, err := s.orders.GetByID(ctx, shipment.OrderID)
		if err != nil {
			return nil, err
		}
		if order.Status != string(orderStatus) {
			if _, err := s.orderStatus.UpdateStatus(ctx, shipment.OrderID, orders.StatusUpdate{
				Status: orderStatus,
				Actor:  actor,
				Reason: reason,
			}); err != nil {
				return nil, fmt.Errorf("cascade order status: %w", err)
			}
		}
	}

	return shipment, nil
}

// GetPickupStatus refreshes the carrier's pickup state for the parcel.
// Informational: a gateway failure goes to the error log, never to the caller.
func (s *Service) GetPickupStatus(ctx context.Context, shipmentID, actor string) (*repository.Shipment, error) {
	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.ConsignmentNo == nil {
		return nil, ErrNoConsignment
	}

	resp, err := s.gateway.GetPickupStatus(ctx, *shipment.ConsignmentNo)
	if err != nil {
		metrics.CourierGatewayErrorsTotal.WithLabelValues("get_pickup_status").Inc()
		s.recordGatewayError(ctx, shipmentID, err)
		return shipment, nil
	}

	now := time.Now().UTC()
	shipment.PickupStatus = &resp.PickupStatus
	shipment.LastAPICall = &now
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("persist pickup status: %w", err)
	}
	s.appendEvent(ctx, shipmentID, shipment.Status, "",
		fmt.Sprintf("Pickup status check: %s", resp.PickupStatus), actor)

	return shipment, nil
}

// GetPaymentDetails refreshes the carrier's COD payment state for the parcel.
func (s *Service) GetPaymentDetails(ctx context.Context, shipmentID, actor string) (*repository.Shipment, error) {
	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.ConsignmentNo == nil {
		return nil, ErrNoConsignment
	}

	resp, err := s.gateway.GetPaymentDetails(ctx, *shipment.ConsignmentNo)
	if err != nil {
		metrics.CourierGatewayErrorsTotal.WithLabelValues("get_payment_details").Inc()
		s.recordGatewayError(ctx, shipmentID, err)
		return shipment, nil
	}

	now := time.Now().UTC()
	shipment.PaymentStatus = &resp.PaymentStatus
	shipment.LastAPICall = &now
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, fmt.Errorf("persist payment status: %w", err)
	}
	s.appendEvent(ctx, shipmentID, shipment.Status, "",
		fmt.Sprintf("Payment status check: %s (collected %d)", resp.PaymentStatus, resp.CollectedAmount), actor)

	return shipment, nil
}

func (s *Service) Get(ctx context.Context, shipmentID string) (*Detail, error) {
	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, shipment, false)
}

func (s *Service) eligibleForCourier(order *repository.Order) bool {
	if order.DeliveryMethod == DeliveryMethodCourier {
		return true
	}
	return courier.IsOutsideLocalArea(order.City, s.cfg.LocalAreaNames)
}

func (s *Service) buildBookingRequest(order *repository.Order, items []*repository.OrderItem) courier.BookingRequest {
	descriptions := make([]string, 0, len(items))
	for _, item := range items {
		descriptions = append(descriptions, fmt.Sprintf("%d x %s", item.Qty, item.Title))
	}

	return courier.BookingRequest{
		ConsigneeName:    order.RecipientName,
		ConsigneeAddress: order.AddressLine,
		ConsigneeMobile:  order.Phone,
		ConsigneeEmail:   order.Email,
		OriginCity:       s.cfg.OriginCity,
		DestinationCity:  order.City,
		Weight:           courier.EstimateWeight(len(items)),
		Pieces:           len(items),
		CODAmount:        order.TotalPrice,
		CustomerRefNo:    order.ID,
		ServiceCode:      s.cfg.ServiceCode,
		ProductDetail:    strings.Join(descriptions, ", "),
		Fragile:          "No",
		Remarks:          fmt.Sprintf("Internal order %s", order.ID),
		InsuranceValue:   0,
	}
}

func (s *Service) detail(ctx context.Context, shipment *repository.Shipment, stale bool) (*Detail, error) {
	events, err := s.shipments.GetTrackingEvents(ctx, shipment.ID)
	if err != nil {
		return nil, err
	}
	errLog, err := s.shipments.GetErrors(ctx, shipment.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Shipment: shipment, Events: events, Errors: errLog, Stale: stale}, nil
}

func (s *Service) appendEvent(ctx context.Context, shipmentID, status, location, description, updatedBy string) {
	event := &repository.TrackingEvent{
		ShipmentID:  shipmentID,
		Status:      status,
		Location:    location,
		Description: description,
		UpdatedBy:   updatedBy,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.shipments.AppendTrackingEvent(ctx, event); err != nil {
		s.logger.Error("failed to append tracking event",
			zap.String("shipment_id", shipmentID),
			zap.Error(err))
	}
}

func (s *Service) recordGatewayError(ctx context.Context, shipmentID string, gatewayErr error) {
	if err := s.shipments.AppendError(ctx, shipmentID, gatewayErr.Error()); err != nil {
		s.logger.Error("failed to append shipment error",
			zap.String("shipment_id", shipmentID),
			zap.Error(err))
	}
}
