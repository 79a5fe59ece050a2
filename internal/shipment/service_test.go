package shipment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/courier"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/orders"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
	mock_shipment "gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/shipment/mocks"
)

type shipmentFixture struct {
	gateway     *mock_shipment.MockGateway
	shipments   *mock_shipment.MockShipmentRepository
	orders      *mock_shipment.MockOrderRepository
	orderStatus *mock_shipment.MockOrderStatusUpdater
	service     *Service
}

func newShipmentFixture(t *testing.T) *shipmentFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &shipmentFixture{
		gateway:     mock_shipment.NewMockGateway(ctrl),
		shipments:   mock_shipment.NewMockShipmentRepository(ctrl),
		orders:      mock_shipment.NewMockOrderRepository(ctrl),
		orderStatus: mock_shipment.NewMockOrderStatusUpdater(ctrl),
	}
	f.service = NewService(f.gateway, f.shipments, f.orders, f.orderStatus, Config{
		OriginCity:     "Karachi",
		LocalAreaNames: []string{"karachi", "khi"},
		ServiceCode:    "OVERNIGHT",
	}, zap.NewNop())
	return f
}

func strPtr(s string) *string {
	return &s
}

func courierOrder() *repository.Order {
	return &repository.Order{
		ID:             "o1",
		Status:         "pending",
		RecipientName:  "Sana Tariq",
		AddressLine:    "14-B Gulberg III",
		City:           "Lahore",
		Phone:          "0300-1234567",
		Email:          "sana@example.com",
		DeliveryMethod: "courier",
		TotalPrice:     4500,
	}
}

func TestCreate(t *testing.T) {
	t.Run("books with carrier and cascades order confirmation", func(t *testing.T) {
		f := newShipmentFixture(t)

		f.orders.EXPECT().GetByID(gomock.Any(), "o1").Return(courierOrder(), nil)
		f.shipments.EXPECT().GetByOrderID(gomock.Any(), "o1").Return(nil, repository.ErrObjectNotFound)
		f.orders.EXPECT().GetItems(gomock.Any(), "o1").Return([]*repository.OrderItem{
			{VariantID: strPtr("v1"), Title: "Mug", Qty: 2},
			{VariantID: strPtr("v2"), Title: "Poster", Qty: 1},
		}, nil)
		f.gateway.EXPECT().
			CreateShipment(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req courier.BookingRequest) (*courier.BookingResponse, error) {
				assert.Equal(t, "Sana Tariq", req.ConsigneeName)
				assert.Equal(t, "Karachi", req.OriginCity)
				assert.Equal(t, "Lahore", req.DestinationCity)
				assert.Equal(t, 2, req.Pieces)
				assert.Equal(t, float32(1), req.Weight)
				assert.Equal(t, 4500, req.CODAmount)
				assert.Equal(t, "o1", req.CustomerRefNo)
				assert.Equal(t, "2 x Mug, 1 x Poster", req.ProductDetail)
				return &courier.BookingResponse{Status: 1, ConsignmentNo: "CN900"}, nil
			})
		f.shipments.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, shipment *repository.Shipment) error {
				assert.Equal(t, string(StatusCreated), shipment.Status)
				require.NotNil(t, shipment.ConsignmentNo)
				assert.Equal(t, "CN900", *shipment.ConsignmentNo)
				require.NotNil(t, shipment.EstimatedDelivery)
				return nil
			})
		f.shipments.EXPECT().AppendTrackingEvent(gomock.Any(), gomock.Any()).Return(nil)
		f.orderStatus.EXPECT().
			UpdateStatus(gomock.Any(), "o1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, upd orders.StatusUpdate) (*repository.Order, error) {
				assert.Equal(t, orders.StatusConfirmed, upd.Status)
				require.NotNil(t, upd.TrackingCode)
				assert.Equal(t, "CN900", *upd.TrackingCode)
				return &repository.Order{ID: "o1", Status: "confirmed"}, nil
			})

		created, err := f.service.Create(context.Background(), "o1", false, "ops")
		require.NoError(t, err)
		assert.Equal(t, "o1", created.OrderID)
	})

	t.Run("duplicate shipment is rejected without force", func(t *testing.T) {
		f := newShipmentFixture(t)

		f.orders.EXPECT().GetByID(gomock.Any(), "o1").Return(courierOrder(), nil)
		f.shipments.EXPECT().GetByOrderID(gomock.Any(), "o1").Return(&repository.Shipment{ID: "s1"}, nil)

		_, err := f.service.Create(context.Background(), "o1", false, "ops")
		assert.ErrorIs(t, err, ErrDuplicateShipment)
	})

	t.Run("local non-courier order is ineligible", func(t *testing.T) {
		f := newShipmentFixture(t)

		order := courierOrder()
		order.City = "Karachi"
		order.DeliveryMethod = "pickup"

		f.orders.EXPECT().GetByID(gomock.Any(), "o1").Return(order, nil)
		f.shipments.EXPECT().GetByOrderID(gomock.Any(), "o1").Return(nil, repository.ErrObjectNotFound)

		_, err := f.service.Create(context.Background(), "o1", false, "ops")
		assert.ErrorIs(t, err, ErrIneligibleOrder)
	})

	t.Run("force bypasses duplicate and eligibility checks", func(t *testing.T) {
		f := newShipmentFixture(t)

		order := courierOrder()
		order.City = "Karachi"
		order.DeliveryMethod = "pickup"

		f.orders.EXPECT().GetByID(gomock.Any(), "o1").Return(order, nil)
		f.shipments.EXPECT().GetByOrderID(gomock.Any(), "o1").Return(&repository.Shipment{ID: "s1"}, nil)
		f.orders.EXPECT().GetItems(gomock.Any(), "o1").Return([]*repository.OrderItem{
			{VariantID: strPtr("v1"), Title: "Mug", Qty: 1},
		}, nil)
		f.gateway.EXPECT().
			CreateShipment(gomock.Any(), gomock.Any()).
			Return(&courier.BookingResponse{Status: 1, ConsignmentNo: "CN901"}, nil)
		f.shipments.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.shipments.EXPECT().AppendTrackingEvent(gomock.Any(), gomock.Any()).Return(nil)
		f.orderStatus.EXPECT().
			UpdateStatus(gomock.Any(), "o1", gomock.Any()).
			Return(&repository.Order{ID: "o1", Status: "confirmed"}, nil)

		_, err := f.service.Create(context.Background(), "o1", true, "ops")
		assert.NoError(t, err)
	})

	t.Run("gateway failure leaves no local record", func(t *testing.T) {
		f := newShipmentFixture(t)

		f.orders.EXPECT().GetByID(gomock.Any(), "o1").Return(courierOrder(), nil)
		f.shipments.EXPECT().GetByOrderID(gomock.Any(), "o1").Return(nil, repository.ErrObjectNotFound)
		f.orders.EXPECT().GetItems(gomock.Any(), "o1").Return([]*repository.OrderItem{
			{VariantID: strPtr("v1"), Title: "Mug", Qty: 1},
		}, nil)
		f.gateway.EXPECT().
			CreateShipment(gomock.Any(), gomock.Any()).
			Return(nil, &courier.Error{Op: "create_shipment", Message: "carrier down"})

		_, err := f.service.Create(context.Background(), "o1", false, "ops")
		require.Error(t, err)

		var gatewayErr *courier.Error
		assert.ErrorAs(t, err, &gatewayErr)
	})
}

func TestTrack(t *testing.T) {
	t.Run("appends latest carrier record", func(t *testing.T) {
		f := newShipmentFixture(t)

		shipment := &repository.Shipment{ID: "s1", OrderID: "o1", ConsignmentNo: strPtr("CN900"), Status: "created"}
		f.shipments.EXPECT().GetByID(gomock.Any(), "s1").Return(shipment, nil)
		f.gateway.EXPECT().
			TrackShipment(gomock.Any(), "CN900").
			Return(&courier.TrackResponse{Status: 1, Records: []courier.TrackingRecord{
				{Status: "picked_up", Location: "Karachi Hub"},
				{Status: "in_transit", Location: "Lahore Hub", Description: "Departed origin facility"},
			}}, nil)
		f.shipments.EXPECT().
			AppendTrackingEvent(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event *repository.TrackingEvent) error {
				assert.Equal(t, "in_transit", event.Status)
				assert.Equal(t, "Lahore Hub", event.Location)
				assert.Equal(t, "carrier", event.UpdatedBy)
				return nil
			})
		f.shipments.EXPECT().Update(gomock.Any(), shipment).Return(nil)
		f.shipments.EXPECT().GetTrackingEvents(gomock.Any(), "s1").Return(nil, nil)
		f.shipments.EXPECT().GetErrors(gomock.Any(), "s1").Return(nil, nil)

		detail, err := f.service.Track(context.Background(), "s1")
		require.NoError(t, err)
		assert.False(t, detail.Stale)
		assert.NotNil(t, shipment.LastAPICall)
	})

	t.Run("gateway failure returns cached state and logs it", func(t *testing.T) {
		f := newShipmentFixture(t)

		shipment := &repository.Shipment{ID: "s1", OrderID: "o1", ConsignmentNo: strPtr("CN900"), Status: "in_transit"}
		cachedEvents := []*repository.TrackingEvent{{ShipmentID: "s1", Status: "in_transit"}}

		f.shipments.EXPECT().GetByID(gomock.Any(), "s1").Return(shipment, nil)
		f.gateway.EXPECT().
			TrackShipment(gomock.Any(), "CN900").
			Return(nil, &courier.Error{Op: "track_shipment", Message: "timeout"})
		f.shipments.EXPECT().AppendError(gomock.Any(), "s1", gomock.Any()).Return(nil)
		f.shipments.EXPECT().GetTrackingEvents(gomock.Any(), "s1").Return(cachedEvents, nil)
		f.shipments.EXPECT().GetErrors(gomock.Any(), "s1").Return([]*repository.ShipmentError{
			{ShipmentID: "s1", Message: "courier track_shipment: timeout"},
		}, nil)

		detail, err := f.service.Track(context.Background(), "s1")
		require.NoError(t, err)
		assert.True(t, detail.Stale)
		assert.Equal(t, cachedEvents, detail.Events)
	})

	t.Run("missing consignment number", func(t *testing.T) {
		f := newShipmentFixture(t)

		f.shipments.EXPECT().
			GetByID(gomock.Any(), "s1").
			Return(&repository.Shipment{ID: "s1", Status: "pending"}, nil)

		_, err := f.service.Track(context.Background(), "s1")
		assert.ErrorIs(t, err, ErrNoConsignment)
	})
}

func TestCancel(t *testing.T) {
	t.Run("cancels at carrier then locally and cascades", func(t *testing.T) {
		f := newShipmentFixture(t)

		shipment := &repository.Shipment{ID: "s1", OrderID: "o1", ConsignmentNo: strPtr("CN900"), Status: "created"}
		f.shipments.EXPECT().GetByID(gomock.Any(), "s1").Return(shipment, nil)
		f.gateway.EXPECT().CancelShipment(gomock.Any(), "CN900").Return(&courier.CancelResponse{Status: 1}, nil)
		f.shipments.EXPECT().Update(gomock.Any(), shipment).Return(nil)
		f.shipments.EXPECT().AppendTrackingEvent(gomock.Any(), gomock.Any()).Return(nil)
		f.orderStatus.EXPECT().
			UpdateStatus(gomock.Any(), "o1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, upd orders.StatusUpdate) (*repository.Order, error) {
				assert.Equal(t, orders.StatusCancelled, upd.Status)
				assert.Equal(t, "Out of stock", upd.Reason)
				return &repository.Order{ID: "o1", Status: "cancelled"}, nil
			})

		cancelled, err := f.service.Cancel(context.Background(), "s1", "Out of stock", "ops")
		require.NoError(t, err)
		assert.Equal(t, string(StatusCancelled), cancelled.Status)
	})

	t.Run("already cancelled is a no-op", func(t *testing.T) {
		f := newShipmentFixture(t)

		f.shipments.EXPECT().
			GetByID(gomock.Any(), "s1").
			Return(&repository.Shipment{ID: "s1", ConsignmentNo: strPtr("CN900"), Status: "cancelled"}, nil)

		cancelled, err := f.service.Cancel(context.Background(), "s1", "duplicate request", "ops")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", cancelled.Status)
	})

	t.Run("delivered shipment cannot be cancelled", func(t *testing.T) {
		f := newShipmentFixture(t)

		f.shipments.EXPECT().
			GetByID(gomock.Any(), "s1").
			Return(&repository.Shipment{ID: "s1", ConsignmentNo: strPtr("CN900"), Status: "delivered"}, nil)

		_, err := f.service.Cancel(context.Background(), "s1", "too late", "ops")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("carrier refusal keeps local status unchanged", func(t *testing.T) {
		f := newShipmentFixture(t)

		shipment := &repository.Shipment{ID: "s1", OrderID: "o1", ConsignmentNo: strPtr("CN900"), Status: "created"}
		f.shipments.EXPECT().GetByID(gomock.Any(), "s1").Return(shipment, nil)
		f.gateway.EXPECT().
			CancelShipment(gomock.Any(), "CN900").
			Return(nil, &courier.Error{Op: "cancel_shipment", Message: "already dispatched"})
		f.shipments.EXPECT().AppendError(gomock.Any(), "s1", gomock.Any()).Return(nil)

		_, err := f.service.Cancel(context.Background(), "s1", "customer request", "ops")
		require.Error(t, err)
		assert.Equal(t, "created", shipment.Status)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("delivered sets actual delivery once and cascades", func(t *testing.T) {
		f := newShipmentFixture(t)

		shipment := &repository.Shipment{ID: "s1", OrderID: "o1", Status: "out_for_delivery"}
		f.shipments.EXPECT().GetByID(gomock.Any(), "s1").Return(shipment, nil)
		f.shipments.EXPECT().Update(gomock.Any(), shipment).Return(nil)
		f.shipments.EXPECT().AppendTrackingEvent(gomock.Any(), gomock.Any()).Return(nil)
		f.orders.EXPECT().
			GetByID(gomock.Any(), "o1").
			Return(&repository.Order{ID: "o1", Status: "shipped"}, nil)
		f.orderStatus.EXPECT().
			UpdateStatus(gomock.Any(), "o1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, upd orders.StatusUpdate) (*repository.Order, error) {
				assert.Equal(t, orders.StatusDelivered, upd.Status)
				return &repository.Order{ID: "o1", Status: "delivered"}, nil
			})

		updated, err := f.service.UpdateStatus(context.Background(), "s1", StatusDelivered, "POD received", "Lahore", "ops")
		require.NoError(t, err)
		assert.Equal(t, string(StatusDelivered), updated.Status)
		assert.NotNil(t, updated.ActualDelivery)
	})

	t.Run("matching order status skips the cascade", func(t *testing.T) {
		f := newShipmentFixture(t)

		shipment := &repository.Shipment{ID: "s1", OrderID: "o1", Status: "picked_up"}
		f.shipments.EXPECT().GetByID(gomock.Any(), "s1").Return(shipment, nil)
		f.shipments.EXPECT().Update(gomock.Any(), shipment).Return(nil)
		f.shipments.EXPECT().AppendTrackingEvent(gomock.Any(), gomock.Any()).Return(nil)
		f.orders.EXPECT().
			GetByID(gomock.Any(), "o1").
			Return(&repository.Order{ID: "o1", Status: "shipped"}, nil)

		_, err := f.service.UpdateStatus(context.Background(), "s1", StatusInTransit, "scan", "Hub", "ops")
		assert.NoError(t, err)
	})

	t.Run("backward transition is rejected", func(t *testing.T) {
		f := newShipmentFixture(t)

		f.shipments.EXPECT().
			GetByID(gomock.Any(), "s1").
			Return(&repository.Shipment{ID: "s1", OrderID: "o1", Status: "in_transit"}, nil)

		_, err := f.service.UpdateStatus(context.Background(), "s1", StatusPickedUp, "", "", "ops")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestGetPickupStatus(t *testing.T) {
	t.Run("persists refreshed pickup state", func(t *testing.T) {
		f := newShipmentFixture(t)

		shipment := &repository.Shipment{ID: "s1", OrderID: "o1", ConsignmentNo: strPtr("CN900"), Status: "created"}
		f.shipments.EXPECT().GetByID(gomock.Any(), "s1").Return(shipment, nil)
		f.gateway.EXPECT().
			GetPickupStatus(gomock.Any(), "CN900").
			Return(&courier.PickupStatusResponse{Status: 1, PickupStatus: "picked"}, nil)
		f.shipments.EXPECT().Update(gomock.Any(), shipment).Return(nil)
		f.shipments.EXPECT().AppendTrackingEvent(gomock.Any(), gomock.Any()).Return(nil)

		got, err := f.service.GetPickupStatus(context.Background(), "s1", "ops")
		require.NoError(t, err)
		require.NotNil(t, got.PickupStatus)
		assert.Equal(t, "picked", *got.PickupStatus)
	})

	t.Run("gateway failure is informational only", func(t *testing.T) {
		f := newShipmentFixture(t)

		shipment := &repository.Shipment{ID: "s1", OrderID: "o1", ConsignmentNo: strPtr("CN900"), Status: "created"}
		f.shipments.EXPECT().GetByID(gomock.Any(), "s1").Return(shipment, nil)
		f.gateway.EXPECT().
			GetPickupStatus(gomock.Any(), "CN900").
			Return(nil, &courier.Error{Op: "get_pickup_status", Message: "timeout"})
		f.shipments.EXPECT().AppendError(gomock.Any(), "s1", gomock.Any()).Return(nil)

		got, err := f.service.GetPickupStatus(context.Background(), "s1", "ops")
		require.NoError(t, err)
		assert.Nil(t, got.PickupStatus)
	})
}

func TestGetPaymentDetails(t *testing.T) {
	f := newShipmentFixture(t)

	shipment := &repository.Shipment{ID: "s1", OrderID: "o1", ConsignmentNo: strPtr("CN900"), Status: "delivered"}
	f.shipments.EXPECT().GetByID(gomock.Any(), "s1").Return(shipment, nil)
	f.gateway.EXPECT().
		GetPaymentDetails(gomock.Any(), "CN900").
		Return(&courier.PaymentDetailsResponse{Status: 1, PaymentStatus: "settled", CollectedAmount: 4500}, nil)
	f.shipments.EXPECT().Update(gomock.Any(), shipment).Return(nil)
	f.shipments.EXPECT().AppendTrackingEvent(gomock.Any(), gomock.Any()).Return(nil)

	got, err := f.service.GetPaymentDetails(context.Background(), "s1", "ops")
	require.NoError(t, err)
	require.NotNil(t, got.PaymentStatus)
	assert.Equal(t, "settled", *got.PaymentStatus)
}
