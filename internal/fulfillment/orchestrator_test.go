package fulfillment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	mock_fulfillment "gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/fulfillment/mocks"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/shipment"
)

func newOrchestratorFixture(t *testing.T) (*Orchestrator, *mock_fulfillment.MockShipmentManager) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockManager := mock_fulfillment.NewMockShipmentManager(ctrl)
	return NewOrchestrator(mockManager, zap.NewNop()), mockManager
}

func TestCreateShipment(t *testing.T) {
	t.Run("delegates to the shipment manager", func(t *testing.T) {
		orchestrator, mockManager := newOrchestratorFixture(t)

		mockManager.EXPECT().
			Create(gomock.Any(), "o1", true, "ops").
			Return(&repository.Shipment{ID: "s1", OrderID: "o1"}, nil)

		created, err := orchestrator.CreateShipment(context.Background(), "o1", true, "ops")
		require.NoError(t, err)
		assert.Equal(t, "s1", created.ID)
	})

	t.Run("empty order id is a validation error", func(t *testing.T) {
		orchestrator, _ := newOrchestratorFixture(t)

		_, err := orchestrator.CreateShipment(context.Background(), "", false, "ops")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestHandleAction(t *testing.T) {
	t.Run("track", func(t *testing.T) {
		orchestrator, mockManager := newOrchestratorFixture(t)

		detail := &shipment.Detail{Shipment: &repository.Shipment{ID: "s1"}}
		mockManager.EXPECT().Track(gomock.Any(), "s1").Return(detail, nil)

		result, err := orchestrator.HandleAction(context.Background(), "s1", ActionTrack, ActionParams{}, "ops")
		require.NoError(t, err)
		assert.Equal(t, detail, result)
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		orchestrator, _ := newOrchestratorFixture(t)

		_, err := orchestrator.HandleAction(context.Background(), "s1", ActionCancel, ActionParams{}, "ops")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("cancel with reason", func(t *testing.T) {
		orchestrator, mockManager := newOrchestratorFixture(t)

		mockManager.EXPECT().
			Cancel(gomock.Any(), "s1", "customer request", "ops").
			Return(&repository.Shipment{ID: "s1", Status: "cancelled"}, nil)

		result, err := orchestrator.HandleAction(context.Background(), "s1", ActionCancel,
			ActionParams{Reason: "customer request"}, "ops")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", result.(*repository.Shipment).Status)
	})

	t.Run("update_status parses and validates the status", func(t *testing.T) {
		orchestrator, mockManager := newOrchestratorFixture(t)

		mockManager.EXPECT().
			UpdateStatus(gomock.Any(), "s1", shipment.StatusInTransit, "scan", "Lahore Hub", "ops").
			Return(&repository.Shipment{ID: "s1", Status: "in_transit"}, nil)

		_, err := orchestrator.HandleAction(context.Background(), "s1", ActionUpdateStatus,
			ActionParams{Status: "in_transit", Reason: "scan", Location: "Lahore Hub"}, "ops")
		assert.NoError(t, err)
	})

	t.Run("update_status with unknown status", func(t *testing.T) {
		orchestrator, _ := newOrchestratorFixture(t)

		_, err := orchestrator.HandleAction(context.Background(), "s1", ActionUpdateStatus,
			ActionParams{Status: "teleported"}, "ops")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("pickup and payment lookups", func(t *testing.T) {
		orchestrator, mockManager := newOrchestratorFixture(t)

		mockManager.EXPECT().
			GetPickupStatus(gomock.Any(), "s1", "ops").
			Return(&repository.Shipment{ID: "s1"}, nil)
		mockManager.EXPECT().
			GetPaymentDetails(gomock.Any(), "s1", "ops").
			Return(&repository.Shipment{ID: "s1"}, nil)

		_, err := orchestrator.HandleAction(context.Background(), "s1", ActionGetPickupStatus, ActionParams{}, "ops")
		assert.NoError(t, err)
		_, err = orchestrator.HandleAction(context.Background(), "s1", ActionGetPaymentDetails, ActionParams{}, "ops")
		assert.NoError(t, err)
	})

	t.Run("unknown action", func(t *testing.T) {
		orchestrator, _ := newOrchestratorFixture(t)

		_, err := orchestrator.HandleAction(context.Background(), "s1", Action("reroute"), ActionParams{}, "ops")
		assert.ErrorIs(t, err, ErrUnknownAction)
	})

	t.Run("missing shipment id", func(t *testing.T) {
		orchestrator, _ := newOrchestratorFixture(t)

		_, err := orchestrator.HandleAction(context.Background(), "", ActionTrack, ActionParams{}, "ops")
		assert.ErrorIs(t, err, ErrValidation)
	})
}
