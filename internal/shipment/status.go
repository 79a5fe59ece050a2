package shipment

import (
	"errors"
	"fmt"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/orders"
)

// Status is the carrier-side lifecycle of one parcel. Transitions only move
// forward, except into the terminal cancelled/failed states which are
// reachable from any non-terminal state.
type Status string

const (
	StatusPending        Status = "pending"
	StatusCreated        Status = "created"
	StatusPickedUp       Status = "picked_up"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusFailed         Status = "failed"
)

var (
	ErrUnknownStatus     = errors.New("unknown shipment status")
	ErrInvalidTransition = errors.New("invalid shipment status transition")
)

// forwardRank orders the happy-path states; higher rank means further along.
var forwardRank = map[Status]int{
	StatusPending:        0,
	StatusCreated:        1,
	StatusPickedUp:       2,
	StatusInTransit:      3,
	StatusOutForDelivery: 4,
	StatusDelivered:      5,
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	switch status {
	case StatusPending, StatusCreated, StatusPickedUp, StatusInTransit,
		StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusFailed:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled || next == StatusFailed {
		return true
	}
	return forwardRank[next] > forwardRank[s]
}

// orderStatusFor maps a shipment status to the order status it cascades to.
// Statuses without a mapping leave the order untouched.
func orderStatusFor(s Status) (orders.Status, bool) {
	switch s {
	case StatusPickedUp:
		return orders.StatusConfirmed, true
	case StatusInTransit, StatusOutForDelivery:
		return orders.StatusShipped, true
	case StatusDelivered:
		return orders.StatusDelivered, true
	case StatusCancelled:
		return orders.StatusCancelled, true
	}
	return "", false
}
