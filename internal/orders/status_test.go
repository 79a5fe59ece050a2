package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{name: "pending", input: "pending", want: StatusPending},
		{name: "confirmed", input: "confirmed", want: StatusConfirmed},
		{name: "shipped", input: "shipped", want: StatusShipped},
		{name: "delivered", input: "delivered", want: StatusDelivered},
		{name: "cancelled", input: "cancelled", want: StatusCancelled},
		{name: "unknown value", input: "lost", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "wrong case", input: "Pending", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseStatus(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{name: "pending to confirmed", from: StatusPending, to: StatusConfirmed, allowed: true},
		{name: "pending to cancelled", from: StatusPending, to: StatusCancelled, allowed: true},
		{name: "pending to shipped skips confirmation", from: StatusPending, to: StatusShipped, allowed: false},
		{name: "confirmed to shipped", from: StatusConfirmed, to: StatusShipped, allowed: true},
		{name: "confirmed to cancelled", from: StatusConfirmed, to: StatusCancelled, allowed: true},
		{name: "shipped to delivered", from: StatusShipped, to: StatusDelivered, allowed: true},
		{name: "shipped to cancelled", from: StatusShipped, to: StatusCancelled, allowed: true},
		{name: "shipped back to pending", from: StatusShipped, to: StatusPending, allowed: false},
		{name: "delivered is terminal", from: StatusDelivered, to: StatusCancelled, allowed: false},
		{name: "cancelled is terminal", from: StatusCancelled, to: StatusPending, allowed: false},
		{name: "cancelled cannot be delivered", from: StatusCancelled, to: StatusDelivered, allowed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}
