package courier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var localAreaNames = []string{"karachi", "khi"}

func TestEstimateWeight(t *testing.T) {
	tests := []struct {
		name      string
		itemCount int
		want      float32
	}{
		{name: "zero items floors at one", itemCount: 0, want: 1},
		{name: "single item floors at one", itemCount: 1, want: 1},
		{name: "two items", itemCount: 2, want: 1},
		{name: "three items", itemCount: 3, want: 1.5},
		{name: "ten items", itemCount: 10, want: 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EstimateWeight(tc.itemCount))
		})
	}
}

func TestEstimateDeliveryDays(t *testing.T) {
	tests := []struct {
		name string
		city string
		want int
	}{
		{name: "local city", city: "Karachi", want: 1},
		{name: "local area variant", city: "KHI", want: 1},
		{name: "local suburb", city: "Karachi Cantt", want: 1},
		{name: "lahore", city: "Lahore", want: 2},
		{name: "islamabad", city: "Islamabad", want: 2},
		{name: "rawalpindi", city: "Rawalpindi", want: 3},
		{name: "peshawar", city: "peshawar", want: 4},
		{name: "unknown city falls back", city: "Springfield", want: 5},
		{name: "empty city falls back", city: "", want: 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EstimateDeliveryDays(tc.city, localAreaNames))
		})
	}
}

func TestIsOutsideLocalArea(t *testing.T) {
	tests := []struct {
		name    string
		city    string
		outside bool
	}{
		{name: "exact local name", city: "Karachi", outside: false},
		{name: "case insensitive", city: "kArAcHi", outside: false},
		{name: "short code", city: "KHI", outside: false},
		{name: "surrounding whitespace", city: "  Karachi  ", outside: false},
		{name: "other city", city: "Lahore", outside: true},
		{name: "empty city treated as outside", city: "", outside: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.outside, IsOutsideLocalArea(tc.city, localAreaNames))
		})
	}
}
