package courier

import "strings"

// transitDays maps lowercase city-name substrings to expected transit days
// for destinations outside the local service area.
var transitDays = map[string]int{
	"lahore":     2,
	"islamabad":  2,
	"rawalpindi": 3,
	"faisalabad": 3,
	"multan":     3,
	"peshawar":   4,
	"quetta":     4,
}

const defaultTransitDays = 5

// EstimateWeight approximates parcel weight as max(1, 0.5*itemCount) mass
// units. No per-product weight exists in the catalog yet; replace this once
// it does.
func EstimateWeight(itemCount int) float32 {
	w := 0.5 * float32(itemCount)
	if w < 1 {
		return 1
	}
	return w
}

// EstimateDeliveryDays returns the expected delivery time for a destination
// city: 1 day inside the local service area, a per-city table otherwise, with
// a conservative default for unknown cities.
func EstimateDeliveryDays(city string, localAreaNames []string) int {
	if !IsOutsideLocalArea(city, localAreaNames) {
		return 1
	}

	normalized := strings.ToLower(strings.TrimSpace(city))
	for substr, days := range transitDays {
		if strings.Contains(normalized, substr) {
			return days
		}
	}
	return defaultTransitDays
}

// IsOutsideLocalArea reports whether the destination city falls outside the
// local service area. The match is a case-insensitive substring test against
// the configured name variants, so "Karachi Cantt" still counts as local.
func IsOutsideLocalArea(city string, localAreaNames []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(city))
	if normalized == "" {
		return true
	}
	for _, name := range localAreaNames {
		variant := strings.ToLower(strings.TrimSpace(name))
		if variant != "" && strings.Contains(normalized, variant) {
			return false
		}
	}
	return true
}
