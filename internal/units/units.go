// Package units provides shared constants and validation for distance units
package units

import "strings"

// Unit constants
const (
	Meters        = "m"
	Kilometers    = "km"
	NauticalMiles = "nmi"
)

// MetersPerNauticalMile is the international nautical mile.
const MetersPerNauticalMile = 1852.0

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Kilometers, NauticalMiles}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertDistance converts a distance in metres to the target units.
// Cluster extents are computed in metres.
func ConvertDistance(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case Kilometers:
		return meters / 1000
	case NauticalMiles:
		return meters / MetersPerNauticalMile
	default:
		return meters
	}
}
