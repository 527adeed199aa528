package units

import (
	"math"
	"testing"
)

func TestConvertDistance(t *testing.T) {
	tests := []struct {
		name     string
		meters   float64
		units    string
		expected float64
	}{
		{"1852 m to nmi", 1852, NauticalMiles, 1},
		{"1500 m to km", 1500, Kilometers, 1.5},
		{"m is unchanged", 42, Meters, 42},
		{"unknown units default to m", 42, "furlong", 42},
		{"zero", 0, NauticalMiles, 0},
		{"harbour mouth 5556 m to nmi", 5556, NauticalMiles, 3}, // 3 nmi
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertDistance(tt.meters, tt.units)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertDistance(%f, %s) = %f, want %f", tt.meters, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid m", Meters, true},
		{"valid km", Kilometers, true},
		{"valid nmi", NauticalMiles, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "NMI", false},
		{"case sensitive", "Km", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "m, km, nmi" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}
