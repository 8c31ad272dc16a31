// Package units provides shared constants and conversions for speed units.
package units

import "time"

// Unit constants
const (
	MPS  = "mps"
	KMPH = "kmph"
	KPH  = "kph"
)

// ConvertSpeed converts a speed from meters per second to the target units.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case KMPH, KPH:
		return speedMPS * 3.6 // m/s to km/h
	default:
		return speedMPS
	}
}

// Label returns the short display suffix for a unit.
func Label(unit string) string {
	switch unit {
	case KMPH, KPH:
		return "km/h"
	default:
		return "m/s"
	}
}

// MetresPerSecond returns the speed of covering distanceM metres in interval.
// ok is false for a non-positive interval.
func MetresPerSecond(distanceM float64, interval time.Duration) (mps float64, ok bool) {
	if interval <= 0 {
		return 0, false
	}
	return distanceM / interval.Seconds(), true
}
