// Package race is the timing and race-state engine of the lap timer: lap
// edge capture, speed derivation, speed-limit hysteresis, button debounce
// and the race lifecycle controller.
package race

import (
	"time"

	"github.com/banshee-data/laptimer/internal/units"
)

// Track and race constants. They are fixed for the gate hardware and are not
// runtime configurable.
const (
	// WheelCircumference is the distance covered per lap, in metres.
	WheelCircumference = 0.065
	// SpeedBoost amplifies the measured speed so it reads well on the display.
	SpeedBoost = 10.0
	// SpeedUnits is the unit of every speed the race reports.
	SpeedUnits = units.KMPH
	// SpeedLimit is the violation threshold in SpeedUnits.
	SpeedLimit = 2.0
	// TotalLaps ends the race automatically.
	TotalLaps = 5

	MinLapInterval = 1000 * time.Millisecond
	ButtonDebounce = 200 * time.Millisecond
)

// Presentation timings.
const (
	CountdownFrom = 3
	CountdownStep = time.Second
	FinishHold    = 3 * time.Second
	InfoHold      = 2 * time.Second
)
