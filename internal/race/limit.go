package race

// LimitTransition is the outcome of feeding a sample to SpeedLimitMonitor.
type LimitTransition int

const (
	NoChange LimitTransition = iota
	EnteredViolation
	ExitedViolation
)

func (t LimitTransition) String() string {
	switch t {
	case EnteredViolation:
		return "entered"
	case ExitedViolation:
		return "exited"
	default:
		return "none"
	}
}

// LimitEvent reports a violation crossing. Excess is only set on entry.
type LimitEvent struct {
	Transition LimitTransition
	Excess     float64
}

// SpeedLimitMonitor tracks whether the car is over the limit and reports
// only the crossings.
type SpeedLimitMonitor struct {
	limit     float64
	violating bool
}

func NewSpeedLimitMonitor(limit float64) *SpeedLimitMonitor {
	return &SpeedLimitMonitor{limit: limit}
}

func (m *SpeedLimitMonitor) OnSpeedSample(speed float64) LimitEvent {
	switch {
	case speed > m.limit && !m.violating:
		m.violating = true
		return LimitEvent{Transition: EnteredViolation, Excess: speed - m.limit}
	case speed <= m.limit && m.violating:
		m.violating = false
		return LimitEvent{Transition: ExitedViolation}
	}
	return LimitEvent{Transition: NoChange}
}

func (m *SpeedLimitMonitor) Violating() bool { return m.violating }

func (m *SpeedLimitMonitor) Limit() float64 { return m.limit }

// Reset clears the violation state.
func (m *SpeedLimitMonitor) Reset() { m.violating = false }
