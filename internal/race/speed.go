package race

import (
	"github.com/banshee-data/laptimer/internal/units"
)

// SpeedSample is the speed derived from one lap.
type SpeedSample struct {
	Speed float64 // km/h
	Lap   int     // 1-based
}

// RaceAggregate accumulates lap speeds for the current race.
type RaceAggregate struct {
	LapsCompleted int
	SpeedSum      float64
}

// AverageSpeed is SpeedSum / LapsCompleted, or 0 before the first lap.
func (a RaceAggregate) AverageSpeed() float64 {
	if a.LapsCompleted == 0 {
		return 0
	}
	return a.SpeedSum / float64(a.LapsCompleted)
}

// LapSpeed converts a lap interval into a boosted km/h reading. ok is false
// for a zero or negative interval.
func LapSpeed(circumference, boost float64, evt LapEvent) (kmh float64, ok bool) {
	mps, ok := units.MetresPerSecond(circumference, evt.Interval)
	if !ok {
		return 0, false
	}
	return units.ConvertSpeed(mps*boost, SpeedUnits), true
}

// SpeedCalculator turns lap events into speed samples and keeps the race
// aggregate.
type SpeedCalculator struct {
	circumference float64
	boost         float64

	agg     RaceAggregate
	current float64
	laps    []float64
}

func NewSpeedCalculator(circumference, boost float64) *SpeedCalculator {
	return &SpeedCalculator{
		circumference: circumference,
		boost:         boost,
		laps:          make([]float64, 0, TotalLaps),
	}
}

// OnLapEvent derives the lap speed and folds it into the aggregate. Events
// with no usable interval produce no sample and leave the aggregate alone.
func (c *SpeedCalculator) OnLapEvent(evt LapEvent) (SpeedSample, bool) {
	speed, ok := LapSpeed(c.circumference, c.boost, evt)
	if !ok {
		return SpeedSample{}, false
	}
	c.agg.LapsCompleted++
	c.agg.SpeedSum += speed
	c.current = speed
	c.laps = append(c.laps, speed)
	return SpeedSample{Speed: speed, Lap: c.agg.LapsCompleted}, true
}

// Reset zeroes the aggregate for a new race.
func (c *SpeedCalculator) Reset() {
	c.agg = RaceAggregate{}
	c.current = 0
	c.laps = c.laps[:0]
}

func (c *SpeedCalculator) Aggregate() RaceAggregate { return c.agg }

// CurrentSpeed is the speed of the most recent lap.
func (c *SpeedCalculator) CurrentSpeed() float64 { return c.current }

// LapSpeeds returns a copy of the per-lap speeds of the current race.
func (c *SpeedCalculator) LapSpeeds() []float64 {
	out := make([]float64, len(c.laps))
	copy(out, c.laps)
	return out
}
