package race

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/laptimer/internal/units"
)

func TestLapSpeed_Formula(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     float64
	}{
		{"one second", time.Second, 2.34},
		{"two seconds", 2 * time.Second, 1.17},
		{"1200ms", 1200 * time.Millisecond, 1.95},
		{"half second", 500 * time.Millisecond, 4.68},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LapSpeed(WheelCircumference, SpeedBoost, LapEvent{Interval: tt.interval})
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSpeedCalculator_DegenerateInterval(t *testing.T) {
	c := NewSpeedCalculator(WheelCircumference, SpeedBoost)

	_, ok := c.OnLapEvent(LapEvent{Timestamp: t0})
	assert.False(t, ok)
	_, ok = c.OnLapEvent(LapEvent{Timestamp: t0, Interval: -time.Second})
	assert.False(t, ok)

	assert.Equal(t, RaceAggregate{}, c.Aggregate())
	assert.Zero(t, c.CurrentSpeed())
	assert.Empty(t, c.LapSpeeds())
}

func TestSpeedCalculator_Aggregates(t *testing.T) {
	c := NewSpeedCalculator(WheelCircumference, SpeedBoost)
	intervals := []time.Duration{time.Second, 1200 * time.Millisecond, 2 * time.Second}

	var sum float64
	for i, iv := range intervals {
		s, ok := c.OnLapEvent(LapEvent{Interval: iv})
		require.True(t, ok)
		assert.Equal(t, i+1, s.Lap)
		assert.Equal(t, s.Speed, c.CurrentSpeed())
		sum += s.Speed
	}

	agg := c.Aggregate()
	assert.Equal(t, 3, agg.LapsCompleted)
	assert.InDelta(t, sum, agg.SpeedSum, 1e-12)
	assert.InDelta(t, sum/3, agg.AverageSpeed(), 1e-12)
	assert.Len(t, c.LapSpeeds(), 3)
}

func TestSpeedCalculator_Reset(t *testing.T) {
	c := NewSpeedCalculator(WheelCircumference, SpeedBoost)
	c.OnLapEvent(LapEvent{Interval: time.Second})
	c.Reset()

	assert.Equal(t, RaceAggregate{}, c.Aggregate())
	assert.Zero(t, c.CurrentSpeed())
	assert.Empty(t, c.LapSpeeds())

	s, ok := c.OnLapEvent(LapEvent{Interval: time.Second})
	require.True(t, ok)
	assert.Equal(t, 1, s.Lap)
}

func TestRaceAggregate_AverageWithoutLaps(t *testing.T) {
	assert.Zero(t, RaceAggregate{}.AverageSpeed())
	assert.Zero(t, RaceAggregate{SpeedSum: 3}.AverageSpeed())
}

func TestSpeedCalculator_LapSpeedsIsCopy(t *testing.T) {
	c := NewSpeedCalculator(WheelCircumference, SpeedBoost)
	c.OnLapEvent(LapEvent{Interval: time.Second})
	speeds := c.LapSpeeds()
	speeds[0] = 99
	assert.InDelta(t, 2.34, c.LapSpeeds()[0], 1e-9)
}

func TestSpeedLabelFollowsSpeedUnits(t *testing.T) {
	assert.Equal(t, units.KMPH, SpeedUnits)
	assert.Equal(t, "km/h", speedLabel)

	h := newHarness(t)
	h.press(Info)
	assert.Equal(t, "Limit 2.00 "+speedLabel, h.lcd.Line(0))
}
