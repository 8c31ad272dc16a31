package race

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a finished race.
type Summary struct {
	RaceID  string
	Laps    int
	Average float64
	Best    float64
	Worst   float64
	StdDev  float64
	Elapsed time.Duration
	Stopped bool // ended by the stop button rather than the lap count
}

// Summarize builds the race summary. Average is taken from the aggregate so
// it matches what the display shows.
func Summarize(raceID string, agg RaceAggregate, lapSpeeds []float64, elapsed time.Duration, stopped bool) Summary {
	s := Summary{
		RaceID:  raceID,
		Laps:    agg.LapsCompleted,
		Average: agg.AverageSpeed(),
		Elapsed: elapsed,
		Stopped: stopped,
	}
	if len(lapSpeeds) == 0 {
		return s
	}
	s.Best = floats.Max(lapSpeeds)
	s.Worst = floats.Min(lapSpeeds)
	if len(lapSpeeds) > 1 {
		s.StdDev = stat.StdDev(lapSpeeds, nil)
	}
	return s
}

func (s Summary) String() string {
	end := "completed"
	if s.Stopped {
		end = "stopped"
	}
	return fmt.Sprintf("race %s %s: laps=%d avg=%.2f best=%.2f worst=%.2f sd=%.3f time=%s",
		s.RaceID, end, s.Laps, s.Average, s.Best, s.Worst, s.StdDev, formatElapsed(s.Elapsed))
}

// formatElapsed renders d as MM:SS.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
