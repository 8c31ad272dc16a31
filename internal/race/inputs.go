package race

import (
	"time"

	"github.com/banshee-data/laptimer/internal/monitoring"
)

// DeviceInputs routes decoded device lines to the edge detector and the
// button latch. Its methods run on the serial reader goroutine.
type DeviceInputs struct {
	Edges   *LapEdgeDetector
	Buttons *ButtonLatch
}

func (in DeviceInputs) SensorEdge(at time.Time) {
	in.Edges.OnSensorEdge(at)
}

func (in DeviceInputs) ButtonLevel(name string, level bool) {
	id, err := ParseButton(name)
	if err != nil {
		monitoring.Logf("device: %v", err)
		return
	}
	in.Buttons.Set(id, level)
}
