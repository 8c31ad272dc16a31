package race

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/laptimer/internal/monitoring"
)

func TestDeviceInputs(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) { logged = append(logged, format) })

	in := DeviceInputs{Edges: NewLapEdgeDetector(MinLapInterval), Buttons: &ButtonLatch{}}

	in.SensorEdge(at(0))
	in.SensorEdge(at(1500))
	evt, ok := in.Edges.Drain()
	assert.True(t, ok)
	assert.Equal(t, 1500*int64(1e6), int64(evt.Interval))

	in.ButtonLevel("info", true)
	assert.True(t, in.Buttons.Level(Info))
	in.ButtonLevel("info", false)
	assert.False(t, in.Buttons.Level(Info))

	in.ButtonLevel("turbo", true)
	assert.Len(t, logged, 1)
}
