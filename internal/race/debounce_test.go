package race

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputDebouncer_RisingEdgeOnly(t *testing.T) {
	d := NewInputDebouncer(ButtonDebounce)

	_, ok := d.OnPoll(StartStop, false, at(0))
	assert.False(t, ok)

	ev, ok := d.OnPoll(StartStop, true, at(50))
	require.True(t, ok)
	assert.Equal(t, PressEvent{Button: StartStop, At: at(50)}, ev)

	// held high: no new press
	_, ok = d.OnPoll(StartStop, true, at(500))
	assert.False(t, ok)
	_, ok = d.OnPoll(StartStop, false, at(600))
	assert.False(t, ok)
}

func TestInputDebouncer_RetriggerWindow(t *testing.T) {
	d := NewInputDebouncer(ButtonDebounce)

	_, ok := d.OnPoll(StartStop, true, at(0))
	require.True(t, ok)
	d.OnPoll(StartStop, false, at(50))

	_, ok = d.OnPoll(StartStop, true, at(150))
	assert.False(t, ok, "second rising edge within 200ms must be ignored")

	d.OnPoll(StartStop, false, at(180))
	_, ok = d.OnPoll(StartStop, true, at(210))
	assert.True(t, ok, "window is measured from the last accepted press")
}

func TestInputDebouncer_IgnoredEdgeDoesNotExtendWindow(t *testing.T) {
	d := NewInputDebouncer(ButtonDebounce)
	d.OnPoll(Info, true, at(0))
	d.OnPoll(Info, false, at(10))
	d.OnPoll(Info, true, at(190))
	d.OnPoll(Info, false, at(195))

	_, ok := d.OnPoll(Info, true, at(200))
	assert.True(t, ok)
}

func TestInputDebouncer_ButtonsIndependent(t *testing.T) {
	d := NewInputDebouncer(ButtonDebounce)

	_, ok := d.OnPoll(StartStop, true, at(0))
	require.True(t, ok)
	_, ok = d.OnPoll(Info, true, at(10))
	assert.True(t, ok, "a press on one button must not gate the other")
}

func TestInputDebouncer_UnknownButton(t *testing.T) {
	d := NewInputDebouncer(ButtonDebounce)
	_, ok := d.OnPoll(ButtonID(7), true, at(0))
	assert.False(t, ok)
	_, ok = d.OnPoll(ButtonID(-1), true, at(0))
	assert.False(t, ok)
}

func TestParseButton(t *testing.T) {
	tests := []struct {
		in      string
		want    ButtonID
		wantErr bool
	}{
		{"start", StartStop, false},
		{" STOP ", StartStop, false},
		{"info", Info, false},
		{"reset", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseButton(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestButtonID_String(t *testing.T) {
	assert.Equal(t, "start", StartStop.String())
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "button(9)", ButtonID(9).String())
}

func TestButtonLatch(t *testing.T) {
	var l ButtonLatch
	assert.False(t, l.Level(StartStop))

	l.Set(StartStop, true)
	assert.True(t, l.Level(StartStop))
	assert.False(t, l.Level(Info))

	l.Set(ButtonID(5), true)
	assert.False(t, l.Level(ButtonID(5)))
}
