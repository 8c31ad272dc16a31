package race

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// ButtonID identifies a physical button on the gate.
type ButtonID int

const (
	StartStop ButtonID = iota
	Info

	numButtons
)

func (b ButtonID) String() string {
	switch b {
	case StartStop:
		return "start"
	case Info:
		return "info"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

// ParseButton maps a device button name to its ID.
func ParseButton(name string) (ButtonID, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "start", "stop", "startstop":
		return StartStop, nil
	case "info":
		return Info, nil
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// PressEvent is a debounced button press.
type PressEvent struct {
	Button ButtonID
	At     time.Time
}

type buttonState struct {
	lastLevel bool
	lastPress time.Time
	pressed   bool
}

// InputDebouncer turns sampled button levels into press events. Each button
// is tracked on its own.
type InputDebouncer struct {
	interval time.Duration
	buttons  [numButtons]buttonState
}

func NewInputDebouncer(interval time.Duration) *InputDebouncer {
	return &InputDebouncer{interval: interval}
}

// OnPoll reports a press on a low-to-high transition, unless the previous
// accepted press of the same button was less than the debounce interval ago.
func (d *InputDebouncer) OnPoll(id ButtonID, level bool, now time.Time) (PressEvent, bool) {
	if id < 0 || id >= numButtons {
		return PressEvent{}, false
	}
	b := &d.buttons[id]
	rising := level && !b.lastLevel
	b.lastLevel = level
	if !rising {
		return PressEvent{}, false
	}
	if b.pressed && now.Sub(b.lastPress) < d.interval {
		return PressEvent{}, false
	}
	b.pressed = true
	b.lastPress = now
	return PressEvent{Button: id, At: now}, true
}

// Buttons reports the current raw level of each button.
type Buttons interface {
	Level(ButtonID) bool
}

// ButtonLatch holds the latest level reported by the device for each
// button. The device reader writes it and the control loop samples it once
// per tick.
type ButtonLatch struct {
	levels [numButtons]atomic.Bool
}

func (l *ButtonLatch) Set(id ButtonID, level bool) {
	if id < 0 || id >= numButtons {
		return
	}
	l.levels[id].Store(level)
}

func (l *ButtonLatch) Level(id ButtonID) bool {
	if id < 0 || id >= numButtons {
		return false
	}
	return l.levels[id].Load()
}
