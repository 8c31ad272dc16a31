package race

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/laptimer/internal/audio"
	"github.com/banshee-data/laptimer/internal/display"
	"github.com/banshee-data/laptimer/internal/monitoring"
	"github.com/banshee-data/laptimer/internal/timeutil"
	"github.com/banshee-data/laptimer/internal/units"
)

var speedLabel = units.Label(SpeedUnits)

// State is the race lifecycle state.
type State int

const (
	Idle State = iota
	Countdown
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Countdown:
		return "countdown"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Options wires a Controller to its collaborators. Display, Audio and
// Buttons are required.
type Options struct {
	Clock   timeutil.Clock
	Display display.LCD
	Audio   audio.Player
	Buttons Buttons

	// Edges defaults to a detector using MinLapInterval.
	Edges *LapEdgeDetector
	// NewRaceID defaults to a random UUID.
	NewRaceID func() string
	// OnStateChange, if set, is called on every transition.
	OnStateChange func(from, to State)
}

// Controller owns the race state and runs the cooperative control loop.
// Apart from the edge detector, which the sensor goroutine feeds, all of
// its state is touched only from the goroutine calling Tick or Run.
type Controller struct {
	clock   timeutil.Clock
	lcd     display.LCD
	player  audio.Player
	buttons Buttons
	onState func(from, to State)
	newID   func() string

	edges *LapEdgeDetector
	speed *SpeedCalculator
	limit *SpeedLimitMonitor
	input *InputDebouncer

	state     State
	raceID    string
	raceStart time.Time
	shownSec  int64
	infoUntil time.Time
	lostLaps  uint64
	last      Summary
}

// NewController builds a controller in the Idle state.
func NewController(opts Options) *Controller {
	c := &Controller{
		clock:   opts.Clock,
		lcd:     opts.Display,
		player:  opts.Audio,
		buttons: opts.Buttons,
		onState: opts.OnStateChange,
		newID:   opts.NewRaceID,
		edges:   opts.Edges,
		speed:   NewSpeedCalculator(WheelCircumference, SpeedBoost),
		limit:   NewSpeedLimitMonitor(SpeedLimit),
		input:   NewInputDebouncer(ButtonDebounce),
		state:   Idle,
	}
	if c.clock == nil {
		c.clock = timeutil.RealClock{}
	}
	if c.edges == nil {
		c.edges = NewLapEdgeDetector(MinLapInterval)
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c
}

// Edges is the detector the sensor goroutine must feed.
func (c *Controller) Edges() *LapEdgeDetector { return c.edges }

func (c *Controller) State() State { return c.state }

func (c *Controller) Aggregate() RaceAggregate { return c.speed.Aggregate() }

func (c *Controller) Violating() bool { return c.limit.Violating() }

// RaceID is the ID of the current or most recent race.
func (c *Controller) RaceID() string { return c.raceID }

// LastSummary is the summary of the most recently finished race.
func (c *Controller) LastSummary() Summary { return c.last }

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	from := c.state
	c.state = s
	if c.onState != nil {
		c.onState(from, s)
	}
}

// Run shows the welcome screen and then ticks every pause until ctx is done.
func (c *Controller) Run(ctx context.Context, pause time.Duration) error {
	c.showWelcome()
	if err := audio.Play(ctx, c.clock, c.player, audio.Welcome); err != nil {
		return err
	}
	for {
		if err := c.Tick(ctx); err != nil {
			return err
		}
		if err := c.clock.Sleep(ctx, pause); err != nil {
			return err
		}
	}
}

// Tick runs one pass of the control loop: buttons, then lap and speed
// processing, display, limit check and completion check. Countdown and
// finish presentation block inside Tick. The only error is a done context.
func (c *Controller) Tick(ctx context.Context) error {
	now := c.clock.Now()
	_, startPressed := c.input.OnPoll(StartStop, c.buttons.Level(StartStop), now)
	_, infoPressed := c.input.OnPoll(Info, c.buttons.Level(Info), now)

	switch c.state {
	case Idle:
		switch {
		case startPressed:
			return c.countdown(ctx)
		case infoPressed:
			c.showInfo(now)
		case !c.infoUntil.IsZero() && !now.Before(c.infoUntil):
			c.infoUntil = time.Time{}
			c.showWelcome()
		}
	case Running:
		return c.runningTick(ctx, now, startPressed)
	}
	return nil
}

func (c *Controller) runningTick(ctx context.Context, now time.Time, stop bool) error {
	var (
		sample SpeedSample
		lapped bool
	)
	if evt, ok := c.edges.Drain(); ok {
		if n := c.edges.Overwritten(); n > c.lostLaps {
			monitoring.Logf("race %s: %d lap event(s) overwritten before processing", c.raceID, n-c.lostLaps)
			c.lostLaps = n
		}
		sample, lapped = c.speed.OnLapEvent(evt)
		if lapped {
			monitoring.Logf("race %s: lap %d speed %.2f %s (interval %s)",
				c.raceID, sample.Lap, sample.Speed, speedLabel, evt.Interval)
		}
	}

	elapsed := now.Sub(c.raceStart)
	if lapped {
		c.showRunning(elapsed)
	} else if sec := int64(elapsed / time.Second); sec != c.shownSec {
		c.shownSec = sec
		c.paint(display.ShowLine(c.lcd, 1, "Time "+formatElapsed(elapsed)))
	}

	if lapped {
		switch ev := c.limit.OnSpeedSample(sample.Speed); ev.Transition {
		case EnteredViolation:
			monitoring.Logf("race %s: speed limit exceeded on lap %d by %.2f %s", c.raceID, sample.Lap, ev.Excess, speedLabel)
			c.paint(display.ShowLine(c.lcd, 0, fmt.Sprintf("SLOW DOWN +%.2f", ev.Excess)))
			if err := audio.Play(ctx, c.clock, c.player, audio.LimitViolation); err != nil {
				return err
			}
		case ExitedViolation:
			monitoring.Logf("race %s: back under speed limit on lap %d", c.raceID, sample.Lap)
		}
	}

	laps := c.speed.Aggregate().LapsCompleted
	if laps >= TotalLaps || stop {
		return c.finish(ctx, now, laps < TotalLaps)
	}
	return nil
}

func (c *Controller) countdown(ctx context.Context) error {
	c.infoUntil = time.Time{}
	c.setState(Countdown)
	monitoring.Logf("race: countdown started")

	for n := CountdownFrom; n > 0; n-- {
		c.paint(display.Show(c.lcd, "Get ready", strconv.Itoa(n)))
		if err := audio.Play(ctx, c.clock, c.player, audio.CountdownTick); err != nil {
			return c.abort(err)
		}
		if err := c.clock.Sleep(ctx, CountdownStep-audio.CountdownTick.Duration()); err != nil {
			return c.abort(err)
		}
	}
	c.paint(display.Show(c.lcd, "RACE!", ""))
	if err := audio.Play(ctx, c.clock, c.player, audio.Start); err != nil {
		return c.abort(err)
	}

	c.speed.Reset()
	c.limit.Reset()
	c.edges.Reset()
	// edges nobody drained between races are not lost laps
	c.lostLaps = c.edges.Overwritten()
	c.raceStart = c.clock.Now()
	c.raceID = c.newID()
	c.setState(Running)
	c.showRunning(0)
	monitoring.Logf("race %s: started, %d laps, limit %.2f %s", c.raceID, TotalLaps, SpeedLimit, speedLabel)
	return nil
}

func (c *Controller) finish(ctx context.Context, now time.Time, stopped bool) error {
	c.setState(Finished)
	elapsed := now.Sub(c.raceStart)
	agg := c.speed.Aggregate()
	c.last = Summarize(c.raceID, agg, c.speed.LapSpeeds(), elapsed, stopped)
	monitoring.Logf("%s", c.last)

	c.paint(display.Show(c.lcd, "FINISHED!", fmt.Sprintf("Avg %.2f %s", agg.AverageSpeed(), speedLabel)))
	if err := audio.Play(ctx, c.clock, c.player, audio.Finish); err != nil {
		return c.abort(err)
	}
	if hold := FinishHold - audio.Finish.Duration(); hold > 0 {
		if err := c.clock.Sleep(ctx, hold); err != nil {
			return c.abort(err)
		}
	}

	c.paint(display.Show(c.lcd, fmt.Sprintf("Laps %d", agg.LapsCompleted), "Time "+formatElapsed(elapsed)))
	if err := c.clock.Sleep(ctx, FinishHold); err != nil {
		return c.abort(err)
	}

	c.setState(Idle)
	c.showWelcome()
	return nil
}

// abort returns to Idle when a blocking phase is cut short by shutdown.
func (c *Controller) abort(err error) error {
	monitoring.Logf("race: %s interrupted: %v", c.state, err)
	c.setState(Idle)
	return err
}

func (c *Controller) showWelcome() {
	c.paint(display.Show(c.lcd, "  LAP  TIMER", "Press START"))
}

func (c *Controller) showInfo(now time.Time) {
	c.infoUntil = now.Add(InfoHold)
	c.paint(display.Show(c.lcd, fmt.Sprintf("Limit %.2f %s", SpeedLimit, speedLabel), fmt.Sprintf("Laps %d", TotalLaps)))
}

func (c *Controller) showRunning(elapsed time.Duration) {
	c.shownSec = int64(elapsed / time.Second)
	agg := c.speed.Aggregate()
	top := fmt.Sprintf("Lap %d/%d", agg.LapsCompleted, TotalLaps)
	if agg.LapsCompleted > 0 {
		top += fmt.Sprintf(" %.2f", c.speed.CurrentSpeed())
	}
	c.paint(display.Show(c.lcd, top, "Time "+formatElapsed(elapsed)))
}

// paint logs a failed display write; the race carries on regardless.
func (c *Controller) paint(err error) {
	if err != nil {
		monitoring.Logf("display: %v", err)
	}
}
