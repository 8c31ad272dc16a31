// Package audio plays the timing gate's buzzer cues.
package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/laptimer/internal/monitoring"
	"github.com/banshee-data/laptimer/internal/timeutil"
)

// Tone is a single buzzer note. A zero frequency is a rest.
type Tone struct {
	FrequencyHz int
	Duration    time.Duration
}

// Cue is a named sequence of tones.
type Cue struct {
	Name  string
	Tones []Tone
}

// Duration is the total time the cue takes to play.
func (c Cue) Duration() time.Duration {
	var d time.Duration
	for _, t := range c.Tones {
		d += t.Duration
	}
	return d
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

var (
	Welcome = Cue{Name: "welcome", Tones: []Tone{
		{523, ms(150)}, {659, ms(150)}, {784, ms(300)},
	}}

	Start = Cue{Name: "start", Tones: sweep(200, 1000, 100, ms(50))}

	CountdownTick = Cue{Name: "countdown", Tones: []Tone{{700, ms(400)}}}

	LimitViolation = Cue{Name: "limit", Tones: []Tone{
		{1200, ms(150)}, {500, ms(150)},
		{1200, ms(150)}, {500, ms(150)},
		{1200, ms(150)}, {500, ms(150)},
	}}

	Finish = Cue{Name: "finish", Tones: []Tone{
		{659, ms(125)}, {659, ms(125)}, {0, ms(125)}, {659, ms(125)},
		{0, ms(125)}, {523, ms(125)}, {659, ms(250)}, {784, ms(250)},
		{0, ms(250)}, {392, ms(250)}, {523, ms(375)}, {784, ms(500)},
	}}
)

func sweep(from, to, step int, d time.Duration) []Tone {
	var tones []Tone
	for f := from; f <= to; f += step {
		tones = append(tones, Tone{FrequencyHz: f, Duration: d})
	}
	return tones
}

// Player starts a tone and returns without waiting for it to finish.
type Player interface {
	PlayTone(frequencyHz int, d time.Duration) error
}

// Commander sends one command line to the device that owns the buzzer.
type Commander interface {
	SendCommand(string) error
}

// Serial forwards tones to the microcontroller as T<freq>,<ms>.
type Serial struct {
	cmd Commander
}

// NewSerial returns a player backed by cmd.
func NewSerial(cmd Commander) *Serial {
	return &Serial{cmd: cmd}
}

func (s *Serial) PlayTone(frequencyHz int, d time.Duration) error {
	if frequencyHz <= 0 {
		return fmt.Errorf("invalid tone frequency %d", frequencyHz)
	}
	return s.cmd.SendCommand(fmt.Sprintf("T%d,%d", frequencyHz, d.Milliseconds()))
}

// Recorder keeps every tone it is asked to play.
type Recorder struct {
	mu    sync.Mutex
	tones []Tone
}

func (r *Recorder) PlayTone(frequencyHz int, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tones = append(r.tones, Tone{FrequencyHz: frequencyHz, Duration: d})
	return nil
}

// Tones returns a copy of the played tones.
func (r *Recorder) Tones() []Tone {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Tone, len(r.tones))
	copy(out, r.tones)
	return out
}

// Reset discards the recorded tones.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tones = nil
}

// Play sounds each tone of cue and pauses for its duration on clock. Player
// failures are logged and the cue carries on; only a done context stops it.
func Play(ctx context.Context, clock timeutil.Clock, p Player, cue Cue) error {
	for _, t := range cue.Tones {
		if t.FrequencyHz > 0 {
			if err := p.PlayTone(t.FrequencyHz, t.Duration); err != nil {
				monitoring.Logf("audio: %s cue tone %dHz failed: %v", cue.Name, t.FrequencyHz, err)
			}
		}
		if err := clock.Sleep(ctx, t.Duration); err != nil {
			return err
		}
	}
	return nil
}
