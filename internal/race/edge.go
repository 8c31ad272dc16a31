package race

import (
	"runtime"
	"sync/atomic"
	"time"
)

// LapEvent is a validated lap passage. Interval is the time since the
// previous accepted or suppressed edge.
type LapEvent struct {
	Timestamp time.Time
	Interval  time.Duration
}

// LapEdgeDetector turns raw sensor edges into lap events.
//
// OnSensorEdge runs on the sensor goroutine and may preempt the control loop
// at any point; it touches only atomics and never blocks or allocates. It
// must be called from a single goroutine. Drain and Reset belong to the
// control loop.
//
// The pending event is published through a sequence counter: the writer
// makes seq odd while it stores the payload and even once it is complete,
// then stores the even value in pending. The reader only accepts a payload
// read while seq equals the pending value, and clears pending with a
// compare-and-swap so a newer publish is never lost to the clear.
type LapEdgeDetector struct {
	minInterval time.Duration

	// AdvanceOnSuppress moves the anchor to a suppressed edge, so a rapid
	// double trigger restarts the minimum-interval window. When false the
	// suppressed edge is ignored entirely and the window is measured from
	// the last accepted edge.
	AdvanceOnSuppress bool

	anchor atomic.Int64 // unix nanos of the last edge, 0 when unset
	epoch  atomic.Uint64

	seq             atomic.Uint64
	pending         atomic.Uint64
	pendingAt       atomic.Int64
	pendingInterval atomic.Int64
	pendingEpoch    atomic.Uint64

	suppressed  atomic.Uint64
	overwritten atomic.Uint64
}

// NewLapEdgeDetector returns a detector that suppresses edges closer than
// minInterval to the anchor.
func NewLapEdgeDetector(minInterval time.Duration) *LapEdgeDetector {
	return &LapEdgeDetector{
		minInterval:       minInterval,
		AdvanceOnSuppress: true,
	}
}

// OnSensorEdge records an edge at now. The first edge after a reset only
// sets the anchor. The returned event is also published for Drain.
func (d *LapEdgeDetector) OnSensorEdge(now time.Time) (LapEvent, bool) {
	t := now.UnixNano()
	ep := d.epoch.Load()
	for {
		prev := d.anchor.Load()
		if prev == 0 {
			if d.anchor.CompareAndSwap(0, t) {
				return LapEvent{}, false
			}
			continue
		}

		delta := time.Duration(t - prev)
		if delta < d.minInterval {
			if !d.AdvanceOnSuppress || d.anchor.CompareAndSwap(prev, t) {
				d.suppressed.Add(1)
				return LapEvent{}, false
			}
			continue
		}

		if d.anchor.CompareAndSwap(prev, t) {
			d.publish(t, delta, ep)
			return LapEvent{Timestamp: now, Interval: delta}, true
		}
	}
}

func (d *LapEdgeDetector) publish(at int64, interval time.Duration, ep uint64) {
	d.seq.Add(1)
	d.pendingAt.Store(at)
	d.pendingInterval.Store(int64(interval))
	d.pendingEpoch.Store(ep)
	if d.pending.Swap(d.seq.Add(1)) != 0 {
		d.overwritten.Add(1)
	}
}

// Drain takes the pending lap event, if any, clearing the pending flag.
// Events published before the last Reset are discarded.
func (d *LapEdgeDetector) Drain() (LapEvent, bool) {
	for {
		v := d.pending.Load()
		if v == 0 {
			return LapEvent{}, false
		}
		at := d.pendingAt.Load()
		interval := d.pendingInterval.Load()
		ep := d.pendingEpoch.Load()
		if d.seq.Load() != v {
			// writer mid-publish or a newer event landed
			runtime.Gosched()
			continue
		}
		if !d.pending.CompareAndSwap(v, 0) {
			continue
		}
		if ep != d.epoch.Load() {
			return LapEvent{}, false
		}
		return LapEvent{Timestamp: time.Unix(0, at), Interval: time.Duration(interval)}, true
	}
}

// Reset clears the anchor so the next edge calibrates, and drops any
// pending event.
func (d *LapEdgeDetector) Reset() {
	// anchor before epoch: an edge that sees the new epoch also sees the
	// cleared anchor
	d.anchor.Store(0)
	d.epoch.Add(1)
	d.pending.Store(0)
}

// Anchored reports whether a calibration edge has been seen since Reset.
func (d *LapEdgeDetector) Anchored() bool {
	return d.anchor.Load() != 0
}

// Suppressed is the number of edges discarded as bounce.
func (d *LapEdgeDetector) Suppressed() uint64 {
	return d.suppressed.Load()
}

// Overwritten is the number of lap events replaced before being drained.
func (d *LapEdgeDetector) Overwritten() uint64 {
	return d.overwritten.Load()
}
