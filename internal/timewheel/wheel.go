// Package timewheel implements the bounded-horizon ring-of-slots event
// queue that schedules future spike deliveries with O(1) amortized cost.
package timewheel

import (
	"errors"
	"fmt"
)

// ErrDelayOutOfHorizon is returned when an event's time is at or beyond
// current_time + W.
var ErrDelayOutOfHorizon = errors.New("timewheel: delay out of horizon")

// ErrNonCausal is returned when an event's time is strictly in the past.
var ErrNonCausal = errors.New("timewheel: non-causal schedule")

// ErrWheelSlotFull is returned by fixed-capacity wheels when a slot is at
// capacity. The default Wheel grows its slots on demand and never returns it.
var ErrWheelSlotFull = errors.New("timewheel: slot full")

// SpikeEvent is a single scheduled spike delivery.
type SpikeEvent struct {
	NeuronID int
	Time     uint64
}

// Wheel is a ring of W slots indexed by time mod W. Each slot holds its
// events in the order they were scheduled (FIFO-per-slot).
type Wheel struct {
	slots       [][]SpikeEvent
	currentTime uint64
	size        uint64
}

// New constructs a Wheel with the given horizon. W must be at least 1.
func New(size uint64) (*Wheel, error) {
	if size < 1 {
		return nil, fmt.Errorf("timewheel: size must be >= 1, got %d", size)
	}
	return &Wheel{
		slots: make([][]SpikeEvent, size),
		size:  size,
	}, nil
}

// CurrentTime returns the wheel's current tick T.
func (w *Wheel) CurrentTime() uint64 {
	return w.currentTime
}

// Size returns the wheel's horizon W.
func (w *Wheel) Size() uint64 {
	return w.size
}

// Schedule places event into slot event.Time mod W. It fails with
// ErrDelayOutOfHorizon when event.Time - currentTime >= W, and with
// ErrNonCausal when event.Time < currentTime.
func (w *Wheel) Schedule(event SpikeEvent) error {
	if event.Time < w.currentTime {
		return fmt.Errorf("%w: time %d < current time %d", ErrNonCausal, event.Time, w.currentTime)
	}
	if event.Time-w.currentTime >= w.size {
		return fmt.Errorf("%w: time %d >= horizon %d+%d", ErrDelayOutOfHorizon, event.Time, w.currentTime, w.size)
	}
	slot := event.Time % w.size
	w.slots[slot] = append(w.slots[slot], event)
	return nil
}

// Advance atomically reads the current slot's contents, empties that slot,
// increments currentTime by 1, and returns the drained events in
// insertion order.
func (w *Wheel) Advance() []SpikeEvent {
	slot := w.currentTime % w.size
	drained := w.slots[slot]
	w.slots[slot] = nil
	w.currentTime++
	return drained
}
