// Package gesture recognizes the double copy chord (modifier held, C pressed twice)
// from a stream of normalized key events.
package gesture

import (
	"context"
	"sync"
	"time"

	"markestedt/langra/platform"
)

// DefaultWindow is the maximum gap between the two presses of a double copy
const DefaultWindow = 500 * time.Millisecond

// State is the detector's position in the gesture state machine
type State int

const (
	Idle State = iota
	ModifierHeld
	Armed
)

func (s State) String() string {
	switch s {
	case ModifierHeld:
		return "modifier-held"
	case Armed:
		return "armed"
	default:
		return "idle"
	}
}

// Option configures a Detector
type Option func(*Detector)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		d.now = now
	}
}

// Detector holds the gesture state. It is safe for concurrent use.
type Detector struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time

	modifierHeld  bool
	repeatCount   uint
	lastPressTime time.Time
	hasLastPress  bool
}

// New creates a detector firing when two copy presses are at most window apart
func New(window time.Duration, opts ...Option) *Detector {
	if window <= 0 {
		window = DefaultWindow
	}
	d := &Detector{
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetWindow changes the double-press window; non-positive values are ignored
func (d *Detector) SetWindow(window time.Duration) {
	if window <= 0 {
		return
	}
	d.mu.Lock()
	d.window = window
	d.mu.Unlock()
}

// Handle advances the state machine and reports whether the gesture fired
func (d *Detector) Handle(ev platform.KeyEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Key {
	case platform.KeyModifier:
		if ev.Type == platform.Pressed {
			d.modifierHeld = true
			return false
		}
		d.modifierHeld = false
		d.repeatCount = 0
		d.hasLastPress = false
		return false

	case platform.KeyCopy:
		if ev.Type != platform.Pressed || !d.modifierHeld {
			return false
		}

		now := d.now()
		if d.hasLastPress {
			if now.Sub(d.lastPressTime) > d.window {
				d.repeatCount = 1
			} else {
				d.repeatCount++
				if d.repeatCount >= 2 {
					d.repeatCount = 0
					d.hasLastPress = false
					return true
				}
			}
		} else {
			d.repeatCount = 1
		}
		d.lastPressTime = now
		d.hasLastPress = true
	}

	return false
}

// State returns the current state
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case !d.modifierHeld:
		return Idle
	case d.repeatCount == 0:
		return ModifierHeld
	default:
		return Armed
	}
}

// Count returns the number of pending copy presses
func (d *Detector) Count() uint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.repeatCount
}

// Run feeds events into the detector until ctx is done or events is closed.
// onFire is called on the consuming goroutine and must return quickly.
func (d *Detector) Run(ctx context.Context, events <-chan platform.KeyEvent, onFire func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if d.Handle(ev) {
				onFire()
			}
		}
	}
}
