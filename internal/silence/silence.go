// Package silence raises a one-shot signal once no transcript activity has
// been seen for a quiet period.
package silence

import (
	"sync"
	"time"

	"github.com/leonardotrapani/readalong/internal/clock"
)

// DefaultQuiet is the quiet period used when none is configured.
const DefaultQuiet = 3 * time.Second

type Detector struct {
	clock   clock.Clock
	quiet   time.Duration
	onQuiet func()

	mu    sync.Mutex
	timer clock.Timer
	gen   uint64
	armed bool
	fired bool
}

// New returns a disarmed detector. onQuiet runs on the timer goroutine and
// must not block.
func New(c clock.Clock, quiet time.Duration, onQuiet func()) *Detector {
	if c == nil {
		c = clock.Real{}
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Detector{clock: c, quiet: quiet, onQuiet: onQuiet}
}

// Arm starts the quiet timer unless the detector is already armed.
func (d *Detector) Arm() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.armed {
		return
	}
	d.rearmLocked()
}

// Reset clears a consumed signal and arms again from now.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rearmLocked()
}

// Observe records activity, pushing the deadline out by the quiet period.
// It has no effect once the signal fired or while disarmed.
func (d *Detector) Observe() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.armed || d.fired {
		return
	}
	d.startLocked()
}

// Stop disarms the detector and drops any pending signal.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopTimerLocked()
	d.gen++
	d.armed = false
}

// SetQuiet changes the quiet period for the next arming.
func (d *Detector) SetQuiet(quiet time.Duration) {
	if quiet <= 0 {
		return
	}
	d.mu.Lock()
	d.quiet = quiet
	d.mu.Unlock()
}

func (d *Detector) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed && !d.fired
}

func (d *Detector) Fired() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fired
}

func (d *Detector) rearmLocked() {
	d.armed = true
	d.fired = false
	d.startLocked()
}

func (d *Detector) startLocked() {
	d.stopTimerLocked()
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.quiet, func() { d.fire(gen) })
}

func (d *Detector) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Detector) fire(gen uint64) {
	d.mu.Lock()
	// a timer that lost the race with Stop or Observe carries an old generation
	if gen != d.gen || !d.armed || d.fired {
		d.mu.Unlock()
		return
	}
	d.fired = true
	d.timer = nil
	cb := d.onQuiet
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
}
