// Package transcript keeps the current best guess of what the learner said.
package transcript

import (
	"strings"
	"sync"
)

type Kind int

const (
	Partial Kind = iota
	Final
)

func (k Kind) String() string {
	if k == Final {
		return "final"
	}
	return "partial"
}

// Event is one hypothesis from the transcription channel. Every event
// carries the full current hypothesis, not a delta.
type Event struct {
	Kind Kind
	Text string
}

// Accumulator holds the latest hypothesis. Later events overwrite earlier
// ones even when they are shorter. Blank hypotheses are ignored so a pause
// does not wipe what was already heard.
type Accumulator struct {
	mu     sync.RWMutex
	text   string
	last   Kind
	events int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply records ev and reports whether it replaced the best guess.
func (a *Accumulator) Apply(ev Event) bool {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.text = text
	a.last = ev.Kind
	a.events++
	return true
}

func (a *Accumulator) CurrentBestGuess() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.text
}

// Settled reports whether the latest hypothesis was a final one.
func (a *Accumulator) Settled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.events > 0 && a.last == Final
}

// Events is the number of events applied since the last Reset.
func (a *Accumulator) Events() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.events
}

// Reset replaces all state for a new sentence attempt.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.text = ""
	a.last = Partial
	a.events = 0
}
