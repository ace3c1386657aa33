// Package playback drives drift-corrected advancement through paced
// content. A Scheduler repeatedly asks the caller how long the current unit
// should stay on screen, waits that long, invokes the advance callback, and
// repeats — accumulating its expected completion time against a fixed origin
// so timer error never compounds.
package playback

import (
	"sync"
	"time"
)

// DefaultMinDelayFactor bounds how fast the scheduler may catch up after a
// slow tick: the actual delay is never shorter than this share of the
// nominal duration.
const DefaultMinDelayFactor = 0.75

// Config wires a Scheduler.
type Config struct {
	// Duration returns how long the current unit should remain on screen.
	// A non-positive result is the normal end-of-content signal and stops
	// playback cleanly. Must not call back into the Scheduler.
	Duration func() time.Duration

	// Advance moves to the next unit. Invoked once per tick, without the
	// scheduler lock held.
	Advance func()

	// MinDelayFactor is clamped to [0, 1]; zero selects the default.
	MinDelayFactor float64

	// Clock defaults to the system clock.
	Clock Clock
}

// Scheduler is a Stopped/Playing state machine with exactly one outstanding
// timer at any instant. It is the only mutable state in the pacing core; all
// fields are confined behind its mutex.
type Scheduler struct {
	mu sync.Mutex

	clock          Clock
	duration       func() time.Duration
	advance        func()
	minDelayFactor float64

	playing   bool
	firstTick bool
	expected  time.Time
	timer     Timer
	gen       uint64
	closed    bool
}

// NewScheduler builds a stopped scheduler. Duration and Advance are
// required.
func NewScheduler(cfg Config) *Scheduler {
	f := cfg.MinDelayFactor
	switch {
	case f == 0:
		f = DefaultMinDelayFactor
	case f < 0:
		f = 0
	case f > 1:
		f = 1
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{
		clock:          clock,
		duration:       cfg.Duration,
		advance:        cfg.Advance,
		minDelayFactor: f,
	}
}

// Play transitions Stopped -> Playing. The next scheduling pass restarts the
// expected-time origin from now; no attempt is made to catch up time lost
// while stopped. Calling Play while already playing does nothing, so a timer
// is never double-scheduled.
func (s *Scheduler) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing || s.closed {
		return
	}
	s.playing = true
	s.firstTick = true
	s.scheduleLocked()
}

// Pause transitions Playing -> Stopped, cancelling any pending timer.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Toggle flips between Playing and Stopped.
func (s *Scheduler) Toggle() {
	s.mu.Lock()
	playing := s.playing
	s.mu.Unlock()
	if playing {
		s.Pause()
	} else {
		s.Play()
	}
}

// SetEnabled maps an external enable flag onto Play/Pause.
func (s *Scheduler) SetEnabled(enabled bool) {
	if enabled {
		s.Play()
	} else {
		s.Pause()
	}
}

// Playing reports whether the scheduler is in the Playing state.
func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Close stops the scheduler permanently. No ticks fire after Close returns.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	s.playing = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// scheduleLocked runs one scheduling pass: fetch the next duration, update
// the expected completion time, and arm the single outstanding timer.
func (s *Scheduler) scheduleLocked() {
	d := s.duration()
	if d <= 0 {
		s.stopLocked()
		return
	}

	now := s.clock.Now()
	if s.firstTick {
		s.expected = now.Add(d)
		s.firstTick = false
	} else {
		s.expected = s.expected.Add(d)
	}

	delay := s.expected.Sub(now)
	if floor := time.Duration(float64(d) * s.minDelayFactor); delay < floor {
		delay = floor
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(delay, func() { s.tick(gen) })
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if s.closed || !s.playing || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.advance()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.playing || gen != s.gen {
		return
	}
	s.scheduleLocked()
}
