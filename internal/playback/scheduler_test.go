package playback

import (
	"testing"
	"time"
)

// fixedScheduler returns a scheduler that ticks every d and counts advances
// into *ticks. The fake clock runs callbacks synchronously, so the counter
// needs no locking.
func fixedScheduler(clock *FakeClock, d time.Duration, ticks *int) *Scheduler {
	return NewScheduler(Config{
		Duration: func() time.Duration { return d },
		Advance:  func() { *ticks++ },
		Clock:    clock,
	})
}

func TestScheduler_TicksAtNominalCadence(t *testing.T) {
	clock := NewFakeClock()
	ticks := 0
	s := fixedScheduler(clock, 100*time.Millisecond, &ticks)

	s.Play()
	if !s.Playing() {
		t.Fatal("expected playing after Play")
	}
	if clock.PendingTimers() != 1 {
		t.Fatalf("expected exactly one armed timer, got %d", clock.PendingTimers())
	}

	clock.Advance(99 * time.Millisecond)
	if ticks != 0 {
		t.Fatalf("tick fired early: %d", ticks)
	}
	clock.Advance(1 * time.Millisecond)
	if ticks != 1 {
		t.Fatalf("expected first tick at 100ms, got %d", ticks)
	}

	// Repetition: three more boundaries inside the next 300ms.
	clock.Advance(300 * time.Millisecond)
	if ticks != 4 {
		t.Fatalf("expected 4 ticks total, got %d", ticks)
	}
}

func TestScheduler_PauseCancelsPendingTick(t *testing.T) {
	clock := NewFakeClock()
	ticks := 0
	s := fixedScheduler(clock, 100*time.Millisecond, &ticks)

	s.Play()
	clock.Advance(50 * time.Millisecond)
	s.Pause()

	if s.Playing() {
		t.Error("expected stopped after Pause")
	}
	if clock.PendingTimers() != 0 {
		t.Errorf("pending timer survived Pause: %d", clock.PendingTimers())
	}
	clock.Advance(time.Second)
	if ticks != 0 {
		t.Errorf("tick fired after Pause: %d", ticks)
	}
}

func TestScheduler_ResumeRestartsFromNow(t *testing.T) {
	clock := NewFakeClock()
	ticks := 0
	s := fixedScheduler(clock, 100*time.Millisecond, &ticks)

	s.Play()
	clock.Advance(100 * time.Millisecond)
	if ticks != 1 {
		t.Fatalf("expected one tick before pause, got %d", ticks)
	}

	s.Pause()
	clock.Advance(5 * time.Second) // time lost while stopped is not made up
	s.Play()

	clock.Advance(99 * time.Millisecond)
	if ticks != 1 {
		t.Fatalf("resume should wait a full duration, got %d ticks", ticks)
	}
	clock.Advance(1 * time.Millisecond)
	if ticks != 2 {
		t.Fatalf("expected tick 100ms after resume, got %d", ticks)
	}
}

func TestScheduler_ZeroDurationStopsCleanly(t *testing.T) {
	clock := NewFakeClock()
	ticks := 0
	s := fixedScheduler(clock, 0, &ticks)

	s.Play()
	if s.Playing() {
		t.Error("zero duration should leave the scheduler stopped")
	}
	if clock.PendingTimers() != 0 {
		t.Errorf("no timer should be armed, got %d", clock.PendingTimers())
	}
	clock.Advance(time.Second)
	if ticks != 0 {
		t.Errorf("unexpected ticks: %d", ticks)
	}
}

func TestScheduler_StopsAtEndOfContent(t *testing.T) {
	clock := NewFakeClock()
	durations := []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 0}
	i := 0
	ticks := 0
	s := NewScheduler(Config{
		Duration: func() time.Duration {
			d := durations[i]
			if i < len(durations)-1 {
				i++
			}
			return d
		},
		Advance: func() { ticks++ },
		Clock:   clock,
	})

	s.Play()
	clock.Advance(time.Second)

	if ticks != 2 {
		t.Errorf("expected 2 ticks before end of content, got %d", ticks)
	}
	if s.Playing() {
		t.Error("expected scheduler stopped at end of content")
	}
	clock.Advance(time.Second)
	if ticks != 2 {
		t.Errorf("ticked past end of content: %d", ticks)
	}
}

func TestScheduler_DoublePlayArmsOneTimer(t *testing.T) {
	clock := NewFakeClock()
	ticks := 0
	s := fixedScheduler(clock, 100*time.Millisecond, &ticks)

	s.Play()
	s.Play()
	if clock.PendingTimers() != 1 {
		t.Fatalf("expected one timer after double Play, got %d", clock.PendingTimers())
	}
	clock.Advance(100 * time.Millisecond)
	if ticks != 1 {
		t.Errorf("expected exactly one tick, got %d", ticks)
	}
}

func TestScheduler_DriftCorrectedAgainstOrigin(t *testing.T) {
	clock := NewFakeClock()
	durations := []time.Duration{100 * time.Millisecond, 50 * time.Millisecond, 200 * time.Millisecond}
	i := 0
	var tickTimes []time.Duration
	origin := clock.Now()
	s := NewScheduler(Config{
		Duration: func() time.Duration {
			if i >= len(durations) {
				return 0
			}
			d := durations[i]
			i++
			return d
		},
		Advance: func() { tickTimes = append(tickTimes, clock.Now().Sub(origin)) },
		Clock:   clock,
	})

	s.Play()
	clock.Advance(time.Second)

	// Each boundary is the running sum of durations from the fixed origin.
	want := []time.Duration{100 * time.Millisecond, 150 * time.Millisecond, 350 * time.Millisecond}
	if len(tickTimes) != len(want) {
		t.Fatalf("expected %d ticks, got %v", len(want), tickTimes)
	}
	for j := range want {
		if tickTimes[j] != want[j] {
			t.Errorf("tick %d at %v, want %v", j, tickTimes[j], want[j])
		}
	}
}

func TestScheduler_OutOfRangeFactorsAreClamped(t *testing.T) {
	for _, factor := range []float64{-5, 0.75, 3} {
		clock := NewFakeClock()
		ticks := 0
		s := NewScheduler(Config{
			Duration:       func() time.Duration { return 100 * time.Millisecond },
			Advance:        func() { ticks++ },
			MinDelayFactor: factor,
			Clock:          clock,
		})
		s.Play()
		clock.Advance(100 * time.Millisecond)
		if ticks != 1 {
			t.Errorf("factor %v: expected one tick at the nominal boundary, got %d", factor, ticks)
		}
		s.Close()
	}
}

func TestScheduler_Toggle(t *testing.T) {
	clock := NewFakeClock()
	ticks := 0
	s := fixedScheduler(clock, 100*time.Millisecond, &ticks)

	s.Toggle()
	if !s.Playing() {
		t.Fatal("expected playing after first Toggle")
	}
	s.Toggle()
	if s.Playing() {
		t.Fatal("expected stopped after second Toggle")
	}
	clock.Advance(time.Second)
	if ticks != 0 {
		t.Errorf("unexpected ticks after toggle off: %d", ticks)
	}
}

func TestScheduler_SetEnabled(t *testing.T) {
	clock := NewFakeClock()
	ticks := 0
	s := fixedScheduler(clock, 100*time.Millisecond, &ticks)

	s.SetEnabled(true)
	if !s.Playing() {
		t.Error("SetEnabled(true) should start playback")
	}
	s.SetEnabled(false)
	if s.Playing() {
		t.Error("SetEnabled(false) should stop playback")
	}
}

func TestScheduler_CloseIsPermanent(t *testing.T) {
	clock := NewFakeClock()
	ticks := 0
	s := fixedScheduler(clock, 100*time.Millisecond, &ticks)

	s.Play()
	s.Close()

	clock.Advance(time.Second)
	if ticks != 0 {
		t.Errorf("tick fired after Close: %d", ticks)
	}

	s.Play()
	if s.Playing() {
		t.Error("Play after Close should be a no-op")
	}
}
