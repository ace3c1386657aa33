// Package session owns playback sessions: one scheduler per active reading
// session advancing through a flattened chunk sequence, with effective WPM
// derived from elapsed play time and reading position reported to the
// external progress store.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dfarrow0/readpace/internal/paginate"
	"github.com/dfarrow0/readpace/internal/playback"
	"github.com/dfarrow0/readpace/internal/progress"
	"github.com/dfarrow0/readpace/internal/timing"
)

// Params configures a new session.
type Params struct {
	Article       string
	Chunks        []paginate.Chunk
	WPM           float64
	Ramp          timing.Ramp
	SaccadeLength int

	MinDelayFactor float64
	Clock          playback.Clock // nil selects the system clock
	Reporter       *progress.Reporter
	Log            *slog.Logger
}

// Session is one active reading session. Its scheduler is the only mutable
// state in the pacing core; everything else here is bookkeeping around it.
type Session struct {
	mu sync.Mutex

	id            string
	article       string
	chunks        []paginate.Chunk
	index         int
	baseWPM       float64
	ramp          timing.Ramp
	saccadeLength int

	clock       playback.Clock
	sched       *playback.Scheduler
	playStarted time.Time

	reporter *progress.Reporter
	log      *slog.Logger

	createdAt time.Time
	updatedAt time.Time
}

// New builds a session in the stopped state.
func New(params Params) *Session {
	clock := params.Clock
	if clock == nil {
		clock = playback.SystemClock()
	}
	log := params.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		id:            generateULID(),
		article:       params.Article,
		chunks:        params.Chunks,
		baseWPM:       timing.ClampWPM(params.WPM),
		ramp:          params.Ramp,
		saccadeLength: params.SaccadeLength,
		clock:         clock,
		reporter:      params.Reporter,
		log:           log,
		createdAt:     clock.Now(),
		updatedAt:     clock.Now(),
	}
	s.sched = playback.NewScheduler(playback.Config{
		Duration:       s.nextDuration,
		Advance:        s.advance,
		MinDelayFactor: params.MinDelayFactor,
		Clock:          clock,
	})
	return s
}

// ID returns the session's ULID.
func (s *Session) ID() string { return s.id }

// Play starts or resumes playback. Every resume begins a new continuous
// play session, so the WPM ramp origin restarts from now.
func (s *Session) Play() {
	if !s.sched.Playing() {
		s.mu.Lock()
		s.playStarted = s.clock.Now()
		s.mu.Unlock()
	}
	s.sched.Play()
}

// Pause stops playback, cancelling the pending tick.
func (s *Session) Pause() {
	s.sched.Pause()
	s.touch()
}

// Close tears the session down; no ticks fire afterwards.
func (s *Session) Close() {
	s.sched.Close()
}

// Seek clamps and repositions the chunk index.
func (s *Session) Seek(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if index > len(s.chunks) {
		index = len(s.chunks)
	}
	s.index = index
	s.updatedAt = s.clock.Now()
}

// nextDuration is the scheduler's duration callback: how long the current
// chunk stays on screen at the ramped WPM, or zero when nothing remains.
func (s *Session) nextDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.chunks) {
		return 0
	}
	wpm := timing.EffectiveWPM(s.baseWPM, s.clock.Now().Sub(s.playStarted), s.ramp)
	return timing.SaccadeLineDuration(len([]rune(s.chunks[s.index].Text)), wpm)
}

// advance is the scheduler's tick callback.
func (s *Session) advance() {
	s.mu.Lock()
	s.index++
	s.updatedAt = s.clock.Now()
	rec := progress.Record{
		SessionID:   s.id,
		Article:     s.article,
		ChunkIndex:  s.index,
		TotalChunks: len(s.chunks),
		UpdatedAt:   s.updatedAt,
	}
	reporter := s.reporter
	s.mu.Unlock()

	if reporter != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := reporter.Report(ctx, rec); err != nil {
				s.log.Warn("progress report failed", "session", rec.SessionID, "error", err)
			}
		}()
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.updatedAt = s.clock.Now()
	s.mu.Unlock()
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID            string    `json:"session_id"`
	Article       string    `json:"article,omitempty"`
	ChunkIndex    int       `json:"chunk_index"`
	TotalChunks   int       `json:"total_chunks"`
	Playing       bool      `json:"playing"`
	BaseWPM       float64   `json:"base_wpm"`
	EffectiveWPM  float64   `json:"effective_wpm"`
	SaccadeLength int       `json:"saccade_length"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	playing := s.sched.Playing()
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Duration(0)
	if playing {
		elapsed = s.clock.Now().Sub(s.playStarted)
	}
	return Snapshot{
		ID:            s.id,
		Article:       s.article,
		ChunkIndex:    s.index,
		TotalChunks:   len(s.chunks),
		Playing:       playing,
		BaseWPM:       s.baseWPM,
		EffectiveWPM:  timing.EffectiveWPM(s.baseWPM, elapsed, s.ramp),
		SaccadeLength: s.saccadeLength,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}

func (s *Session) lastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
